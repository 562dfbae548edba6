package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jasahub/pkg/errors"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorEnvelope(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Not found", apperrors.NotFound("Dispute", nil), http.StatusNotFound, "NOT_FOUND"},
		{"Invalid transition", apperrors.InvalidTransition("cannot close an open dispute"), http.StatusConflict, "INVALID_TRANSITION"},
		{"Concurrent modification", apperrors.ConcurrentModification("Dispute"), http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"Validation", apperrors.ValidationFailed("priority must be between 1 and 5", nil), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"Forbidden", apperrors.Forbidden("Operator privileges required", nil), http.StatusForbidden, "FORBIDDEN"},
		{"Unknown errors are masked", fmt.Errorf("firestore timed out"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext()
			require.NoError(t, Error(c, tc.err))

			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestPaginated(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, Paginated(c, []string{"a", "b"}, 41, 2, 20))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var page PaginatedResponse
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}
