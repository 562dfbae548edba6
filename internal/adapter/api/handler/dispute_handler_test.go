package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasahub/internal/adapter/api"
)

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = api.NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFileDisputeValidation(t *testing.T) {
	h := NewDisputeHandler(nil, nil)

	t.Run("Missing fields are rejected before any use case call", func(t *testing.T) {
		c, rec := newTestContext(t, http.MethodPost, "/v1/disputes", `{"booking_id":"booking-1"}`)
		c.Set("uid", "customer-1")

		require.NoError(t, h.FileDispute(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
	})

	t.Run("Priority bounds are enforced at the boundary", func(t *testing.T) {
		body := `{"booking_id":"booking-1","type":"no_show","priority":9,"title":"t","description":"d","filed_against":"provider-1"}`
		c, rec := newTestContext(t, http.MethodPost, "/v1/disputes", body)
		c.Set("uid", "customer-1")

		require.NoError(t, h.FileDispute(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "priority")
	})
}

func TestPostMessageValidation(t *testing.T) {
	h := NewDisputeHandler(nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/v1/disputes/d1/messages", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("d1")
	c.Set("uid", "customer-1")

	require.NoError(t, h.PostMessage(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestGetDisputeRequiresID(t *testing.T) {
	h := NewDisputeHandler(nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/disputes/", "")
	c.Set("uid", "customer-1")

	require.NoError(t, h.GetDispute(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
