package service

import (
	"context"
	"io"
)

// EvidenceStorage stores uploaded evidence files and returns the opaque URL
// recorded on the dispute. Disputes only ever hold the URL, never the bytes.
type EvidenceStorage interface {
	UploadEvidence(ctx context.Context, file io.Reader, contentType string) (string, error)
	Close() error
}
