package asset

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
)

// Uploader stores one file on the asset host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, f models.PendingFile) (string, error)
}

var (
	ErrNoURL          = errors.New("asset host response carries no url")
	ErrMissingSetting = errors.New("asset uploader is not configured")
)

// UploaderFunc adapts a plain function to Uploader.
type UploaderFunc func(ctx context.Context, f models.PendingFile) (string, error)

func (fn UploaderFunc) Upload(ctx context.Context, f models.PendingFile) (string, error) {
	return fn(ctx, f)
}
