package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/dog-uploader/internal/domain"
)

// ErrFolderCreation is returned when a folder could not be created, including
// when it already exists.
var ErrFolderCreation = errors.New("folder creation failed")

// ErrFolderNotFound is returned when listing a folder that does not exist.
var ErrFolderNotFound = errors.New("folder not found")

// StatusError is returned when the storage service answers with an
// unexpected HTTP status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Target captures the folder operations the upload pipeline needs.
type Target interface {
	CreateFolder(ctx context.Context, name string) error
	UploadFromURL(ctx context.Context, folder, name, sourceURL string) (*domain.Link, error)
	ListFolder(ctx context.Context, name string) (*domain.FolderListing, error)
}
