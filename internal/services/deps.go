package services

import (
	"context"
	"errors"

	"crinf-backoffice/internal/models"
)

var ErrStorageUnavailable = errors.New("storage not available")

// StatePersister is the durable copy of the application state.
// *supabase.DatabaseClient implements it.
type StatePersister interface {
	SaveState(ctx context.Context, db models.Database, cfg models.SiteConfig) error
	SaveCollection(ctx context.Context, name string, records any) error
	SaveConfig(ctx context.Context, cfg models.SiteConfig) error
	RecordArchive(ctx context.Context, filename, storagePath string, size int64) error
}

// ObjectStorage stores artifacts and returns their public URL.
// *supabase.StorageClient implements it.
type ObjectStorage interface {
	Upload(storagePath, contentType string, data []byte) (string, error)
}
