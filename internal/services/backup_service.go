package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/state"
	"crinf-backoffice/internal/supabase"
)

type BackupService struct {
	store             *state.Store
	codec             *snapshot.Codec
	persister         StatePersister
	storage           ObjectStorage
	events            supabase.EventPublisher
	logger            *zap.Logger
	snapshotPrefix    string
	preferencesPrefix string
}

// NewBackupService wires the snapshot codec to the state owner. persister and
// storage may be nil.
func NewBackupService(
	store *state.Store,
	codec *snapshot.Codec,
	persister StatePersister,
	storage ObjectStorage,
	events supabase.EventPublisher,
	logger *zap.Logger,
	snapshotPrefix, preferencesPrefix string,
) *BackupService {
	if events == nil {
		events = supabase.NopPublisher{}
	}
	if codec.Now == nil {
		codec.Now = time.Now
	}
	return &BackupService{
		store:             store,
		codec:             codec,
		persister:         persister,
		storage:           storage,
		events:            events,
		logger:            logger,
		snapshotPrefix:    snapshotPrefix,
		preferencesPrefix: preferencesPrefix,
	}
}

// Export serializes the current state and names the file.
func (s *BackupService) Export() (string, []byte, error) {
	current := s.store.Current()
	data, err := s.codec.Export(current.Database, current.Config)
	if err != nil {
		return "", nil, err
	}
	return snapshot.Filename(s.snapshotPrefix, s.codec.Now()), data, nil
}

func (s *BackupService) ExportPreferences() (string, []byte, error) {
	data, err := s.codec.ExportPreferences(s.store.Config())
	if err != nil {
		return "", nil, err
	}
	return snapshot.Filename(s.preferencesPrefix, s.codec.Now()), data, nil
}

// Restore replaces the whole state with the document in data. The document
// is parsed and persisted before the in-memory state changes; any failure
// leaves both untouched.
func (s *BackupService) Restore(ctx context.Context, data []byte, actor string) (*snapshot.Document, error) {
	doc, err := s.codec.Import(data)
	if err != nil {
		return nil, err
	}

	_, err = s.store.Replace(doc.Database, doc.Config, func(db models.Database, cfg models.SiteConfig) error {
		if s.persister == nil {
			return nil
		}
		return s.persister.SaveState(ctx, db, cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply snapshot: %w", err)
	}

	counts := doc.Database.Counts()
	s.logger.Info("snapshot restored",
		zap.String("version", doc.Version),
		zap.String("timestamp", doc.Timestamp),
		zap.String("actor", actor),
		zap.Any("collections", counts))
	s.publish(supabase.EventBackupRestored, actor, supabase.RestoredPayload(doc.Version, counts))
	return doc, nil
}

// RestorePreferences applies a preferences document onto the current config.
func (s *BackupService) RestorePreferences(ctx context.Context, data []byte, actor string) (models.SiteConfig, error) {
	if _, err := s.codec.ImportPreferences(data, s.store.Config()); err != nil {
		return models.SiteConfig{}, err
	}

	next, err := s.store.Update(func(_ *models.Database, c *models.SiteConfig) error {
		// Re-apply onto the config current under the lock.
		applied, err := s.codec.ImportPreferences(data, *c)
		if err != nil {
			return err
		}
		*c = applied
		return nil
	}, func(_ models.Database, c models.SiteConfig) error {
		if s.persister == nil {
			return nil
		}
		return s.persister.SaveConfig(ctx, c)
	})
	if err != nil {
		return models.SiteConfig{}, fmt.Errorf("failed to apply preferences: %w", err)
	}

	s.logger.Info("preferences restored", zap.String("actor", actor))
	s.publish(supabase.EventPreferencesRestored, actor, map[string]interface{}{})
	return next.Config, nil
}

// Archive exports the state and uploads it to storage.
func (s *BackupService) Archive(ctx context.Context, actor string) (*models.ArchiveResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	filename, data, err := s.Export()
	if err != nil {
		return nil, err
	}
	path := supabase.BackupPath(filename)
	url, err := s.storage.Upload(path, "application/json", data)
	if err != nil {
		return nil, err
	}

	if s.persister != nil {
		if err := s.persister.RecordArchive(ctx, filename, path, int64(len(data))); err != nil {
			// The file is in storage already; the index row is best-effort.
			s.logger.Warn("failed to record archive", zap.String("filename", filename), zap.Error(err))
		}
	}

	s.publish(supabase.EventBackupArchived, actor, supabase.ArchivedPayload(filename, url, int64(len(data))))
	return &models.ArchiveResponse{
		Filename:   filename,
		StorageURL: url,
		FileSize:   int64(len(data)),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *BackupService) publish(event, actor string, payload map[string]interface{}) {
	if err := s.events.Publish(event, actor, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}
