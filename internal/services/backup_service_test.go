package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/state"
	"crinf-backoffice/internal/supabase"
)

func newBackupService(store *state.Store, persister StatePersister, storage ObjectStorage, events supabase.EventPublisher) *BackupService {
	codec := &snapshot.Codec{Now: func() time.Time { return time.UnixMilli(1700000000000) }}
	return NewBackupService(store, codec, persister, storage, events, zap.NewNop(), "backup_crinf", "preferencias_crinf")
}

func TestBackupService_ExportRestore(t *testing.T) {
	source := state.NewStore(models.Database{
		Clients: []models.Client{{ID: "c1", Name: "Ana"}},
	}, models.DefaultSiteConfig())

	filename, data, err := newBackupService(source, nil, nil, nil).Export()
	require.NoError(t, err)
	assert.Equal(t, "backup_crinf_1700000000000.json", filename)

	target := state.NewEmptyStore()
	persister := &fakePersister{}
	events := &fakeEvents{}
	doc, err := newBackupService(target, persister, nil, events).Restore(context.Background(), data, "admin")
	require.NoError(t, err)

	assert.Equal(t, snapshot.FormatVersion, doc.Version)
	assert.Equal(t, []models.Client{{ID: "c1", Name: "Ana"}}, target.Database().Clients)
	assert.Equal(t, 1, persister.states)
	assert.Equal(t, []string{supabase.EventBackupRestored}, events.events)
}

func TestBackupService_RestoreMalformedKeepsState(t *testing.T) {
	store := state.NewStore(models.Database{
		Products: []models.Product{{ID: "p1", Name: "Mouse"}},
	}, models.DefaultSiteConfig())
	before := store.Current()
	persister := &fakePersister{}
	events := &fakeEvents{}

	_, err := newBackupService(store, persister, nil, events).Restore(context.Background(), []byte("not json"), "admin")

	assert.True(t, errors.Is(err, snapshot.ErrMalformedDocument))
	assert.Same(t, before, store.Current())
	assert.Zero(t, persister.states)
	assert.Empty(t, events.events)
}

func TestBackupService_RestorePersistFailureKeepsState(t *testing.T) {
	store := state.NewEmptyStore()
	before := store.Current()
	persister := &fakePersister{err: errors.New("connection refused")}

	_, err := newBackupService(store, persister, nil, nil).Restore(context.Background(),
		[]byte(`{"database": {"clients": [{"id": "c1", "name": "Ana"}]}}`), "admin")

	assert.Error(t, err)
	assert.Same(t, before, store.Current())
}

func TestBackupService_Preferences(t *testing.T) {
	cfg := models.DefaultSiteConfig()
	cfg.PrimaryColor = "#123456"
	cfg.Contact.Email = "loja@example.com"
	source := state.NewStore(models.Database{}, cfg)

	filename, data, err := newBackupService(source, nil, nil, nil).ExportPreferences()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "preferencias_crinf_"))

	target := state.NewEmptyStore()
	persister := &fakePersister{}
	applied, err := newBackupService(target, persister, nil, nil).RestorePreferences(context.Background(), data, "admin")
	require.NoError(t, err)

	assert.Equal(t, "#123456", applied.PrimaryColor)
	assert.Empty(t, applied.Contact.Email)
	assert.Equal(t, applied, target.Config())
	assert.Len(t, persister.configs, 1)
}

func TestBackupService_Archive(t *testing.T) {
	store := state.NewEmptyStore()

	_, err := newBackupService(store, nil, nil, nil).Archive(context.Background(), "admin")
	assert.True(t, errors.Is(err, ErrStorageUnavailable))

	storage := &fakeStorage{}
	persister := &fakePersister{}
	archive, err := newBackupService(store, persister, storage, nil).Archive(context.Background(), "admin")
	require.NoError(t, err)

	path := "backups/backup_crinf_1700000000000.json"
	assert.Equal(t, "https://storage.test/"+path, archive.StorageURL)
	assert.Equal(t, []string{path}, persister.archives)
	require.Contains(t, storage.objects, path)
	assert.True(t, json.Valid(storage.objects[path]))
}
