package services

import (
	"context"
	"sync"

	"crinf-backoffice/internal/models"
)

type fakePersister struct {
	mu          sync.Mutex
	err         error
	states      int
	collections map[string]any
	configs     []models.SiteConfig
	archives    []string
}

func (f *fakePersister) SaveState(ctx context.Context, db models.Database, cfg models.SiteConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.states++
	return nil
}

func (f *fakePersister) SaveCollection(ctx context.Context, name string, records any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.collections == nil {
		f.collections = make(map[string]any)
	}
	f.collections[name] = records
	return nil
}

func (f *fakePersister) SaveConfig(ctx context.Context, cfg models.SiteConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.configs = append(f.configs, cfg)
	return nil
}

func (f *fakePersister) RecordArchive(ctx context.Context, filename, storagePath string, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archives = append(f.archives, storagePath)
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	err     error
	objects map[string][]byte
}

func (f *fakeStorage) Upload(storagePath, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[storagePath] = data
	return "https://storage.test/" + storagePath, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEvents) Publish(event string, actor string, payload map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}
