package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/spreadsheet"
	"crinf-backoffice/internal/state"
	"crinf-backoffice/internal/supabase"
)

// CatalogService covers the product spreadsheet, the site config and the
// generic per-collection edits made by the admin screens.
type CatalogService struct {
	store     *state.Store
	persister StatePersister
	events    supabase.EventPublisher
	logger    *zap.Logger
}

func NewCatalogService(store *state.Store, persister StatePersister, events supabase.EventPublisher, logger *zap.Logger) *CatalogService {
	if events == nil {
		events = supabase.NopPublisher{}
	}
	return &CatalogService{
		store:     store,
		persister: persister,
		events:    events,
		logger:    logger,
	}
}

// ImportResult combines the spreadsheet parse with what was actually added.
type ImportResult struct {
	Added   int
	Skipped int
	Errors  []string
}

// ImportProducts parses an XLSX workbook and adds the products that are not
// in the catalog yet.
func (s *CatalogService) ImportProducts(ctx context.Context, r io.Reader, actor string) (*ImportResult, error) {
	existing := spreadsheet.ExistingIDs(s.store.Database().Products)
	parsed, err := spreadsheet.ImportProducts(r, existing)
	if err != nil {
		return nil, err
	}

	added, err := s.store.AddProducts(parsed.Added, s.commitCollection(ctx, models.CollectionProducts))
	if err != nil {
		return nil, fmt.Errorf("failed to save products: %w", err)
	}

	res := &ImportResult{
		Added:   added,
		Skipped: parsed.Skipped + len(parsed.Added) - added,
		Errors:  parsed.Errors,
	}
	s.logger.Info("products imported",
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("row_errors", len(res.Errors)),
		zap.String("actor", actor))
	s.publish(supabase.EventProductsImported, actor, supabase.ProductsImportedPayload(res.Added, res.Skipped))
	return res, nil
}

func (s *CatalogService) ExportProducts() ([]byte, error) {
	return spreadsheet.ExportProducts(s.store.Database().Products)
}

func (s *CatalogService) Config() models.SiteConfig {
	return s.store.Config()
}

func (s *CatalogService) UpdateConfig(ctx context.Context, cfg models.SiteConfig, actor string) (models.SiteConfig, error) {
	next, err := s.store.SetConfig(cfg, func(_ models.Database, c models.SiteConfig) error {
		if s.persister == nil {
			return nil
		}
		return s.persister.SaveConfig(ctx, c)
	})
	if err != nil {
		return models.SiteConfig{}, fmt.Errorf("failed to save config: %w", err)
	}
	s.publish(supabase.EventConfigUpdated, actor, map[string]interface{}{})
	return next.Config, nil
}

func (s *CatalogService) Collection(name string) (any, int, error) {
	return s.store.Collection(name)
}

// ReplaceCollection overwrites one collection with the records in raw.
func (s *CatalogService) ReplaceCollection(ctx context.Context, name string, raw json.RawMessage, actor string) (int, error) {
	next, err := s.store.SetCollection(name, raw, s.commitCollection(ctx, name))
	if err != nil {
		return 0, err
	}
	n := next.Database.Counts()[name]
	s.publish(supabase.EventCollectionUpdated, actor, map[string]interface{}{
		"collection": name,
		"count":      n,
	})
	return n, nil
}

func (s *CatalogService) commitCollection(ctx context.Context, name string) state.CommitFunc {
	return func(db models.Database, _ models.SiteConfig) error {
		if s.persister == nil {
			return nil
		}
		records, _, err := state.CollectionOf(db, name)
		if err != nil {
			return err
		}
		return s.persister.SaveCollection(ctx, name, records)
	}
}

func (s *CatalogService) publish(event, actor string, payload map[string]interface{}) {
	if err := s.events.Publish(event, actor, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", event), zap.Error(err))
	}
}
