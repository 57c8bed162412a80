// Package state owns the in-memory application state: every entity
// collection plus the site configuration. Each mutation builds a new State
// and swaps it in whole, so readers never observe a partial update.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"crinf-backoffice/internal/models"
)

var ErrUnknownCollection = errors.New("unknown collection")

// State is one immutable view of the application. Callers must not modify
// the slices it holds; use the Store setters instead.
type State struct {
	Database models.Database
	Config   models.SiteConfig
}

type Store struct {
	mu      sync.RWMutex
	current *State
}

func NewStore(db models.Database, cfg models.SiteConfig) *Store {
	db.Normalize()
	cfg.Normalize()
	return &Store{current: &State{Database: db, Config: cfg}}
}

// NewEmptyStore starts with empty collections and the default config.
func NewEmptyStore() *Store {
	return NewStore(models.Database{}, models.DefaultSiteConfig())
}

// Current returns the state pointer. It stays valid, and unchanged, after
// later mutations.
func (s *Store) Current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Database() models.Database {
	return s.Current().Database
}

func (s *Store) Config() models.SiteConfig {
	return s.Current().Config
}

// CommitFunc persists a candidate state. It runs under the write lock before
// the candidate becomes current; an error discards the candidate.
type CommitFunc func(db models.Database, cfg models.SiteConfig) error

// Update applies fn to a copy of the current state, commits it and swaps it
// in. If fn or commit fails nothing changes. commit may be nil.
func (s *Store) Update(fn func(db *models.Database, cfg *models.SiteConfig) error, commit CommitFunc) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.current.Database
	cfg := s.current.Config
	if err := fn(&db, &cfg); err != nil {
		return nil, err
	}
	db.Normalize()
	cfg.Normalize()
	if commit != nil {
		if err := commit(db, cfg); err != nil {
			return nil, err
		}
	}
	next := &State{Database: db, Config: cfg}
	s.current = next
	return next, nil
}

// Replace swaps in db and cfg wholesale.
func (s *Store) Replace(db models.Database, cfg models.SiteConfig, commit CommitFunc) (*State, error) {
	return s.Update(func(d *models.Database, c *models.SiteConfig) error {
		*d = db
		*c = cfg
		return nil
	}, commit)
}

func (s *Store) SetConfig(cfg models.SiteConfig, commit CommitFunc) (*State, error) {
	return s.Update(func(_ *models.Database, c *models.SiteConfig) error {
		*c = cfg
		return nil
	}, commit)
}

// AddProducts appends products whose IDs are not present yet and reports how
// many were added.
func (s *Store) AddProducts(products []models.Product, commit CommitFunc) (int, error) {
	added := 0
	_, err := s.Update(func(db *models.Database, _ *models.SiteConfig) error {
		ids := make(map[string]bool, len(db.Products))
		for _, p := range db.Products {
			ids[p.ID] = true
		}
		merged := make([]models.Product, len(db.Products), len(db.Products)+len(products))
		copy(merged, db.Products)
		for _, p := range products {
			if ids[p.ID] {
				continue
			}
			ids[p.ID] = true
			merged = append(merged, p)
			added++
		}
		db.Products = merged
		return nil
	}, commit)
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Collection returns the records of one collection by its snapshot name.
func (s *Store) Collection(name string) (any, int, error) {
	return CollectionOf(s.Database(), name)
}

// SetCollection replaces one collection from its JSON encoding.
func (s *Store) SetCollection(name string, raw json.RawMessage, commit CommitFunc) (*State, error) {
	return s.Update(func(db *models.Database, _ *models.SiteConfig) error {
		target, err := collectionTarget(db, name)
		if err != nil {
			return err
		}
		// Decode into a fresh slice; the old one may still be shared with
		// earlier states.
		rv := reflect.ValueOf(target).Elem()
		rv.Set(reflect.Zero(rv.Type()))
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return nil
	}, commit)
}

// CollectionOf looks up a collection of db by name.
func CollectionOf(db models.Database, name string) (any, int, error) {
	counts := db.Counts()
	n, ok := counts[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	target, _ := collectionTarget(&db, name)
	return reflect.ValueOf(target).Elem().Interface(), n, nil
}

func collectionTarget(db *models.Database, name string) (any, error) {
	switch name {
	case models.CollectionProducts:
		return &db.Products, nil
	case models.CollectionServices:
		return &db.Services, nil
	case models.CollectionTechnicalServices:
		return &db.TechnicalServices, nil
	case models.CollectionClients:
		return &db.Clients, nil
	case models.CollectionNeighborhoods:
		return &db.Neighborhoods, nil
	case models.CollectionDownloadablePrograms:
		return &db.DownloadablePrograms, nil
	case models.CollectionSales:
		return &db.Sales, nil
	case models.CollectionExchanges:
		return &db.Exchanges, nil
	case models.CollectionTransactions:
		return &db.Transactions, nil
	case models.CollectionServiceOrders:
		return &db.ServiceOrders, nil
	case models.CollectionCategories:
		return &db.Categories, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
}
