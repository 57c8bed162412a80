package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"crinf-backoffice/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// LoadState reads every collection and the site config. Collections that
// were never saved come back empty; a missing config row yields the default.
func (d *DatabaseClient) LoadState(ctx context.Context) (models.Database, models.SiteConfig, error) {
	var (
		mu  sync.Mutex
		raw = make(map[string]json.RawMessage, len(models.CollectionNames))
		cfg = models.DefaultSiteConfig()
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range models.CollectionNames {
		g.Go(func() error {
			var records []byte
			err := d.db.QueryRowContext(gctx, `
				SELECT records FROM collections WHERE name = $1
			`, name).Scan(&records)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load collection %s: %w", name, err)
			}
			mu.Lock()
			raw[name] = records
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		var data []byte
		err := d.db.QueryRowContext(gctx, `
			SELECT data FROM site_config WHERE id = 1
		`).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load site config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to decode site config: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Database{}, models.SiteConfig{}, err
	}

	db, err := decodeDatabase(raw)
	if err != nil {
		return models.Database{}, models.SiteConfig{}, err
	}
	cfg.Normalize()
	return db, cfg, nil
}

// SaveState writes every collection and the config in one transaction.
func (d *DatabaseClient) SaveState(ctx context.Context, db models.Database, cfg models.SiteConfig) error {
	collections, err := encodeDatabase(db)
	if err != nil {
		return err
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode site config: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range models.CollectionNames {
		if err := upsertCollection(ctx, tx, name, collections[name]); err != nil {
			return err
		}
	}
	if err := upsertConfig(ctx, tx, cfgJSON); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// SaveCollection persists a single collection.
func (d *DatabaseClient) SaveCollection(ctx context.Context, name string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	return upsertCollection(ctx, d.db, name, data)
}

func (d *DatabaseClient) SaveConfig(ctx context.Context, cfg models.SiteConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode site config: %w", err)
	}
	return upsertConfig(ctx, d.db, data)
}

// RecordArchive remembers a snapshot uploaded to storage.
func (d *DatabaseClient) RecordArchive(ctx context.Context, filename, storagePath string, size int64) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO backup_archives (filename, storage_path, file_size)
		VALUES ($1, $2, $3)
	`, filename, storagePath, size)
	if err != nil {
		return fmt.Errorf("failed to record archive: %w", err)
	}
	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertCollection(ctx context.Context, ex execer, name string, records []byte) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO collections (name, records, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET records = EXCLUDED.records, updated_at = NOW()
	`, name, records)
	if err != nil {
		return fmt.Errorf("failed to save collection %s: %w", name, err)
	}
	return nil
}

func upsertConfig(ctx context.Context, ex execer, data []byte) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO site_config (id, data, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, data)
	if err != nil {
		return fmt.Errorf("failed to save site config: %w", err)
	}
	return nil
}

// encodeDatabase splits db into one JSON array per collection name.
func encodeDatabase(db models.Database) (map[string][]byte, error) {
	db.Normalize()
	whole, err := json.Marshal(db)
	if err != nil {
		return nil, fmt.Errorf("failed to encode collections: %w", err)
	}
	var parts map[string]json.RawMessage
	if err := json.Unmarshal(whole, &parts); err != nil {
		return nil, fmt.Errorf("failed to split collections: %w", err)
	}
	out := make(map[string][]byte, len(parts))
	for name, records := range parts {
		out[name] = records
	}
	return out, nil
}

func decodeDatabase(raw map[string]json.RawMessage) (models.Database, error) {
	var db models.Database
	whole, err := json.Marshal(raw)
	if err != nil {
		return db, fmt.Errorf("failed to join collections: %w", err)
	}
	if err := json.Unmarshal(whole, &db); err != nil {
		return db, fmt.Errorf("failed to decode collections: %w", err)
	}
	db.Normalize()
	return db, nil
}
