// Package snapshot serializes the whole application state to a single JSON
// document and back. Import is all-or-nothing: a document that fails to parse
// yields ErrMalformedDocument and no data.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crinf-backoffice/internal/models"
)

// FormatVersion tags documents written by this package. It is informational:
// Import accepts any version.
const FormatVersion = "2.0"

var ErrMalformedDocument = errors.New("malformed snapshot document")

// Document is the on-disk snapshot layout.
type Document struct {
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Database  models.Database   `json:"database"`
	Config    models.SiteConfig `json:"config"`
}

// Codec builds and parses snapshot documents. Now is overridable for tests.
type Codec struct {
	Now func() time.Time
}

func NewCodec() *Codec {
	return &Codec{Now: time.Now}
}

// Export serializes db and cfg into an indented JSON document.
func (c *Codec) Export(db models.Database, cfg models.SiteConfig) ([]byte, error) {
	db.Normalize()
	cfg.Normalize()
	doc := Document{
		Version:   FormatVersion,
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
		Database:  db,
		Config:    cfg,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// ExportPreferences serializes only the branding/theme fields of cfg.
func (c *Codec) ExportPreferences(cfg models.SiteConfig) ([]byte, error) {
	data, err := json.MarshalIndent(models.PreferencesOf(cfg), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return data, nil
}

// Import parses a snapshot document. Missing collections come back empty and
// unknown fields are ignored.
func (c *Codec) Import(data []byte) (*Document, error) {
	if err := requireObject(data); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	doc.Database.Normalize()
	doc.Config.Normalize()
	return &doc, nil
}

// ImportPreferences parses a preferences document and applies the fields it
// contains onto a copy of current.
func (c *Codec) ImportPreferences(data []byte, current models.SiteConfig) (models.SiteConfig, error) {
	if err := requireObject(data); err != nil {
		return current, err
	}
	var prefs models.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return current, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return prefs.Apply(current), nil
}

// Filename returns "<prefix>_<unix-millis>.json".
func Filename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%d.json", prefix, t.UnixMilli())
}

// requireObject rejects documents whose top level is not a JSON object, so
// that "null" cannot wipe the state.
func requireObject(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: top level must be a JSON object", ErrMalformedDocument)
	}
	return nil
}

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
