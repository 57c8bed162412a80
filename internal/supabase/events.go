package supabase

import (
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
)

// Event names published after state changes.
const (
	EventBackupRestored      = "backup_restored"
	EventPreferencesRestored = "preferences_restored"
	EventBackupArchived      = "backup_archived"
	EventProductsImported    = "products_imported"
	EventConfigUpdated       = "config_updated"
	EventCollectionUpdated   = "collection_updated"
	EventImageSaved          = "image_saved"
)

// EventPublisher records backoffice events. Rows inserted into the events
// table are broadcast to subscribed admin screens by Supabase Realtime.
type EventPublisher interface {
	Publish(event string, actor string, payload map[string]interface{}) error
}

type RealtimeClient struct {
	client *supabase.Client
	table  string
}

func NewRealtimeClient(client *supabase.Client, table string) *RealtimeClient {
	return &RealtimeClient{
		client: client,
		table:  table,
	}
}

type eventRow struct {
	Event     string                 `json:"event"`
	Actor     string                 `json:"actor,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

func (r *RealtimeClient) Publish(event string, actor string, payload map[string]interface{}) error {
	row := eventRow{
		Event:     event,
		Actor:     actor,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	_, _, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}

// NopPublisher drops every event. Used when Supabase is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(string, string, map[string]interface{}) error { return nil }

// Event payloads
func RestoredPayload(version string, counts map[string]int) map[string]interface{} {
	return map[string]interface{}{
		"version":     version,
		"collections": counts,
	}
}

func ArchivedPayload(filename, url string, size int64) map[string]interface{} {
	return map[string]interface{}{
		"filename":    filename,
		"storage_url": url,
		"file_size":   size,
	}
}

func ProductsImportedPayload(added, skipped int) map[string]interface{} {
	return map[string]interface{}{
		"added":   added,
		"skipped": skipped,
	}
}

func ImageSavedPayload(sessionID string, width, height int, url string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  sessionID,
		"width":       width,
		"height":      height,
		"storage_url": url,
	}
}
