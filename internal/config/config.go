package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"crinf-backoffice/internal/imageedit"
)

type Config struct {
	// Auth
	JWTSecret string

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseStorageBucket  string
	EventsTable            string

	// Database
	DatabaseURL string

	// Background removal service (optional)
	SegmentationAPIURL string
	SegmentationAPIKey string

	// Image editing
	ImageSessionTTL time.Duration
	MaxUploadBytes  int64
	MaxImagePixels  int

	// Backups
	SnapshotPrefix    string
	PreferencesPrefix string

	// Server
	Port        string
	Environment string
	BaseURL     string
}

// Load reads configuration from the environment and, when configFile is not
// empty, from that file. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		JWTSecret: v.GetString("JWT_SECRET"),

		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),
		EventsTable:            v.GetString("EVENTS_TABLE"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		SegmentationAPIURL: v.GetString("SEGMENTATION_API_URL"),
		SegmentationAPIKey: v.GetString("SEGMENTATION_API_KEY"),

		ImageSessionTTL: v.GetDuration("IMAGE_SESSION_TTL"),
		MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
		MaxImagePixels:  v.GetInt("MAX_IMAGE_PIXELS"),

		SnapshotPrefix:    v.GetString("SNAPSHOT_PREFIX"),
		PreferencesPrefix: v.GetString("PREFERENCES_PREFIX"),

		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		BaseURL:     v.GetString("BASE_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SUPABASE_STORAGE_BUCKET", "backoffice")
	v.SetDefault("EVENTS_TABLE", "backoffice_events")
	v.SetDefault("IMAGE_SESSION_TTL", 30*time.Minute)
	v.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("MAX_IMAGE_PIXELS", imageedit.DefaultMaxPixels)
	v.SetDefault("SNAPSHOT_PREFIX", "backup_crinf")
	v.SetDefault("PREFERENCES_PREFIX", "preferencias_crinf")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:8080")
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.ImageSessionTTL <= 0 {
		return fmt.Errorf("IMAGE_SESSION_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be positive")
	}
	return nil
}

// StorageEnabled reports whether Supabase storage and events are configured.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
