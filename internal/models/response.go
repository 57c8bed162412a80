package models

import "time"

type HealthResponse struct {
	Status string `json:"status"`
}

type ImageSessionResponse struct {
	SessionID  string  `json:"session_id"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturation float64 `json:"saturation"`
	Scale      float64 `json:"scale"`
	ClipShape  string  `json:"clip_shape"`
	PreviewURI string  `json:"preview_uri,omitempty"`
}

type SavedImageResponse struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	DataURI    string `json:"data_uri,omitempty"`
	StorageURL string `json:"storage_url,omitempty"`
	FileSize   int64  `json:"file_size"`
}

type RestoreResponse struct {
	Version     string         `json:"version,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Collections map[string]int `json:"collections"`
}

type ArchiveResponse struct {
	Filename   string    `json:"filename"`
	StorageURL string    `json:"storage_url"`
	FileSize   int64     `json:"file_size"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProductImportResponse struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type CollectionResponse struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Records any    `json:"records"`
}
