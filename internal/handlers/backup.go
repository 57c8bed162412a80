package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crinf-backoffice/internal/middleware"
	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/services"
)

type BackupHandler struct {
	backups        *services.BackupService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewBackupHandler(backups *services.BackupService, maxUploadBytes int64, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{
		backups:        backups,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Download godoc
// @Summary     Download a full backup
// @Description Serializes every collection and the site configuration into one JSON document.
// @Tags        backup
// @Produce     json
// @Security    Bearer
// @Success     200 {file} binary
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/backup [get]
func (h *BackupHandler) Download(c *gin.Context) {
	filename, data, err := h.backups.Export()
	if err != nil {
		respondError(c, "failed to export backup", err)
		return
	}
	attachment(c, filename, "application/json", data)
}

// Restore godoc
// @Summary     Restore a full backup
// @Description Replaces all collections and the site configuration with the uploaded document. A malformed document changes nothing.
// @Tags        backup
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    Bearer
// @Param       file formData file false "Backup document"
// @Success     200 {object} models.RestoreResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/backup/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	data, ok := h.readDocument(c)
	if !ok {
		return
	}

	doc, err := h.backups.Restore(c.Request.Context(), data, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to restore backup", err)
		return
	}

	c.JSON(http.StatusOK, models.RestoreResponse{
		Version:     doc.Version,
		Timestamp:   doc.Timestamp,
		Collections: doc.Database.Counts(),
	})
}

// Archive godoc
// @Summary     Archive a backup to storage
// @Tags        backup
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.ArchiveResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/v1/backup/archive [post]
func (h *BackupHandler) Archive(c *gin.Context) {
	archive, err := h.backups.Archive(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to archive backup", err)
		return
	}
	c.JSON(http.StatusCreated, archive)
}

// DownloadPreferences godoc
// @Summary     Download theme preferences
// @Description Exports the colors, logos and admin titles only.
// @Tags        backup
// @Produce     json
// @Security    Bearer
// @Success     200 {file} binary
// @Router      /api/v1/backup/preferences [get]
func (h *BackupHandler) DownloadPreferences(c *gin.Context) {
	filename, data, err := h.backups.ExportPreferences()
	if err != nil {
		respondError(c, "failed to export preferences", err)
		return
	}
	attachment(c, filename, "application/json", data)
}

// RestorePreferences godoc
// @Summary     Restore theme preferences
// @Description Applies the preference fields present in the document onto the current site configuration.
// @Tags        backup
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    Bearer
// @Param       file formData file false "Preferences document"
// @Success     200 {object} models.SiteConfig
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/backup/preferences/restore [post]
func (h *BackupHandler) RestorePreferences(c *gin.Context) {
	data, ok := h.readDocument(c)
	if !ok {
		return
	}

	cfg, err := h.backups.RestorePreferences(c.Request.Context(), data, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to restore preferences", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// readDocument accepts either a multipart "file" field or the raw body.
func (h *BackupHandler) readDocument(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var (
		data []byte
		err  error
	)
	if fileHeader, ferr := c.FormFile("file"); ferr == nil {
		var f io.ReadCloser
		f, err = fileHeader.Open()
		if err == nil {
			data, err = io.ReadAll(f)
			f.Close()
		}
	} else {
		data, err = io.ReadAll(c.Request.Body)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read document",
			Message: err.Error(),
		})
		return nil, false
	}
	return data, true
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
