package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crinf-backoffice/internal/imageedit"
	"crinf-backoffice/internal/middleware"
	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/services"
)

type ImagesHandler struct {
	images         *services.ImageService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewImagesHandler(images *services.ImageService, maxUploadBytes int64, logger *zap.Logger) *ImagesHandler {
	return &ImagesHandler{
		images:         images,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// CreateSession godoc
// @Summary     Open an image edit session
// @Description Decodes the uploaded image (PNG, JPEG, GIF, BMP or WebP) and renders the first preview with neutral parameters.
// @Description The image is sent either as multipart field "image" or as a JSON body with a base64 data URI.
// @Tags        images
// @Accept      multipart/form-data,json
// @Produce     json
// @Security    Bearer
// @Param       image formData file false "Source image"
// @Param       request body models.CreateImageSessionRequest false "Source image as data URI"
// @Success     201 {object} models.ImageSessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions [post]
func (h *ImagesHandler) CreateSession(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	src, err := h.readSource(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid image upload",
			Message: err.Error(),
		})
		return
	}

	id, session, err := h.images.Open(src)
	if err != nil {
		respondError(c, "failed to open image", err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(id, session))
}

func (h *ImagesHandler) readSource(c *gin.Context) ([]byte, error) {
	if fileHeader, err := c.FormFile("image"); err == nil {
		f, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	var req models.CreateImageSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return []byte(req.DataURI), nil
}

// UpdateSession godoc
// @Summary     Adjust image parameters
// @Description Updates brightness, contrast, saturation (0-200), scale (10-150) and clip shape. Out-of-range values are clamped. Absent fields keep their value.
// @Tags        images
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.ImageParamsRequest true "Parameters"
// @Success     200 {object} models.ImageSessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id} [patch]
func (h *ImagesHandler) UpdateSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req models.ImageParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	session, err := h.images.Adjust(id, req)
	if err != nil {
		respondError(c, "failed to adjust image", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(id, session))
}

// SetParameter godoc
// @Summary     Set one image parameter
// @Description Sets brightness, contrast, saturation, scale or clipShape by name and re-renders the preview.
// @Tags        images
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       name path string true "Parameter name"
// @Param       request body models.SetParameterRequest true "Value"
// @Success     200 {object} models.ImageSessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id}/params/{name} [patch]
func (h *ImagesHandler) SetParameter(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req models.SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	var value string
	switch v := req.Value.(type) {
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		value = v
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "value must be a number or a string",
		})
		return
	}

	session, err := h.images.SetParameter(id, c.Param("name"), value)
	if err != nil {
		respondError(c, "failed to set parameter", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(id, session))
}

// Preview godoc
// @Summary     Current preview
// @Description Returns the rendered preview as PNG.
// @Tags        images
// @Produce     png
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id}/preview [get]
func (h *ImagesHandler) Preview(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, err := h.images.Get(id)
	if err != nil {
		respondError(c, "session not found", err)
		return
	}
	data, err := session.PreviewPNG()
	if err != nil {
		respondError(c, "failed to render preview", err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// SaveSession godoc
// @Summary     Save the edited image
// @Description Encodes the current raster as PNG, uploads it to storage when configured and closes the session.
// @Tags        images
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SavedImageResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id}/save [post]
func (h *ImagesHandler) SaveSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	artifact, url, err := h.images.Save(id, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to save image", err)
		return
	}

	response := models.SavedImageResponse{
		Width:      artifact.Width,
		Height:     artifact.Height,
		StorageURL: url,
		FileSize:   int64(len(artifact.PNG)),
	}
	if url == "" {
		response.DataURI = artifact.DataURI()
	}
	c.JSON(http.StatusOK, response)
}

// CancelSession godoc
// @Summary     Cancel an edit session
// @Tags        images
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id} [delete]
func (h *ImagesHandler) CancelSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.images.Cancel(id); err != nil {
		respondError(c, "failed to cancel session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveBackground godoc
// @Summary     Remove the image background
// @Description Sends the source image to the configured segmentation service. Answers 501 when none is configured.
// @Tags        images
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.ImageSessionResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     501 {object} models.ErrorResponse
// @Router      /api/v1/images/sessions/{session_id}/remove-background [post]
func (h *ImagesHandler) RemoveBackground(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	session, err := h.images.RemoveBackground(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("background removal failed", zap.String("session_id", id.String()), zap.Error(err))
		respondError(c, "failed to remove background", err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(id, session))
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func sessionResponse(id uuid.UUID, session *imageedit.Session) models.ImageSessionResponse {
	p := session.Params()
	response := models.ImageSessionResponse{
		SessionID:  id.String(),
		Brightness: p.Brightness,
		Contrast:   p.Contrast,
		Saturation: p.Saturation,
		Scale:      p.Scale,
		ClipShape:  p.Clip.String(),
	}
	if preview := session.Preview(); preview != nil {
		b := preview.Bounds()
		response.Width = b.Dx()
		response.Height = b.Dy()
		if data, err := imageedit.EncodePNG(preview); err == nil {
			response.PreviewURI = imageedit.DataURI(data)
		}
	}
	return response
}
