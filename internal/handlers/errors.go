package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crinf-backoffice/internal/imageedit"
	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/services"
	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/spreadsheet"
	"crinf-backoffice/internal/state"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrMalformedDocument),
		errors.Is(err, imageedit.ErrDecodeFailure),
		errors.Is(err, imageedit.ErrUnknownParameter),
		errors.Is(err, imageedit.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, state.ErrUnknownCollection):
		return http.StatusNotFound
	case errors.Is(err, imageedit.ErrSessionClosed),
		errors.Is(err, imageedit.ErrSourceChanged):
		return http.StatusConflict
	case errors.Is(err, spreadsheet.ErrSpreadsheetFormat),
		errors.Is(err, imageedit.ErrNoSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imageedit.ErrBackgroundRemovalUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, services.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), models.ErrorResponse{
		Error:   message,
		Message: err.Error(),
	})
}
