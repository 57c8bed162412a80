package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crinf-backoffice/internal/middleware"
	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CatalogHandler struct {
	catalog        *services.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, maxUploadBytes int64, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:        catalog,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ExportProducts godoc
// @Summary     Export products as XLSX
// @Tags        products
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    Bearer
// @Success     200 {file} binary
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/v1/products/export [get]
func (h *CatalogHandler) ExportProducts(c *gin.Context) {
	data, err := h.catalog.ExportProducts()
	if err != nil {
		respondError(c, "failed to export products", err)
		return
	}
	attachment(c, "produtos.xlsx", xlsxContentType, data)
}

// ImportProducts godoc
// @Summary     Import products from XLSX
// @Description Reads the first sheet; row 1 holds the headers (Nome, Categoria, Preco_Venda, Estoque...). Products whose ID already exists are skipped.
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Spreadsheet (.xlsx)"
// @Success     200 {object} models.ProductImportResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /api/v1/products/import [post]
func (h *CatalogHandler) ImportProducts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing spreadsheet",
			Message: err.Error(),
		})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read spreadsheet",
			Message: err.Error(),
		})
		return
	}
	defer f.Close()

	result, err := h.catalog.ImportProducts(c.Request.Context(), f, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to import products", err)
		return
	}

	c.JSON(http.StatusOK, models.ProductImportResponse{
		Added:   result.Added,
		Skipped: result.Skipped,
		Errors:  result.Errors,
	})
}

// GetConfig godoc
// @Summary     Site configuration
// @Tags        config
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SiteConfig
// @Router      /api/v1/config [get]
func (h *CatalogHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Config())
}

// UpdateConfig godoc
// @Summary     Replace the site configuration
// @Tags        config
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.SiteConfig true "Site configuration"
// @Success     200 {object} models.SiteConfig
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/config [put]
func (h *CatalogHandler) UpdateConfig(c *gin.Context) {
	var cfg models.SiteConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.catalog.UpdateConfig(c.Request.Context(), cfg, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to update config", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetCollection godoc
// @Summary     List a collection
// @Tags        collections
// @Produce     json
// @Security    Bearer
// @Param       name path string true "Collection name (products, clients, sales...)"
// @Success     200 {object} models.CollectionResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/collections/{name} [get]
func (h *CatalogHandler) GetCollection(c *gin.Context) {
	name := c.Param("name")
	records, n, err := h.catalog.Collection(name)
	if err != nil {
		respondError(c, fmt.Sprintf("collection %q not found", name), err)
		return
	}
	c.JSON(http.StatusOK, models.CollectionResponse{
		Name:    name,
		Count:   n,
		Records: records,
	})
}

// ReplaceCollection godoc
// @Summary     Replace a collection
// @Description Overwrites every record of the collection with the JSON array in the body.
// @Tags        collections
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       name path string true "Collection name"
// @Success     200 {object} models.CollectionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/v1/collections/{name} [put]
func (h *CatalogHandler) ReplaceCollection(c *gin.Context) {
	name := c.Param("name")

	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	n, err := h.catalog.ReplaceCollection(c.Request.Context(), name, raw, middleware.Actor(c))
	if err != nil {
		respondError(c, "failed to replace collection", err)
		return
	}
	records, _, err := h.catalog.Collection(name)
	if err != nil {
		respondError(c, "failed to read collection", err)
		return
	}
	c.JSON(http.StatusOK, models.CollectionResponse{
		Name:    name,
		Count:   n,
		Records: records,
	})
}
