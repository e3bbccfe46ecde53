package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
)

// CatalogController serves the static class catalogue
type CatalogController struct{}

// NewCatalogController creates a new CatalogController
func NewCatalogController() *CatalogController {
	return &CatalogController{}
}

// GetCatalog lists classes, sections and academic years
// @Summary Class catalogue
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CatalogResponse}
// @Router /catalog [get]
func (c *CatalogController) GetCatalog(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CatalogResponse{
		Classes:       models.ClassOptions,
		Sections:      models.Sections,
		AcademicYears: models.AcademicYears,
	}, ""))
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /health [get]
func (c *CatalogController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
}
