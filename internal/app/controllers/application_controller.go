package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/app/services"
	"github.com/ribat/admissions/internal/middleware"
	"github.com/ribat/admissions/internal/pkg/helpers"
)

// ExportFilename is the download name of the CSV export
const ExportFilename = "students-export.csv"

// ApplicationController exposes the admission store over HTTP
type ApplicationController struct {
	admissionService *services.AdmissionService
	logger           zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(admissionService *services.AdmissionService, logger zerolog.Logger) *ApplicationController {
	return &ApplicationController{
		admissionService: admissionService,
		logger:           logger.With().Str("controller", "applications").Logger(),
	}
}

// actor names the staff member behind a request for the audit log
func actor(ctx *gin.Context) string {
	if identity, ok := middleware.IdentityFromContext(ctx); ok {
		return identity.Email
	}
	return "unknown"
}

func (c *ApplicationController) bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		c.logger.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Invalid request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

// Submit handles the public admission form
// @Summary Submit an admission application
// @Description Validates the form and stores a new pending application
// @Tags admissions
// @Accept json
// @Produce json
// @Param request body dto.ApplicationRequest true "Admission form"
// @Success 201 {object} dto.APIResponse{data=models.Application}
// @Failure 400 {object} dto.ErrorResponse "Validation failed; details maps field to message"
// @Router /admissions [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	var req dto.ApplicationRequest
	if !c.bindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.AddApplication(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(app, "Application submitted"))
}

// List returns a page of applications
// @Summary List applications
// @Description Newest first. search matches name, father name, roll number (case-insensitive) and phone.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param class query string false "Class code"
// @Param search query string false "Search text"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	filter := query.Filter()
	filter.Page, filter.Size = page, size

	apps, total, err := c.admissionService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      apps,
		Pagination: helpers.NewPaginationInfo(int64(total), page, size),
	}, ""))
}

// Get returns one application
// @Summary Get an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 404 {object} dto.ErrorResponse "application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	app, err := c.admissionService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}

// Update corrects applicant fields
// @Summary Update an application
// @Description Only applicant fields can change. Send expectedUpdatedAt to reject the edit if someone else changed the record first.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ApplicationPatchRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "application was modified by someone else"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /applications/{id} [put]
func (c *ApplicationController) Update(ctx *gin.Context) {
	var req dto.ApplicationPatchRequest
	if !c.bindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.UpdateApplication(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application updated"))
}

// Delete removes an application
// @Summary Delete an application
// @Description Deleting an unknown id succeeds without effect
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /applications/{id} [delete]
func (c *ApplicationController) Delete(ctx *gin.Context) {
	if err := c.admissionService.DeleteApplication(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("applicationID", ctx.Param("id")).Str("by", actor(ctx)).Msg("Application deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted"))
}

// Approve places a pending applicant
// @Summary Approve an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.ApproveRequest true "Roll number and section"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 400 {object} dto.ErrorResponse "Roll number and section are required"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "only pending applications can be approved or rejected"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /applications/{id}/approve [post]
func (c *ApplicationController) Approve(ctx *gin.Context) {
	var req dto.ApproveRequest
	if !c.bindJSON(ctx, &req) {
		return
	}

	app, err := c.admissionService.Approve(ctx.Request.Context(), ctx.Param("id"), req.RollNumber, req.Section)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("applicationID", app.ID).Str("by", actor(ctx)).Msg("Application approved")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application approved"))
}

// Reject declines a pending application
// @Summary Reject an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "only pending applications can be approved or rejected"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /applications/{id}/reject [post]
func (c *ApplicationController) Reject(ctx *gin.Context) {
	app, err := c.admissionService.Reject(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("applicationID", app.ID).Str("by", actor(ctx)).Msg("Application rejected")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, "Application rejected"))
}

// Stats returns the status counts
// @Summary Application statistics
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Stats}
// @Router /applications/stats [get]
func (c *ApplicationController) Stats(ctx *gin.Context) {
	stats, err := c.admissionService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// Export downloads the filtered applications as CSV
// @Summary Export applications as CSV
// @Description Rows follow the order applications were submitted
// @Tags applications
// @Produce text/csv
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param class query string false "Class code"
// @Param search query string false "Search text"
// @Success 200 {string} string "CSV file"
// @Failure 403 {object} dto.ErrorResponse "Admins only"
// @Router /applications/export [get]
func (c *ApplicationController) Export(ctx *gin.Context) {
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	csv, err := c.admissionService.Export(ctx.Request.Context(), query.Filter())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}
