package api

import (
	"fmt"
	"net/http"
	"strconv"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type CreateTemplateRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Sessions    []SessionRequest `json:"sessions" binding:"dive"`
}

type TemplateFromPlanRequest struct {
	PlanID      string `json:"planId" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListTemplates godoc
// @Summary List active templates
// @Tags Templates
// @Produce json
// @Param type query string false "predefined or user_created"
// @Param createdBy query string false "Creator coach ID"
// @Param predefined query bool false "Only predefined templates"
// @Param category query string false "Predefined category"
// @Success 200 {array} domain.Template
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	query := service.TemplateQuery{
		Type:     domain.TemplateType(c.Query("type")),
		Category: domain.TemplateCategory(c.Query("category")),
	}
	if query.Type != "" && query.Type != domain.TemplatePredefined && query.Type != domain.TemplateUserCreated {
		abortWithError(c, http.StatusBadRequest, "type must be predefined or user_created")
		return
	}
	createdBy, err := parseOptionalID(c.Query("createdBy"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid createdBy format")
		return
	}
	query.CreatedBy = createdBy
	if raw := c.Query("predefined"); raw != "" {
		if query.Predefined, err = strconv.ParseBool(raw); err != nil {
			abortWithError(c, http.StatusBadRequest, "predefined must be true or false")
			return
		}
	}

	templates, err := h.templateService.List(c.Request.Context(), query)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// MostUsed godoc
// @Summary Most used templates
// @Tags Templates
// @Produce json
// @Param limit query int false "Result size, default 10, max 50"
// @Success 200 {array} domain.Template
// @Router /templates/most-used [get]
func (h *TemplateHandler) MostUsed(c *gin.Context) {
	limit := service.DefaultMostUsedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}
	templates, err := h.templateService.MostUsed(c.Request.Context(), limit)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} domain.Template
// @Failure 404 {object} gin.H
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	template, err := h.templateService.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// CreateTemplate godoc
// @Summary Create a user template
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body CreateTemplateRequest true "Template"
// @Success 201 {object} domain.Template
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	sessions, err := sessionsToDomain(req.Sessions)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), caller.ID, service.TemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Sessions:    sessions,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// CreateFromPlan godoc
// @Summary Create a template from one of the coach's plans
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body TemplateFromPlanRequest true "Source plan"
// @Success 201 {object} domain.Template
// @Router /templates/from-plan [post]
func (h *TemplateHandler) CreateFromPlan(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req TemplateFromPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := parseID(req.PlanID, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.templateService.CreateFromPlan(c.Request.Context(), caller.ID, planID, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// IncrementUsage godoc
// @Summary Count one use of a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} domain.Template
// @Router /templates/{id}/increment-usage [patch]
func (h *TemplateHandler) IncrementUsage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	template, err := h.templateService.IncrementUsage(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate godoc
// @Summary Delete a user template
// @Description Predefined templates cannot be deleted. Only the creator may delete.
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Failure 403 {object} gin.H
// @Router /templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), caller.ID, id); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
