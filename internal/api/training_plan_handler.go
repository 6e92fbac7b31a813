package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlanHandler serves plan CRUD, progress and template conversion.
type TrainingPlanHandler struct {
	planService service.TrainingPlanService
}

func NewTrainingPlanHandler(planService service.TrainingPlanService) *TrainingPlanHandler {
	return &TrainingPlanHandler{planService: planService}
}

// --- Request Structs ---

type PerformedSetRequest struct {
	SetID           string   `json:"setId"`
	SetNumber       int      `json:"setNumber"`
	RepsPerformed   *int     `json:"repsPerformed"`
	LoadUsed        *float64 `json:"loadUsed"`
	MeasureAchieved *float64 `json:"measureAchieved"`
	Completed       bool     `json:"completed"`
}

type ExerciseRequest struct {
	ExerciseID    string                `json:"exerciseId"`
	Name          string                `json:"name" binding:"required"`
	Sets          int                   `json:"sets" binding:"min=0"`
	Reps          int                   `json:"reps" binding:"min=0"`
	RPE           *float64              `json:"rpe"`
	RIR           *float64              `json:"rir"`
	RM            *float64              `json:"rm"`
	Weight        *float64              `json:"weight"`
	Notes         string                `json:"notes"`
	PerformedSets []PerformedSetRequest `json:"performedSets"`
}

type SessionRequest struct {
	SessionID   string            `json:"sessionId"`
	SessionName string            `json:"sessionName" binding:"required"`
	Date        string            `json:"date"` // yyyy-MM-dd or RFC 3339
	Exercises   []ExerciseRequest `json:"exercises" binding:"dive"`
}

type TrainingPlanRequest struct {
	AthleteID   string           `json:"athleteId"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	TemplateID  string           `json:"templateId"`
	Sessions    []SessionRequest `json:"sessions" binding:"dive"`
}

type ConvertToTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var errBadDate = errors.New("dates must be yyyy-MM-dd or RFC 3339")

// parseDate accepts a calendar date or a full timestamp. Empty means unset.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errBadDate, value)
}

func parseID(value, field string) (primitive.ObjectID, error) {
	id, err := parseOptionalID(value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s format", field)
	}
	if id == nil {
		return primitive.NilObjectID, nil
	}
	return *id, nil
}

func (r PerformedSetRequest) toDomain() (domain.PerformedSet, error) {
	id, err := parseID(r.SetID, "setId")
	if err != nil {
		return domain.PerformedSet{}, err
	}
	return domain.PerformedSet{
		ID:              id,
		SetNumber:       r.SetNumber,
		RepsPerformed:   r.RepsPerformed,
		LoadUsed:        r.LoadUsed,
		MeasureAchieved: r.MeasureAchieved,
		Completed:       r.Completed,
	}, nil
}

func setsToDomain(reqs []PerformedSetRequest) ([]domain.PerformedSet, error) {
	sets := make([]domain.PerformedSet, len(reqs))
	for i, r := range reqs {
		set, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}

func (r SessionRequest) toDomain() (domain.Session, error) {
	id, err := parseID(r.SessionID, "sessionId")
	if err != nil {
		return domain.Session{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{ID: id, Name: r.SessionName, Date: date, Exercises: make([]domain.Exercise, len(r.Exercises))}
	for i, ex := range r.Exercises {
		exID, err := parseID(ex.ExerciseID, "exerciseId")
		if err != nil {
			return domain.Session{}, err
		}
		sets, err := setsToDomain(ex.PerformedSets)
		if err != nil {
			return domain.Session{}, err
		}
		session.Exercises[i] = domain.Exercise{
			ID:            exID,
			Name:          ex.Name,
			Sets:          ex.Sets,
			Reps:          ex.Reps,
			RPE:           ex.RPE,
			RIR:           ex.RIR,
			RM:            ex.RM,
			Weight:        ex.Weight,
			Notes:         ex.Notes,
			PerformedSets: sets,
		}
	}
	return session, nil
}

func sessionsToDomain(reqs []SessionRequest) ([]domain.Session, error) {
	sessions := make([]domain.Session, len(reqs))
	for i, r := range reqs {
		s, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		sessions[i] = s
	}
	return sessions, nil
}

func (r TrainingPlanRequest) toInput() (service.PlanInput, error) {
	var input service.PlanInput
	athleteID, err := parseID(r.AthleteID, "athleteId")
	if err != nil {
		return input, err
	}
	templateID, err := parseOptionalID(r.TemplateID)
	if err != nil {
		return input, errors.New("invalid templateId format")
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return input, err
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return input, err
	}
	sessions, err := sessionsToDomain(r.Sessions)
	if err != nil {
		return input, err
	}
	return service.PlanInput{
		AthleteID:   athleteID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   start,
		EndDate:     end,
		TemplateID:  templateID,
		Sessions:    sessions,
	}, nil
}

func bindPlanRequest(c *gin.Context) (service.PlanInput, bool) {
	var req TrainingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return service.PlanInput{}, false
	}
	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return service.PlanInput{}, false
	}
	return input, true
}

// --- Handler Methods ---

// ListPlans godoc
// @Summary List training plans
// @Description Coaches get the plans they authored, athletes their own.
// @Tags TrainingPlans
// @Produce json
// @Param athleteId query string false "Filter by athlete"
// @Param coachId query string false "Filter by coach"
// @Success 200 {array} domain.TrainingPlan
// @Router /training-plans [get]
func (h *TrainingPlanHandler) ListPlans(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	athleteID, err := parseOptionalID(c.Query("athleteId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format")
		return
	}
	coachID, err := parseOptionalID(c.Query("coachId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coachId format")
		return
	}

	plans, err := h.planService.List(c.Request.Context(), caller, athleteID, coachID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get a training plan with its progress
// @Tags TrainingPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} service.PlanDetail
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /training-plans/{id} [get]
func (h *TrainingPlanHandler) GetPlan(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.planService.Get(c.Request.Context(), caller, planID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetProgress godoc
// @Summary Get the progress summary of a plan
// @Tags TrainingPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} progress.Summary
// @Router /training-plans/{id}/progress [get]
func (h *TrainingPlanHandler) GetProgress(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.planService.Progress(c.Request.Context(), caller, planID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreatePlan godoc
// @Summary Create a training plan for a linked athlete
// @Tags TrainingPlans
// @Accept json
// @Produce json
// @Param plan body TrainingPlanRequest true "Plan"
// @Success 201 {object} service.PlanDetail
// @Failure 403 {object} gin.H "Athlete not linked"
// @Router /training-plans [post]
func (h *TrainingPlanHandler) CreatePlan(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	input, ok := bindPlanRequest(c)
	if !ok {
		return
	}
	detail, err := h.planService.Create(c.Request.Context(), caller.ID, input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// UpdatePlan godoc
// @Summary Replace a training plan
// @Description Feedback on exercises whose ids are kept is preserved.
// @Tags TrainingPlans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param plan body TrainingPlanRequest true "Plan"
// @Success 200 {object} service.PlanDetail
// @Router /training-plans/{id} [put]
func (h *TrainingPlanHandler) UpdatePlan(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, ok := bindPlanRequest(c)
	if !ok {
		return
	}
	detail, err := h.planService.Update(c.Request.Context(), caller.ID, planID, input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// DeletePlan godoc
// @Summary Delete a training plan
// @Tags TrainingPlans
// @Param id path string true "Plan ID"
// @Success 204
// @Router /training-plans/{id} [delete]
func (h *TrainingPlanHandler) DeletePlan(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.planService.Delete(c.Request.Context(), caller.ID, planID); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConvertToTemplate godoc
// @Summary Save a plan's structure as a template
// @Tags TrainingPlans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param body body ConvertToTemplateRequest false "Template name and description"
// @Success 201 {object} domain.Template
// @Router /training-plans/{id}/convert-to-template [post]
func (h *TrainingPlanHandler) ConvertToTemplate(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ConvertToTemplateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}

	template, err := h.planService.ConvertToTemplate(c.Request.Context(), caller.ID, planID, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// RemoveTemplateStatus godoc
// @Summary Clear the template flag of a plan
// @Tags TrainingPlans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} service.PlanDetail
// @Router /training-plans/{id}/remove-template-status [patch]
func (h *TrainingPlanHandler) RemoveTemplateStatus(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.planService.RemoveTemplateStatus(c.Request.Context(), caller.ID, planID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
