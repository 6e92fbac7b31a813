package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"alcyxob/coaching-api/internal/repository"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler receives what athletes report back on their plans.
type FeedbackHandler struct {
	feedbackService service.FeedbackService
}

func NewFeedbackHandler(feedbackService service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// --- Request Structs ---

type ExerciseSetsRequest struct {
	PlanID        string                `json:"planId" binding:"required"`
	SessionID     string                `json:"sessionId" binding:"required"`
	ExerciseID    string                `json:"exerciseId" binding:"required"`
	PerformedSets []PerformedSetRequest `json:"performedSets"`
}

type SessionNotesRequest struct {
	PlanID       string `json:"planId" binding:"required"`
	SessionID    string `json:"sessionId" binding:"required"`
	SessionNotes string `json:"sessionNotes"`
}

func exerciseRef(planID, sessionID, exerciseID string) (repository.ExerciseRef, error) {
	var ref repository.ExerciseRef
	var err error
	if ref.PlanID, err = parseID(planID, "planId"); err != nil {
		return ref, err
	}
	if ref.SessionID, err = parseID(sessionID, "sessionId"); err != nil {
		return ref, err
	}
	if ref.ExerciseID, err = parseID(exerciseID, "exerciseId"); err != nil {
		return ref, err
	}
	return ref, nil
}

func optionalFormValue(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// --- Handler Methods ---

// SubmitExerciseFeedback godoc
// @Summary Report on one exercise
// @Description Optional fields left out keep their stored values. A media file replaces earlier evidence.
// @Tags Feedback
// @Accept multipart/form-data
// @Produce json
// @Param planId formData string true "Plan ID"
// @Param sessionId formData string true "Session ID"
// @Param exerciseId formData string true "Exercise ID"
// @Param completed formData bool false "Exercise completed"
// @Param performanceComment formData string false "Comment on performance"
// @Param athleteNotes formData string false "Free notes"
// @Param media formData file false "Image or video evidence"
// @Success 200 {object} service.PlanDetail
// @Failure 400 {object} gin.H
// @Failure 403 {object} gin.H
// @Failure 404 {object} gin.H
// @Router /training-plans/feedback/exercise [post]
func (h *FeedbackHandler) SubmitExerciseFeedback(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}

	// 1. Identify the exercise
	ref, err := exerciseRef(c.PostForm("planId"), c.PostForm("sessionId"), c.PostForm("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ref.PlanID.IsZero() || ref.SessionID.IsZero() || ref.ExerciseID.IsZero() {
		abortWithError(c, http.StatusBadRequest, "planId, sessionId and exerciseId are required")
		return
	}

	input := service.ExerciseFeedbackInput{
		Ref:                ref,
		PerformanceComment: optionalFormValue(c, "performanceComment"),
		AthleteNotes:       optionalFormValue(c, "athleteNotes"),
	}
	if raw := optionalFormValue(c, "completed"); raw != nil {
		completed, err := strconv.ParseBool(*raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "completed must be true or false")
			return
		}
		input.Completed = &completed
	}

	// 2. Optional evidence
	fileHeader, err := c.FormFile("media")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		abortWithError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	if fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
			return
		}
		defer file.Close()
		input.Media = &service.MediaFile{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Body:        file,
		}
	}

	// 3. Store
	detail, err := h.feedbackService.SubmitExerciseFeedback(c.Request.Context(), caller.ID, input)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateExerciseSets godoc
// @Summary Replace the performed sets of an exercise
// @Description A completed set needs repsPerformed and loadUsed. Violations come back as fieldErrors.
// @Tags Feedback
// @Accept json
// @Produce json
// @Param body body ExerciseSetsRequest true "Performed sets"
// @Success 200 {object} service.PlanDetail
// @Failure 400 {object} gin.H "Includes fieldErrors for invalid sets"
// @Router /training-plans/feedback/exercise-sets [patch]
func (h *FeedbackHandler) UpdateExerciseSets(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req ExerciseSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	ref, err := exerciseRef(req.PlanID, req.SessionID, req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	sets, err := setsToDomain(req.PerformedSets)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.feedbackService.UpdatePerformedSets(c.Request.Context(), caller.ID, ref, sets)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateSessionNotes godoc
// @Summary Set the athlete's notes on a session
// @Tags Feedback
// @Accept json
// @Produce json
// @Param body body SessionNotesRequest true "Notes"
// @Success 200 {object} service.PlanDetail
// @Router /training-plans/feedback/session-notes [patch]
func (h *FeedbackHandler) UpdateSessionNotes(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req SessionNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := parseID(req.PlanID, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	sessionID, err := parseID(req.SessionID, "sessionId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.feedbackService.UpdateSessionNotes(c.Request.Context(), caller.ID, planID, sessionID, req.SessionNotes)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
