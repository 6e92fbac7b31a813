package api

import (
	"errors"
	"net/http"

	"alcyxob/coaching-api/internal/feedback"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// serviceErrorStatus maps service errors to HTTP status codes.
var serviceErrorStatus = []struct {
	err  error
	code int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{service.ErrPasswordMismatch, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrInvalidActivationToken, http.StatusBadRequest},
	{service.ErrInvalidResetToken, http.StatusBadRequest},
	{service.ErrUnsupportedMedia, http.StatusBadRequest},
	{service.ErrUnsupportedPicture, http.StatusBadRequest},
	{service.ErrInvalidDateRange, http.StatusBadRequest},
	{service.ErrPlanNameRequired, http.StatusBadRequest},
	{service.ErrAthleteIDRequired, http.StatusBadRequest},
	{service.ErrInvalidCategory, http.StatusBadRequest},
	{service.ErrNotAthlete, http.StatusBadRequest},
	{service.ErrNotCoach, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrAccountInactive, http.StatusForbidden},
	{service.ErrPlanAccessDenied, http.StatusForbidden},
	{service.ErrTemplateAccessDenied, http.StatusForbidden},
	{service.ErrPredefinedTemplate, http.StatusForbidden},
	{service.ErrUserAccessDenied, http.StatusForbidden},
	{service.ErrAthleteNotLinked, http.StatusForbidden},

	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrNoCoach, http.StatusNotFound},
	{service.ErrPlanNotFound, http.StatusNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrTemplateNotFound, http.StatusNotFound},

	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrAthleteHasOtherCoach, http.StatusConflict},

	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{service.ErrMediaStorage, http.StatusBadGateway},
}

// respondWithServiceError writes the error body for a failed service call.
// Unknown errors are logged and hidden behind a generic 500.
func respondWithServiceError(c *gin.Context, err error) {
	var validationErr *feedback.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":       validationErr.Error(),
			"fieldErrors": validationErr.FieldErrors,
		})
		return
	}

	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			abortWithError(c, m.code, err.Error())
			return
		}
	}

	log.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}
