// Package feedback holds the rules an athlete's reported results must satisfy
// before they are stored.
package feedback

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"alcyxob/coaching-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgRepsRequired = "repsPerformed is required for a completed set"
	msgLoadRequired = "loadUsed is required for a completed set"
	msgNegative     = "values must not be negative"
)

// FieldError points at one offending performed set.
type FieldError struct {
	Index     int    `json:"index"`
	SetNumber int    `json:"setNumber"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// ValidationError collects every FieldError found in one submission.
type ValidationError struct {
	FieldErrors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("set %d: %s", e.FieldErrors[0].SetNumber, e.FieldErrors[0].Message)
	}
	return fmt.Sprintf("%d performed sets are invalid", len(e.FieldErrors))
}

// ValidateSets checks every set and reports all violations at once.
// A completed set must carry both repsPerformed and loadUsed.
func ValidateSets(sets []domain.PerformedSet) error {
	var errs []FieldError
	for i, s := range sets {
		setNumber := s.SetNumber
		if setNumber == 0 {
			setNumber = i + 1
		}
		if (s.RepsPerformed != nil && *s.RepsPerformed < 0) ||
			(s.LoadUsed != nil && *s.LoadUsed < 0) ||
			(s.MeasureAchieved != nil && *s.MeasureAchieved < 0) {
			errs = append(errs, FieldError{Index: i, SetNumber: setNumber, Field: "performedSets", Message: msgNegative})
		}
		if !s.Completed {
			continue
		}
		if s.RepsPerformed == nil {
			errs = append(errs, FieldError{Index: i, SetNumber: setNumber, Field: "repsPerformed", Message: msgRepsRequired})
		}
		if s.LoadUsed == nil {
			errs = append(errs, FieldError{Index: i, SetNumber: setNumber, Field: "loadUsed", Message: msgLoadRequired})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{FieldErrors: errs}
	}
	return nil
}

// NormalizeSets assigns ids and set numbers that the client left out.
func NormalizeSets(sets []domain.PerformedSet) []domain.PerformedSet {
	out := make([]domain.PerformedSet, len(sets))
	for i, s := range sets {
		if s.ID == primitive.NilObjectID {
			s.ID = primitive.NewObjectID()
		}
		if s.SetNumber == 0 {
			s.SetNumber = i + 1
		}
		out[i] = s
	}
	return out
}

// MediaKind classifies an upload by MIME type, falling back to the file extension.
// It returns "" when the file is neither an image nor a video.
func MediaKind(contentType, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mediaType
	}
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "image"
	case strings.HasPrefix(ct, "video/"):
		return "video"
	}
	return ""
}
