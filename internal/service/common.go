package service

import (
	"context"
	"errors"
	"io"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Shared Error Definitions ---
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnsupportedMedia   = errors.New("file must be an image or a video")
	ErrUnsupportedPicture = errors.New("profile picture must be an image")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrMediaStorage       = errors.New("failed to store media file")
)

// Caller identifies the authenticated user on whose behalf a service call runs.
type Caller struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (c Caller) IsCoach() bool   { return c.Role == domain.RoleCoach }
func (c Caller) IsAthlete() bool { return c.Role == domain.RoleAthlete }

// MediaFile is an uploaded file streamed from the request.
type MediaFile struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// presignPlanMedia fills MediaURL for every exercise that has stored evidence.
// A failure to sign one URL is logged and leaves that URL empty.
func presignPlanMedia(ctx context.Context, files storage.FileStorage, plan *domain.TrainingPlan, expiry time.Duration) {
	for i := range plan.Sessions {
		for j := range plan.Sessions[i].Exercises {
			ex := &plan.Sessions[i].Exercises[j]
			if ex.MediaKey == "" {
				continue
			}
			url, err := files.GeneratePresignedDownloadURL(ctx, ex.MediaKey, expiry)
			if err != nil {
				log.WithError(err).Warnf("presign media for exercise %s", ex.ID.Hex())
				continue
			}
			ex.MediaURL = url
		}
	}
}

// newSessionsFrom deep-copies sessions with fresh ids, no dates and no athlete
// feedback, the shape a plan gets when seeded from a template and vice versa.
func newSessionsFrom(sessions []domain.Session) []domain.Session {
	out := make([]domain.Session, len(sessions))
	for i, s := range sessions {
		out[i] = domain.Session{
			ID:        primitive.NewObjectID(),
			Name:      s.Name,
			Exercises: make([]domain.Exercise, len(s.Exercises)),
		}
		for j, ex := range s.Exercises {
			ex.ID = primitive.NewObjectID()
			sets := make([]domain.PerformedSet, len(ex.PerformedSets))
			for k, set := range ex.PerformedSets {
				sets[k] = domain.PerformedSet{ID: primitive.NewObjectID(), SetNumber: set.SetNumber}
			}
			ex.PerformedSets = sets
			ex.ResetFeedback()
			out[i].Exercises[j] = ex
		}
	}
	return out
}
