package service

import (
	"context"
	"errors"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/feedback"
	"alcyxob/coaching-api/internal/metrics"
	"alcyxob/coaching-api/internal/repository"
	"alcyxob/coaching-api/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback kinds, used as metric labels.
const (
	FeedbackKindExercise     = "exercise"
	FeedbackKindSets         = "sets"
	FeedbackKindSessionNotes = "session_notes"
)

// ExerciseFeedbackInput carries the optional fields of a feedback submission.
// Nil fields leave the stored values unchanged.
type ExerciseFeedbackInput struct {
	Ref                repository.ExerciseRef
	Completed          *bool
	PerformanceComment *string
	AthleteNotes       *string
	Media              *MediaFile
}

type FeedbackService interface {
	SubmitExerciseFeedback(ctx context.Context, athleteID primitive.ObjectID, input ExerciseFeedbackInput) (*PlanDetail, error)
	// UpdatePerformedSets replaces the sets of one exercise. Invalid sets yield a
	// *feedback.ValidationError and nothing is written.
	UpdatePerformedSets(ctx context.Context, athleteID primitive.ObjectID, ref repository.ExerciseRef, sets []domain.PerformedSet) (*PlanDetail, error)
	UpdateSessionNotes(ctx context.Context, athleteID, planID, sessionID primitive.ObjectID, notes string) (*PlanDetail, error)
}

// feedbackService implements the FeedbackService interface.
type feedbackService struct {
	planRepo   repository.TrainingPlanRepository
	uploadRepo repository.UploadRepository
	plans      TrainingPlanService
	files      storage.FileStorage
	metrics    *metrics.Manager
}

// NewFeedbackService creates a new instance of feedbackService.
func NewFeedbackService(
	planRepo repository.TrainingPlanRepository,
	uploadRepo repository.UploadRepository,
	plans TrainingPlanService,
	files storage.FileStorage,
	metricsManager *metrics.Manager,
) FeedbackService {
	return &feedbackService{
		planRepo:   planRepo,
		uploadRepo: uploadRepo,
		plans:      plans,
		files:      files,
		metrics:    metricsManager,
	}
}

// athletePlan loads the plan and checks the caller is its athlete.
func (s *feedbackService) athletePlan(ctx context.Context, athleteID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.AthleteID != athleteID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *feedbackService) targetExercise(ctx context.Context, athleteID primitive.ObjectID, ref repository.ExerciseRef) (*domain.TrainingPlan, *domain.Exercise, error) {
	plan, err := s.athletePlan(ctx, athleteID, ref.PlanID)
	if err != nil {
		return nil, nil, err
	}
	if plan.FindSession(ref.SessionID) == nil {
		return nil, nil, ErrSessionNotFound
	}
	ex := plan.FindExercise(ref.SessionID, ref.ExerciseID)
	if ex == nil {
		return nil, nil, ErrExerciseNotFound
	}
	return plan, ex, nil
}

func (s *feedbackService) refetch(ctx context.Context, athleteID, planID primitive.ObjectID) (*PlanDetail, error) {
	return s.plans.Get(ctx, Caller{ID: athleteID, Role: domain.RoleAthlete}, planID)
}

// mapWriteErr turns a repository miss during a nested write into the service error.
func mapWriteErr(err error, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}

// SubmitExerciseFeedback stores the athlete's report on one exercise. Evidence
// is uploaded first; if the plan write then fails the object is removed again.
func (s *feedbackService) SubmitExerciseFeedback(ctx context.Context, athleteID primitive.ObjectID, input ExerciseFeedbackInput) (*PlanDetail, error) {
	// 1. Validate media before touching storage
	var mediaKind string
	if input.Media != nil {
		mediaKind = feedback.MediaKind(input.Media.ContentType, input.Media.FileName)
		if mediaKind == "" {
			return nil, ErrUnsupportedMedia
		}
	}

	// 2. Check ownership and the target exercise
	plan, ex, err := s.targetExercise(ctx, athleteID, input.Ref)
	if err != nil {
		return nil, err
	}
	previousKey := ex.MediaKey

	update := repository.ExerciseFeedbackUpdate{
		Completed:          input.Completed,
		PerformanceComment: input.PerformanceComment,
		AthleteNotes:       input.AthleteNotes,
	}

	// 3. Upload evidence
	var newKey string
	if input.Media != nil {
		newKey = storage.ExerciseMediaKey(athleteID, plan.ID, input.Media.FileName)
		if err := s.files.Upload(ctx, newKey, input.Media.ContentType, input.Media.Body, input.Media.Size); err != nil {
			log.WithError(err).Errorf("upload evidence for exercise %s", input.Ref.ExerciseID.Hex())
			return nil, ErrMediaStorage
		}
		update.MediaKey = &newKey
	}

	// 4. Write the feedback
	if !update.IsEmpty() {
		if err := s.planRepo.UpdateExerciseFeedback(ctx, input.Ref, update); err != nil {
			if newKey != "" {
				s.deleteObject(ctx, newKey)
			}
			return nil, mapWriteErr(err, ErrExerciseNotFound)
		}
	}

	if newKey != "" {
		sessionID, exerciseID := input.Ref.SessionID, input.Ref.ExerciseID
		upload := &domain.Upload{
			OwnerID:     athleteID,
			Kind:        domain.UploadExerciseMedia,
			PlanID:      &plan.ID,
			SessionID:   &sessionID,
			ExerciseID:  &exerciseID,
			S3ObjectKey: newKey,
			FileName:    input.Media.FileName,
			ContentType: input.Media.ContentType,
			Size:        input.Media.Size,
		}
		if _, err := s.uploadRepo.Create(ctx, upload); err != nil {
			log.WithError(err).Warnf("record evidence upload %s", newKey)
		}
		s.metrics.CounterMediaUploads.WithLabelValues(mediaKind).Inc()

		if previousKey != "" && previousKey != newKey {
			s.deleteObject(ctx, previousKey)
		}
	}

	s.metrics.CounterFeedback.WithLabelValues(FeedbackKindExercise).Inc()
	return s.refetch(ctx, athleteID, plan.ID)
}

func (s *feedbackService) deleteObject(ctx context.Context, key string) {
	if err := s.files.DeleteObject(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.WithError(err).Warnf("delete object %s", key)
	}
}

func (s *feedbackService) UpdatePerformedSets(ctx context.Context, athleteID primitive.ObjectID, ref repository.ExerciseRef, sets []domain.PerformedSet) (*PlanDetail, error) {
	if _, _, err := s.targetExercise(ctx, athleteID, ref); err != nil {
		return nil, err
	}
	if err := feedback.ValidateSets(sets); err != nil {
		return nil, err
	}

	if err := s.planRepo.ReplacePerformedSets(ctx, ref, feedback.NormalizeSets(sets)); err != nil {
		return nil, mapWriteErr(err, ErrExerciseNotFound)
	}

	s.metrics.CounterFeedback.WithLabelValues(FeedbackKindSets).Inc()
	return s.refetch(ctx, athleteID, ref.PlanID)
}

func (s *feedbackService) UpdateSessionNotes(ctx context.Context, athleteID, planID, sessionID primitive.ObjectID, notes string) (*PlanDetail, error) {
	plan, err := s.athletePlan(ctx, athleteID, planID)
	if err != nil {
		return nil, err
	}
	if plan.FindSession(sessionID) == nil {
		return nil, ErrSessionNotFound
	}

	if err := s.planRepo.UpdateSessionNotes(ctx, planID, sessionID, notes); err != nil {
		return nil, mapWriteErr(err, ErrSessionNotFound)
	}

	s.metrics.CounterFeedback.WithLabelValues(FeedbackKindSessionNotes).Inc()
	return s.refetch(ctx, athleteID, planID)
}
