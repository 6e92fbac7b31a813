package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/feedback"
	"alcyxob/coaching-api/internal/progress"
	"alcyxob/coaching-api/internal/repository"
	"alcyxob/coaching-api/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound      = errors.New("training plan not found")
	ErrPlanAccessDenied  = errors.New("access denied to this training plan")
	ErrSessionNotFound   = errors.New("session not found in training plan")
	ErrExerciseNotFound  = errors.New("exercise not found in session")
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrPlanNameRequired  = errors.New("training plan name is required")
	ErrAthleteIDRequired = errors.New("athlete id is required")
)

// PlanInput is the coach-editable part of a training plan.
type PlanInput struct {
	AthleteID   primitive.ObjectID
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	// TemplateID seeds the sessions when none are given. Create only.
	TemplateID *primitive.ObjectID
	Sessions   []domain.Session
}

// PlanDetail is a plan together with its derived progress.
type PlanDetail struct {
	*domain.TrainingPlan
	Progress progress.Summary `json:"progress"`
}

type TrainingPlanService interface {
	List(ctx context.Context, caller Caller, athleteID, coachID *primitive.ObjectID) ([]domain.TrainingPlan, error)
	Get(ctx context.Context, caller Caller, planID primitive.ObjectID) (*PlanDetail, error)
	Progress(ctx context.Context, caller Caller, planID primitive.ObjectID) (progress.Summary, error)
	Create(ctx context.Context, coachID primitive.ObjectID, input PlanInput) (*PlanDetail, error)
	Update(ctx context.Context, coachID, planID primitive.ObjectID, input PlanInput) (*PlanDetail, error)
	Delete(ctx context.Context, coachID, planID primitive.ObjectID) error
	ConvertToTemplate(ctx context.Context, coachID, planID primitive.ObjectID, name, description string) (*domain.Template, error)
	RemoveTemplateStatus(ctx context.Context, coachID, planID primitive.ObjectID) (*PlanDetail, error)
}

// trainingPlanService implements the TrainingPlanService interface.
type trainingPlanService struct {
	planRepo   repository.TrainingPlanRepository
	userRepo   repository.UserRepository
	uploadRepo repository.UploadRepository
	templates  TemplateService
	files      storage.FileStorage
	urlExpiry  time.Duration
	now        func() time.Time
}

// NewTrainingPlanService creates a new instance of trainingPlanService.
func NewTrainingPlanService(
	planRepo repository.TrainingPlanRepository,
	userRepo repository.UserRepository,
	uploadRepo repository.UploadRepository,
	templates TemplateService,
	files storage.FileStorage,
	urlExpiry time.Duration,
) TrainingPlanService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &trainingPlanService{
		planRepo:   planRepo,
		userRepo:   userRepo,
		uploadRepo: uploadRepo,
		templates:  templates,
		files:      files,
		urlExpiry:  urlExpiry,
		now:        time.Now,
	}
}

func (s *trainingPlanService) getPlan(ctx context.Context, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// canRead: the owning coach and the assigned athlete.
func canRead(caller Caller, plan *domain.TrainingPlan) bool {
	if caller.IsCoach() {
		return plan.CoachID == caller.ID
	}
	return plan.AthleteID == caller.ID
}

func (s *trainingPlanService) getOwned(ctx context.Context, coachID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func (s *trainingPlanService) detail(ctx context.Context, plan *domain.TrainingPlan) *PlanDetail {
	presignPlanMedia(ctx, s.files, plan, s.urlExpiry)
	return &PlanDetail{TrainingPlan: plan, Progress: progress.Summarize(plan, s.now())}
}

// === Reads ===

// List returns the caller's plans: a coach sees the plans they authored,
// an athlete only the plans assigned to them.
func (s *trainingPlanService) List(ctx context.Context, caller Caller, athleteID, coachID *primitive.ObjectID) ([]domain.TrainingPlan, error) {
	var (
		plans []domain.TrainingPlan
		err   error
	)
	switch {
	case caller.IsCoach():
		if coachID != nil && *coachID != caller.ID {
			return nil, ErrPlanAccessDenied
		}
		plans, err = s.planRepo.GetByCoachID(ctx, caller.ID, athleteID)
	case caller.IsAthlete():
		if athleteID != nil && *athleteID != caller.ID {
			return nil, ErrPlanAccessDenied
		}
		plans, err = s.planRepo.GetByAthleteID(ctx, caller.ID)
		if err == nil && coachID != nil {
			filtered := plans[:0]
			for _, p := range plans {
				if p.CoachID == *coachID {
					filtered = append(filtered, p)
				}
			}
			plans = filtered
		}
	default:
		return nil, ErrPlanAccessDenied
	}
	if err != nil {
		return nil, err
	}

	if plans == nil {
		plans = []domain.TrainingPlan{}
	}
	for i := range plans {
		presignPlanMedia(ctx, s.files, &plans[i], s.urlExpiry)
	}
	return plans, nil
}

func (s *trainingPlanService) Get(ctx context.Context, caller Caller, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !canRead(caller, plan) {
		return nil, ErrPlanAccessDenied
	}
	return s.detail(ctx, plan), nil
}

func (s *trainingPlanService) Progress(ctx context.Context, caller Caller, planID primitive.ObjectID) (progress.Summary, error) {
	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return progress.Summary{}, err
	}
	if !canRead(caller, plan) {
		return progress.Summary{}, ErrPlanAccessDenied
	}
	return progress.Summarize(plan, s.now()), nil
}

// === Writes ===

func validatePlanInput(input *PlanInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrPlanNameRequired
	}
	if input.StartDate != nil && input.EndDate != nil && input.StartDate.After(*input.EndDate) {
		return ErrInvalidDateRange
	}
	return validateSessions(input.Sessions)
}

func validateSessions(sessions []domain.Session) error {
	for i, session := range sessions {
		if strings.TrimSpace(session.Name) == "" {
			return fmt.Errorf("%w: session %d has no name", ErrInvalidInput, i+1)
		}
		for j, ex := range session.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("%w: exercise %d of session %q has no name", ErrInvalidInput, j+1, session.Name)
			}
			if ex.Sets < 0 || ex.Reps < 0 {
				return fmt.Errorf("%w: exercise %q has negative sets or reps", ErrInvalidInput, ex.Name)
			}
		}
	}
	return nil
}

// mergeSessions prepares coach-supplied sessions for storage. Missing ids are
// generated. Exercises whose id matches one in previous keep the athlete's
// feedback; all others start without feedback.
func mergeSessions(incoming []domain.Session, previous []domain.Session) []domain.Session {
	oldSessions := make(map[primitive.ObjectID]domain.Session, len(previous))
	oldExercises := make(map[primitive.ObjectID]domain.Exercise)
	for _, s := range previous {
		oldSessions[s.ID] = s
		for _, ex := range s.Exercises {
			oldExercises[ex.ID] = ex
		}
	}

	out := make([]domain.Session, len(incoming))
	for i, s := range incoming {
		session := domain.Session{ID: s.ID, Name: strings.TrimSpace(s.Name), Date: s.Date}
		if session.ID == primitive.NilObjectID {
			session.ID = primitive.NewObjectID()
		} else if old, ok := oldSessions[session.ID]; ok {
			session.SessionNotes = old.SessionNotes
		}

		session.Exercises = make([]domain.Exercise, len(s.Exercises))
		for j, ex := range s.Exercises {
			ex.Name = strings.TrimSpace(ex.Name)
			old, kept := oldExercises[ex.ID]
			if ex.ID == primitive.NilObjectID || !kept {
				if ex.ID == primitive.NilObjectID {
					ex.ID = primitive.NewObjectID()
				}
				ex.ResetFeedback()
				ex.PerformedSets = feedback.NormalizeSets(ex.PerformedSets)
			} else {
				ex.Completed = old.Completed
				ex.PerformanceComment = old.PerformanceComment
				ex.AthleteNotes = old.AthleteNotes
				ex.MediaKey = old.MediaKey
				ex.PerformedSets = old.PerformedSets
			}
			ex.MediaURL = ""
			if ex.PerformedSets == nil {
				ex.PerformedSets = []domain.PerformedSet{}
			}
			session.Exercises[j] = ex
		}
		out[i] = session
	}
	return out
}

// Create assigns a new plan to one of the coach's athletes.
func (s *trainingPlanService) Create(ctx context.Context, coachID primitive.ObjectID, input PlanInput) (*PlanDetail, error) {
	// 1. Validate Input
	if input.AthleteID == primitive.NilObjectID {
		return nil, ErrAthleteIDRequired
	}
	if err := validatePlanInput(&input); err != nil {
		return nil, err
	}

	// 2. The athlete must be linked to this coach
	athlete, err := s.userRepo.GetByID(ctx, input.AthleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAthlete
	}
	if !athlete.HasCoach(coachID) {
		return nil, ErrAthleteNotLinked
	}

	// 3. Sessions come from the request or the template
	sessions := mergeSessions(input.Sessions, nil)
	if input.TemplateID != nil {
		template, err := s.templates.Get(ctx, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			sessions = newSessionsFrom(template.Sessions)
		}
	}

	plan := &domain.TrainingPlan{
		CoachID:     coachID,
		AthleteID:   input.AthleteID,
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Sessions:    sessions,
		TemplateID:  input.TemplateID,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}

	if input.TemplateID != nil {
		if _, err := s.templates.IncrementUsage(ctx, *input.TemplateID); err != nil {
			log.WithError(err).Warnf("increment usage of template %s", input.TemplateID.Hex())
		}
	}

	log.Infof("coach %s created plan %s for athlete %s", coachID.Hex(), plan.ID.Hex(), input.AthleteID.Hex())
	return s.detail(ctx, plan), nil
}

// Update replaces the coach-editable fields. The athlete and owner never change.
func (s *trainingPlanService) Update(ctx context.Context, coachID, planID primitive.ObjectID, input PlanInput) (*PlanDetail, error) {
	if err := validatePlanInput(&input); err != nil {
		return nil, err
	}
	plan, err := s.getOwned(ctx, coachID, planID)
	if err != nil {
		return nil, err
	}

	plan.Name = input.Name
	plan.Description = input.Description
	plan.StartDate = input.StartDate
	plan.EndDate = input.EndDate
	plan.Sessions = mergeSessions(input.Sessions, plan.Sessions)

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	updated, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, updated), nil
}

// Delete removes the plan, then its evidence uploads. Storage cleanup
// failures are logged and do not fail the request.
func (s *trainingPlanService) Delete(ctx context.Context, coachID, planID primitive.ObjectID) error {
	if _, err := s.getOwned(ctx, coachID, planID); err != nil {
		return err
	}

	uploads, err := s.uploadRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return err
	}

	if err := s.planRepo.Delete(ctx, planID, coachID); err != nil {
		if errors.Is(err, repository.ErrDeleteFailed) {
			return ErrPlanNotFound
		}
		return err
	}

	var cleanupErr error
	for _, u := range uploads {
		if err := s.files.DeleteObject(ctx, u.S3ObjectKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("delete %s: %w", u.S3ObjectKey, err))
		}
	}
	cleanupErr = multierr.Append(cleanupErr, s.uploadRepo.DeleteByPlanID(ctx, planID))
	if cleanupErr != nil {
		log.WithError(cleanupErr).Warnf("cleanup of uploads for deleted plan %s", planID.Hex())
	}

	log.Infof("coach %s deleted plan %s", coachID.Hex(), planID.Hex())
	return nil
}

// ConvertToTemplate saves the plan's structure as a template and flags the plan.
func (s *trainingPlanService) ConvertToTemplate(ctx context.Context, coachID, planID primitive.ObjectID, name, description string) (*domain.Template, error) {
	template, err := s.templates.CreateFromPlan(ctx, coachID, planID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.SetTemplateStatus(ctx, planID, true, &template.ID); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *trainingPlanService) RemoveTemplateStatus(ctx context.Context, coachID, planID primitive.ObjectID) (*PlanDetail, error) {
	if _, err := s.getOwned(ctx, coachID, planID); err != nil {
		return nil, err
	}
	if err := s.planRepo.SetTemplateStatus(ctx, planID, false, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan, err := s.getPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, plan), nil
}
