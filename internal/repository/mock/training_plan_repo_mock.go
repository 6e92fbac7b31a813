package mock

import (
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainingPlanRepoMock struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.TrainingPlan

	// FailNextWrite makes the next mutating call fail with this error.
	FailNextWrite error
}

func NewTrainingPlanRepoMock() *TrainingPlanRepoMock {
	return &TrainingPlanRepoMock{
		plans: make(map[primitive.ObjectID]*domain.TrainingPlan),
	}
}

func (r *TrainingPlanRepoMock) takeFailure() error {
	err := r.FailNextWrite
	r.FailNextWrite = nil
	return err
}

func (r *TrainingPlanRepoMock) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return primitive.NilObjectID, err
	}
	if plan.AthleteID == primitive.NilObjectID || plan.CoachID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires athleteId, coachId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.plans[plan.ID] = clonePlan(plan)
	return plan.ID, nil
}

func (r *TrainingPlanRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *TrainingPlanRepoMock) list(match func(p *domain.TrainingPlan) bool) []domain.TrainingPlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	var plans []domain.TrainingPlan
	for _, p := range r.plans {
		if match(p) {
			plans = append(plans, *clonePlan(p))
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans
}

func (r *TrainingPlanRepoMock) GetByCoachID(_ context.Context, coachID primitive.ObjectID, athleteID *primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.list(func(p *domain.TrainingPlan) bool {
		return p.CoachID == coachID && (athleteID == nil || p.AthleteID == *athleteID)
	}), nil
}

func (r *TrainingPlanRepoMock) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.list(func(p *domain.TrainingPlan) bool { return p.AthleteID == athleteID }), nil
}

func (r *TrainingPlanRepoMock) mutate(id primitive.ObjectID, fn func(p *domain.TrainingPlan) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	stored, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	// Work on a copy so a failed mutation leaves the stored plan untouched.
	working := clonePlan(stored)
	if err := fn(working); err != nil {
		return err
	}
	working.UpdatedAt = time.Now().UTC()
	r.plans[id] = working
	return nil
}

func (r *TrainingPlanRepoMock) Update(_ context.Context, plan *domain.TrainingPlan) error {
	return r.mutate(plan.ID, func(p *domain.TrainingPlan) error {
		p.Name = plan.Name
		p.Description = plan.Description
		p.StartDate = plan.StartDate
		p.EndDate = plan.EndDate
		p.Sessions = cloneSessions(plan.Sessions)
		return nil
	})
}

func (r *TrainingPlanRepoMock) Delete(_ context.Context, planID, coachID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok || p.CoachID != coachID {
		return repository.ErrDeleteFailed
	}
	delete(r.plans, planID)
	return nil
}

func (r *TrainingPlanRepoMock) SetTemplateStatus(_ context.Context, planID primitive.ObjectID, isTemplate bool, templateID *primitive.ObjectID) error {
	return r.mutate(planID, func(p *domain.TrainingPlan) error {
		p.IsTemplate = isTemplate
		if templateID != nil {
			id := *templateID
			p.TemplateID = &id
		}
		return nil
	})
}

func (r *TrainingPlanRepoMock) UpdateExerciseFeedback(_ context.Context, ref repository.ExerciseRef, update repository.ExerciseFeedbackUpdate) error {
	return r.mutate(ref.PlanID, func(p *domain.TrainingPlan) error {
		ex := p.FindExercise(ref.SessionID, ref.ExerciseID)
		if ex == nil {
			return repository.ErrNotFound
		}
		if update.Completed != nil {
			ex.Completed = *update.Completed
		}
		if update.PerformanceComment != nil {
			ex.PerformanceComment = *update.PerformanceComment
		}
		if update.AthleteNotes != nil {
			ex.AthleteNotes = *update.AthleteNotes
		}
		if update.MediaKey != nil {
			ex.MediaKey = *update.MediaKey
		}
		return nil
	})
}

func (r *TrainingPlanRepoMock) ReplacePerformedSets(_ context.Context, ref repository.ExerciseRef, sets []domain.PerformedSet) error {
	return r.mutate(ref.PlanID, func(p *domain.TrainingPlan) error {
		ex := p.FindExercise(ref.SessionID, ref.ExerciseID)
		if ex == nil {
			return repository.ErrNotFound
		}
		ex.PerformedSets = cloneSets(sets)
		return nil
	})
}

func (r *TrainingPlanRepoMock) UpdateSessionNotes(_ context.Context, planID, sessionID primitive.ObjectID, notes string) error {
	return r.mutate(planID, func(p *domain.TrainingPlan) error {
		s := p.FindSession(sessionID)
		if s == nil {
			return repository.ErrNotFound
		}
		s.SessionNotes = notes
		return nil
	})
}

var _ repository.TrainingPlanRepository = (*TrainingPlanRepoMock)(nil)
