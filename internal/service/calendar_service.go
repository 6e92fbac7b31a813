package service

import (
	"context"
	"time"

	"alcyxob/coaching-api/internal/calendar"
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CalendarService interface {
	Events(ctx context.Context, caller Caller, rng calendar.Range) ([]calendar.Event, error)
}

type calendarService struct {
	planRepo repository.TrainingPlanRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewCalendarService(planRepo repository.TrainingPlanRepository, userRepo repository.UserRepository) CalendarService {
	return &calendarService{planRepo: planRepo, userRepo: userRepo, now: time.Now}
}

// Events projects the caller's plans onto calendar events. Athlete names come
// from the coach's linked athletes, or the athlete's own profile.
func (s *calendarService) Events(ctx context.Context, caller Caller, rng calendar.Range) ([]calendar.Event, error) {
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return nil, ErrInvalidDateRange
	}

	var (
		plans []domain.TrainingPlan
		names = make(map[primitive.ObjectID]string)
	)
	if caller.IsCoach() {
		var err error
		if plans, err = s.planRepo.GetByCoachID(ctx, caller.ID, nil); err != nil {
			return nil, err
		}
		athletes, err := s.userRepo.GetAthletesByCoachID(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range athletes {
			names[a.ID] = a.FullName
		}
	} else {
		var err error
		if plans, err = s.planRepo.GetByAthleteID(ctx, caller.ID); err != nil {
			return nil, err
		}
		if me, err := s.userRepo.GetByID(ctx, caller.ID); err == nil {
			names[me.ID] = me.FullName
		}
	}

	events := calendar.Project(plans, names, s.now(), rng)
	if events == nil {
		events = []calendar.Event{}
	}
	return events, nil
}
