package service

import (
	"context"
	"time"

	"alcyxob/coaching-api/internal/progress"
	"alcyxob/coaching-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardService interface {
	Athlete(ctx context.Context, athleteID primitive.ObjectID) (progress.AthleteDashboard, error)
	Coach(ctx context.Context, coachID primitive.ObjectID) (progress.CoachDashboard, error)
}

type dashboardService struct {
	planRepo repository.TrainingPlanRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewDashboardService(planRepo repository.TrainingPlanRepository, userRepo repository.UserRepository) DashboardService {
	return &dashboardService{planRepo: planRepo, userRepo: userRepo, now: time.Now}
}

func (s *dashboardService) Athlete(ctx context.Context, athleteID primitive.ObjectID) (progress.AthleteDashboard, error) {
	plans, err := s.planRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return progress.AthleteDashboard{}, err
	}
	return progress.BuildAthleteDashboard(plans, s.now()), nil
}

func (s *dashboardService) Coach(ctx context.Context, coachID primitive.ObjectID) (progress.CoachDashboard, error) {
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return progress.CoachDashboard{}, err
	}
	plans, err := s.planRepo.GetByCoachID(ctx, coachID, nil)
	if err != nil {
		return progress.CoachDashboard{}, err
	}
	return progress.BuildCoachDashboard(athletes, plans, s.now()), nil
}
