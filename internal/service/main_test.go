package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/coaching-api/internal/cache"
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/mailer"
	"alcyxob/coaching-api/internal/metrics"
	"alcyxob/coaching-api/internal/repository/mock"
	"alcyxob/coaching-api/internal/storage"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testJWTSecret = "test-secret"

type testEnv struct {
	users     *mock.UserRepoMock
	plans     *mock.TrainingPlanRepoMock
	templates *mock.TemplateRepoMock
	uploads   *mock.UploadRepoMock
	files     *storage.MemoryStorage
	mail      *mailer.Recorder
	metrics   *metrics.Manager

	auth      AuthService
	userSvc   UserService
	tmplSvc   TemplateService
	planSvc   TrainingPlanService
	feedback  FeedbackService
	calendar  CalendarService
	dashboard DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:     mock.NewUserRepoMock(),
		plans:     mock.NewTrainingPlanRepoMock(),
		templates: mock.NewTemplateRepoMock(),
		uploads:   mock.NewUploadRepoMock(),
		files:     storage.NewMemoryStorage(),
		mail:      &mailer.Recorder{},
		metrics:   metrics.NewTestManager(),
	}

	auth := NewAuthService(env.users, env.mail, testJWTSecret, time.Hour, "http://app.test/")
	auth.(*authService).bcryptCost = bcrypt.MinCost
	env.auth = auth

	env.userSvc = NewUserService(env.users, env.uploads, env.files, env.metrics, time.Minute)
	env.tmplSvc = NewTemplateService(env.templates, env.plans, cache.New(1, time.Minute))
	env.planSvc = NewTrainingPlanService(env.plans, env.users, env.uploads, env.tmplSvc, env.files, time.Minute)
	env.feedback = NewFeedbackService(env.plans, env.uploads, env.planSvc, env.files, env.metrics)
	env.calendar = NewCalendarService(env.plans, env.users)
	env.dashboard = NewDashboardService(env.plans, env.users)
	return env
}

// addUser stores an active user directly, bypassing registration.
func (e *testEnv) addUser(t *testing.T, name string, role domain.Role, coachID *primitive.ObjectID) *domain.User {
	t.Helper()
	u := &domain.User{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
	}
	_, err := e.users.Create(context.Background(), u)
	require.NoError(t, err)
	if coachID != nil {
		require.NoError(t, e.users.SetCoach(context.Background(), u.ID, coachID))
	}
	return u
}

// coachWithAthlete returns a coach and an athlete linked to them.
func (e *testEnv) coachWithAthlete(t *testing.T) (coach, athlete *domain.User) {
	t.Helper()
	coach = e.addUser(t, "coach", domain.RoleCoach, nil)
	athlete = e.addUser(t, "athlete", domain.RoleAthlete, &coach.ID)
	return coach, athlete
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleSessions() []domain.Session {
	return []domain.Session{
		{
			Name: "Day 1",
			Date: day(2025, 3, 3),
			Exercises: []domain.Exercise{
				{Name: "Squat", Sets: 3, Reps: 5, Weight: ptr(100.0)},
				{Name: "Bench", Sets: 3, Reps: 8},
			},
		},
		{
			Name:      "Day 2",
			Date:      day(2025, 3, 5),
			Exercises: []domain.Exercise{{Name: "Deadlift", Sets: 1, Reps: 5}},
		},
	}
}

func (e *testEnv) createPlan(t *testing.T, coach, athlete *domain.User) *PlanDetail {
	t.Helper()
	detail, err := e.planSvc.Create(context.Background(), coach.ID, PlanInput{
		AthleteID: athlete.ID,
		Name:      "Block A",
		StartDate: day(2025, 3, 1),
		EndDate:   day(2025, 3, 31),
		Sessions:  sampleSessions(),
	})
	require.NoError(t, err)
	return detail
}
