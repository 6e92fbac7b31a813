package service

import (
	"bytes"
	"context"
	"testing"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func exRef(plan *PlanDetail, session, exercise int) repository.ExerciseRef {
	s := plan.Sessions[session]
	return repository.ExerciseRef{PlanID: plan.ID, SessionID: s.ID, ExerciseID: s.Exercises[exercise].ID}
}

func TestCreatePlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	stranger := env.addUser(t, "stranger", domain.RoleAthlete, nil)

	plan := env.createPlan(t, coach, athlete)
	assert.Equal(t, coach.ID, plan.CoachID)
	require.Len(t, plan.Sessions, 2)
	for _, s := range plan.Sessions {
		assert.False(t, s.ID.IsZero())
		for _, ex := range s.Exercises {
			assert.False(t, ex.ID.IsZero())
			assert.NotNil(t, ex.PerformedSets)
		}
	}
	assert.Equal(t, 2, plan.Progress.TotalSessions)
	assert.Equal(t, 3, plan.Progress.TotalExercises)
	assert.Equal(t, 30, plan.Progress.TotalDays)

	tests := []struct {
		name  string
		input PlanInput
		want  error
	}{
		{"athlete not linked", PlanInput{AthleteID: stranger.ID, Name: "x"}, ErrAthleteNotLinked},
		{"missing athlete", PlanInput{Name: "x"}, ErrAthleteIDRequired},
		{"missing name", PlanInput{AthleteID: athlete.ID, Name: "  "}, ErrPlanNameRequired},
		{"start after end", PlanInput{AthleteID: athlete.ID, Name: "x", StartDate: day(2025, 4, 2), EndDate: day(2025, 4, 1)}, ErrInvalidDateRange},
		{"unknown athlete", PlanInput{AthleteID: primitive.NewObjectID(), Name: "x"}, ErrUserNotFound},
		{"coach as athlete", PlanInput{AthleteID: coach.ID, Name: "x"}, ErrNotAthlete},
		{"unknown template", PlanInput{AthleteID: athlete.ID, Name: "x", TemplateID: ptr(primitive.NewObjectID())}, ErrTemplateNotFound},
		{"nameless exercise", PlanInput{AthleteID: athlete.ID, Name: "x", Sessions: []domain.Session{{Name: "d", Exercises: []domain.Exercise{{}}}}}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.planSvc.Create(ctx, coach.ID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreatePlanFromTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)

	tmpl, err := env.tmplSvc.Create(ctx, coach.ID, TemplateInput{Name: "Base", Sessions: sampleSessions()})
	require.NoError(t, err)

	plan, err := env.planSvc.Create(ctx, coach.ID, PlanInput{AthleteID: athlete.ID, Name: "From template", TemplateID: &tmpl.ID})
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 2)
	assert.NotEqual(t, tmpl.Sessions[0].ID, plan.Sessions[0].ID)
	require.NotNil(t, plan.TemplateID)
	assert.Equal(t, tmpl.ID, *plan.TemplateID)

	got, err := env.tmplSvc.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)
}

func TestListAndGetAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	rival := env.addUser(t, "rival", domain.RoleCoach, nil)
	other := env.addUser(t, "other", domain.RoleAthlete, &coach.ID)
	plan := env.createPlan(t, coach, athlete)
	env.createPlan(t, coach, other)

	asCoach := Caller{ID: coach.ID, Role: domain.RoleCoach}
	asAthlete := Caller{ID: athlete.ID, Role: domain.RoleAthlete}

	plans, err := env.planSvc.List(ctx, asCoach, nil, nil)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	plans, err = env.planSvc.List(ctx, asCoach, &athlete.ID, nil)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	_, err = env.planSvc.List(ctx, asCoach, nil, &rival.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)

	plans, err = env.planSvc.List(ctx, asAthlete, nil, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)
	_, err = env.planSvc.List(ctx, asAthlete, &other.ID, nil)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	plans, err = env.planSvc.List(ctx, asAthlete, nil, &rival.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)

	_, err = env.planSvc.Get(ctx, asAthlete, plan.ID)
	assert.NoError(t, err)
	_, err = env.planSvc.Get(ctx, Caller{ID: other.ID, Role: domain.RoleAthlete}, plan.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = env.planSvc.Get(ctx, Caller{ID: rival.ID, Role: domain.RoleCoach}, plan.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = env.planSvc.Get(ctx, asCoach, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNotFound)

	summary, err := env.planSvc.Progress(ctx, asAthlete, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalExercises)
}

func TestUpdatePlanKeepsFeedbackOfPreservedExercises(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	plan := env.createPlan(t, coach, athlete)

	_, err := env.feedback.SubmitExerciseFeedback(ctx, athlete.ID, ExerciseFeedbackInput{
		Ref:          exRef(plan, 0, 0),
		Completed:    ptr(true),
		AthleteNotes: ptr("knees ok"),
	})
	require.NoError(t, err)
	_, err = env.feedback.UpdateSessionNotes(ctx, athlete.ID, plan.ID, plan.Sessions[0].ID, "good day")
	require.NoError(t, err)

	// The coach edits the first exercise's prescription, drops the second and
	// adds a new one. Feedback smuggled into the new one is ignored.
	sessions := []domain.Session{{
		ID:   plan.Sessions[0].ID,
		Name: "Day 1 (edited)",
		Exercises: []domain.Exercise{
			{ID: plan.Sessions[0].Exercises[0].ID, Name: "Squat", Sets: 5, Reps: 5},
			{Name: "Lunge", Sets: 3, Reps: 10, Completed: true},
		},
	}}
	updated, err := env.planSvc.Update(ctx, coach.ID, plan.ID, PlanInput{Name: "Block A2", Sessions: sessions})
	require.NoError(t, err)

	assert.Equal(t, "Block A2", updated.Name)
	require.Len(t, updated.Sessions, 1)
	s := updated.Sessions[0]
	assert.Equal(t, "good day", s.SessionNotes)
	require.Len(t, s.Exercises, 2)
	assert.Equal(t, 5, s.Exercises[0].Sets)
	assert.True(t, s.Exercises[0].Completed)
	assert.Equal(t, "knees ok", s.Exercises[0].AthleteNotes)
	assert.False(t, s.Exercises[1].Completed)
	assert.False(t, s.Exercises[1].ID.IsZero())
	assert.Nil(t, updated.StartDate)

	_, err = env.planSvc.Update(ctx, primitive.NewObjectID(), plan.ID, PlanInput{Name: "x"})
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = env.planSvc.Update(ctx, coach.ID, plan.ID, PlanInput{Name: "x", StartDate: day(2025, 5, 2), EndDate: day(2025, 5, 1)})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDeletePlanRemovesEvidence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	plan := env.createPlan(t, coach, athlete)

	_, err := env.feedback.SubmitExerciseFeedback(ctx, athlete.ID, ExerciseFeedbackInput{
		Ref:   exRef(plan, 0, 0),
		Media: &MediaFile{FileName: "lift.mp4", ContentType: "video/mp4", Size: 3, Body: bytes.NewReader([]byte("abc"))},
	})
	require.NoError(t, err)
	require.Equal(t, 1, env.files.Len())

	assert.ErrorIs(t, env.planSvc.Delete(ctx, primitive.NewObjectID(), plan.ID), ErrPlanAccessDenied)
	require.NoError(t, env.planSvc.Delete(ctx, coach.ID, plan.ID))

	assert.Equal(t, 0, env.files.Len())
	assert.Empty(t, env.uploads.All())
	_, err = env.planSvc.Get(ctx, Caller{ID: coach.ID, Role: domain.RoleCoach}, plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.ErrorIs(t, env.planSvc.Delete(ctx, coach.ID, plan.ID), ErrPlanNotFound)
}

func TestConvertToTemplateAndBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	plan := env.createPlan(t, coach, athlete)

	tmpl, err := env.planSvc.ConvertToTemplate(ctx, coach.ID, plan.ID, "My block", "desc")
	require.NoError(t, err)
	assert.Equal(t, "My block", tmpl.Name)

	asCoach := Caller{ID: coach.ID, Role: domain.RoleCoach}
	got, err := env.planSvc.Get(ctx, asCoach, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTemplate)
	require.NotNil(t, got.TemplateID)
	assert.Equal(t, tmpl.ID, *got.TemplateID)

	cleared, err := env.planSvc.RemoveTemplateStatus(ctx, coach.ID, plan.ID)
	require.NoError(t, err)
	assert.False(t, cleared.IsTemplate)

	_, err = env.planSvc.RemoveTemplateStatus(ctx, athlete.ID, plan.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
}
