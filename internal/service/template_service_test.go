package service

import (
	"context"
	"testing"

	"alcyxob/coaching-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.addUser(t, "coach", domain.RoleCoach, nil)
	other := env.addUser(t, "other", domain.RoleCoach, nil)

	_, err := env.tmplSvc.Create(ctx, coach.ID, TemplateInput{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tmpl, err := env.tmplSvc.Create(ctx, coach.ID, TemplateInput{Name: "Base", Sessions: sampleSessions()})
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateUserCreated, tmpl.Type)
	assert.True(t, tmpl.OwnedBy(coach.ID))
	require.Len(t, tmpl.Sessions, 2)
	assert.False(t, tmpl.Sessions[0].ID.IsZero())

	listed, err := env.tmplSvc.List(ctx, TemplateQuery{CreatedBy: &coach.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// The second read is served from cache and must still reflect writes.
	_, err = env.tmplSvc.IncrementUsage(ctx, tmpl.ID)
	require.NoError(t, err)
	got, err := env.tmplSvc.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsageCount)

	assert.ErrorIs(t, env.tmplSvc.Delete(ctx, other.ID, tmpl.ID), ErrTemplateAccessDenied)
	require.NoError(t, env.tmplSvc.Delete(ctx, coach.ID, tmpl.ID))
	assert.ErrorIs(t, env.tmplSvc.Delete(ctx, coach.ID, tmpl.ID), ErrTemplateNotFound)

	listed, err = env.tmplSvc.List(ctx, TemplateQuery{CreatedBy: &coach.ID})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestSeedPredefined(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.addUser(t, "coach", domain.RoleCoach, nil)

	seed := []domain.Template{
		{Name: "Strength 5x5", PredefinedCategory: domain.CategoryBasicStrength, Sessions: sampleSessions()},
		{Name: "Volume", PredefinedCategory: domain.CategoryHypertrophy},
	}
	n, err := env.tmplSvc.SeedPredefined(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = env.tmplSvc.SeedPredefined(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "seeding is idempotent by name")

	_, err = env.tmplSvc.SeedPredefined(ctx, []domain.Template{{Name: "x", PredefinedCategory: "yoga"}})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	predefined, err := env.tmplSvc.List(ctx, TemplateQuery{Predefined: true})
	require.NoError(t, err)
	require.Len(t, predefined, 2)
	assert.ErrorIs(t, env.tmplSvc.Delete(ctx, coach.ID, predefined[0].ID), ErrPredefinedTemplate)

	strength, err := env.tmplSvc.List(ctx, TemplateQuery{Category: domain.CategoryBasicStrength})
	require.NoError(t, err)
	require.Len(t, strength, 1)
	assert.Equal(t, "Strength 5x5", strength[0].Name)
}

func TestMostUsedLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach := env.addUser(t, "coach", domain.RoleCoach, nil)

	var created []domain.Template
	for i := 0; i < 12; i++ {
		tmpl, err := env.tmplSvc.Create(ctx, coach.ID, TemplateInput{Name: "T" + string(rune('a'+i))})
		require.NoError(t, err)
		created = append(created, *tmpl)
	}
	for i := 0; i < 3; i++ {
		_, err := env.tmplSvc.IncrementUsage(ctx, created[5].ID)
		require.NoError(t, err)
	}

	top, err := env.tmplSvc.MostUsed(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultMostUsedLimit)
	assert.Equal(t, created[5].ID, top[0].ID)

	all, err := env.tmplSvc.MostUsed(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestCreateFromPlanStripsFeedback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	coach, athlete := env.coachWithAthlete(t)
	plan := env.createPlan(t, coach, athlete)

	s0 := plan.Sessions[0]
	_, err := env.feedback.SubmitExerciseFeedback(ctx, athlete.ID, ExerciseFeedbackInput{
		Ref:                exRef(plan, 0, 0),
		Completed:          ptr(true),
		PerformanceComment: ptr("felt strong"),
	})
	require.NoError(t, err)

	tmpl, err := env.tmplSvc.CreateFromPlan(ctx, coach.ID, plan.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Block A", tmpl.Name)
	require.NotNil(t, tmpl.OriginalPlanID)
	assert.Equal(t, plan.ID, *tmpl.OriginalPlanID)

	ex := tmpl.Sessions[0].Exercises[0]
	assert.Equal(t, "Squat", ex.Name)
	assert.False(t, ex.Completed)
	assert.Empty(t, ex.PerformanceComment)
	assert.NotEqual(t, s0.ID, tmpl.Sessions[0].ID)
	require.NotNil(t, s0.Date)
	for _, session := range tmpl.Sessions {
		assert.Nil(t, session.Date, "templates carry no calendar dates")
	}

	_, err = env.tmplSvc.CreateFromPlan(ctx, athlete.ID, plan.ID, "x", "")
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
}
