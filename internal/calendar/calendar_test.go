package calendar

import (
	"testing"
	"time"

	"alcyxob/coaching-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestProject_PlanAndSessions(t *testing.T) {
	athleteID := primitive.NewObjectID()
	sessionID := primitive.NewObjectID()
	plan := domain.TrainingPlan{
		ID:        primitive.NewObjectID(),
		AthleteID: athleteID,
		Name:      "Block A",
		StartDate: ptrTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   ptrTime(time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC)),
		Sessions: []domain.Session{
			{ID: sessionID, Name: "Day 1", Date: ptrTime(time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC))},
		},
	}

	events := Project([]domain.TrainingPlan{plan}, map[primitive.ObjectID]string{athleteID: "Ana"}, time.Now(), Range{})
	require.Len(t, events, 2)

	pe := events[0]
	assert.Equal(t, "Ana: BLOCK A", pe.Title)
	assert.Equal(t, "2024-01-01", pe.Start)
	assert.Equal(t, "2024-01-28", pe.End)
	assert.Equal(t, PlanColor, pe.Color)
	assert.Equal(t, "background", pe.Display)
	assert.Equal(t, EventPlan, pe.ExtendedProps.Type)
	assert.Equal(t, plan.ID, pe.ExtendedProps.PlanID)
	require.NotNil(t, pe.ExtendedProps.Plan)

	se := events[1]
	assert.Equal(t, "Ana: Day 1", se.Title)
	assert.Equal(t, "2024-01-02", se.Start)
	assert.Empty(t, se.End)
	assert.True(t, se.AllDay)
	assert.Equal(t, SessionColor, se.Color)
	assert.Equal(t, SessionTextColor, se.TextColor)
	assert.Equal(t, EventSession, se.ExtendedProps.Type)
	require.NotNil(t, se.ExtendedProps.SessionID)
	assert.Equal(t, sessionID, *se.ExtendedProps.SessionID)
	assert.Equal(t, "Block A", se.ExtendedProps.PlanName)
	assert.Equal(t, "Ana", se.ExtendedProps.AthleteName)
}

func TestProject_UnknownAthleteFallsBack(t *testing.T) {
	plan := domain.TrainingPlan{ID: primitive.NewObjectID(), AthleteID: primitive.NewObjectID(), Name: "x"}
	events := Project([]domain.TrainingPlan{plan}, nil, time.Now(), Range{})
	require.Len(t, events, 1)
	assert.Equal(t, "My plan: X", events[0].Title)
}

func TestProject_MissingDates(t *testing.T) {
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	noDates := domain.TrainingPlan{
		ID:       primitive.NewObjectID(),
		Name:     "undated",
		Sessions: []domain.Session{{ID: primitive.NewObjectID(), Name: "s"}},
	}
	onlyStart := domain.TrainingPlan{ID: primitive.NewObjectID(), Name: "start only", StartDate: &start}

	events := Project([]domain.TrainingPlan{noDates, onlyStart}, nil, now, Range{})
	require.Len(t, events, 3)

	// Missing start defaults to now, missing end to start: single-day event.
	assert.Equal(t, "2024-06-03", events[0].Start)
	assert.Empty(t, events[0].End)
	assert.True(t, events[0].AllDay)

	assert.Equal(t, "2024-06-10", events[1].Start)
	assert.Empty(t, events[1].End)

	// Undated session lands on today.
	assert.Equal(t, "2024-06-03", events[2].Start)
}

func TestProject_SessionCount(t *testing.T) {
	var plans []domain.TrainingPlan
	totalSessions := 0
	for i := 0; i < 4; i++ {
		p := domain.TrainingPlan{ID: primitive.NewObjectID(), Name: "p"}
		for j := 0; j <= i; j++ {
			p.Sessions = append(p.Sessions, domain.Session{ID: primitive.NewObjectID(), Name: "s"})
			totalSessions++
		}
		plans = append(plans, p)
	}

	events := Project(plans, nil, time.Now(), Range{})
	assert.Len(t, events, len(plans)+totalSessions)
}

func TestProject_Range(t *testing.T) {
	plan := domain.TrainingPlan{
		ID:        primitive.NewObjectID(),
		Name:      "p",
		StartDate: ptrTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   ptrTime(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
		Sessions: []domain.Session{
			{ID: primitive.NewObjectID(), Name: "early", Date: ptrTime(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))},
			{ID: primitive.NewObjectID(), Name: "late", Date: ptrTime(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))},
		},
	}

	rng := Range{
		From: ptrTime(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)),
		To:   ptrTime(time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)),
	}
	events := Project([]domain.TrainingPlan{plan}, nil, time.Now(), rng)
	require.Len(t, events, 2)
	assert.Equal(t, EventPlan, events[0].ExtendedProps.Type)
	assert.Equal(t, "My plan: late", events[1].Title)

	outside := Range{From: ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))}
	assert.Empty(t, Project([]domain.TrainingPlan{plan}, nil, time.Now(), outside))
}
