package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/progress"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planResponse struct {
	domain.TrainingPlan
	Progress progress.Summary `json:"progress"`
}

type fieldErrorsResponse struct {
	Error       string `json:"error"`
	FieldErrors []struct {
		Index     int    `json:"index"`
		SetNumber int    `json:"setNumber"`
		Field     string `json:"field"`
	} `json:"fieldErrors"`
}

func samplePlanRequest(athlete *domain.User) TrainingPlanRequest {
	return TrainingPlanRequest{
		AthleteID: athlete.ID.Hex(),
		Name:      "Block A",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-31T00:00:00Z",
		Sessions: []SessionRequest{
			{
				SessionName: "Day 1",
				Date:        "2025-03-03",
				Exercises: []ExerciseRequest{
					{Name: "Squat", Sets: 3, Reps: 5},
					{Name: "Bench", Sets: 3, Reps: 8},
				},
			},
			{
				SessionName: "Day 2",
				Date:        "2025-03-05",
				Exercises:   []ExerciseRequest{{Name: "Deadlift", Sets: 1, Reps: 5}},
			},
		},
	}
}

func (ts *testServer) createPlanHTTP(t *testing.T, coachToken string, athlete *domain.User) planResponse {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, samplePlanRequest(athlete))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[planResponse](t, rr)
}

func TestTrainingPlanCRUD(t *testing.T) {
	ts := newTestServer(t, nil)
	coach, coachToken := ts.addUser(t, "coach", domain.RoleCoach, nil)
	athlete, athleteToken := ts.addUser(t, "ann", domain.RoleAthlete, &coach.ID)
	stranger, strangerToken := ts.addUser(t, "bob", domain.RoleAthlete, nil)

	plan := ts.createPlanHTTP(t, coachToken, athlete)
	assert.Equal(t, coach.ID, plan.CoachID)
	assert.Equal(t, athlete.ID, plan.AthleteID)
	require.Len(t, plan.Sessions, 2)
	assert.False(t, plan.Sessions[0].ID.IsZero())
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), *plan.Sessions[0].Date)
	assert.Equal(t, 3, plan.Progress.TotalExercises)
	assert.Equal(t, 30, plan.Progress.TotalDays)

	// Plans are only for linked athletes.
	rr := ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, samplePlanRequest(stranger))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	planPath := "/api/v1/training-plans/" + plan.ID.Hex()
	for _, token := range []string{coachToken, athleteToken} {
		rr = ts.do(t, http.MethodGet, planPath, token, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	rr = ts.do(t, http.MethodGet, planPath, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(t, http.MethodGet, planPath+"/progress", athleteToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[progress.Summary](t, rr).TotalSessions)

	rr = ts.do(t, http.MethodGet, "/api/v1/training-plans?athleteId="+athlete.ID.Hex(), coachToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.TrainingPlan](t, rr), 1)

	rr = ts.do(t, http.MethodGet, "/api/v1/training-plans?athleteId=bad", coachToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Update keeps ids sent back by the client.
	update := samplePlanRequest(athlete)
	update.Name = "Block A v2"
	update.Sessions = update.Sessions[:1]
	update.Sessions[0].SessionID = plan.Sessions[0].ID.Hex()
	rr = ts.do(t, http.MethodPut, planPath, coachToken, update)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[planResponse](t, rr)
	assert.Equal(t, "Block A v2", updated.Name)
	require.Len(t, updated.Sessions, 1)
	assert.Equal(t, plan.Sessions[0].ID, updated.Sessions[0].ID)

	rr = ts.do(t, http.MethodPut, planPath, athleteToken, update)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(t, http.MethodDelete, planPath, coachToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.do(t, http.MethodGet, planPath, coachToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTrainingPlan_BadRequests(t *testing.T) {
	ts := newTestServer(t, nil)
	coach, coachToken := ts.addUser(t, "coach", domain.RoleCoach, nil)
	athlete, _ := ts.addUser(t, "ann", domain.RoleAthlete, &coach.ID)

	badDate := samplePlanRequest(athlete)
	badDate.StartDate = "03/01/2025"
	rr := ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, badDate)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	reversed := samplePlanRequest(athlete)
	reversed.StartDate, reversed.EndDate = "2025-04-01", "2025-03-01"
	rr = ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, reversed)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	noName := samplePlanRequest(athlete)
	noName.Sessions[0].Exercises[0].Name = ""
	rr = ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, noName)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	badID := samplePlanRequest(athlete)
	badID.AthleteID = "123"
	rr = ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, badID)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid athleteId format", errorMessage(t, rr))
}

func TestTrainingPlan_TemplateConversion(t *testing.T) {
	ts := newTestServer(t, nil)
	coach, coachToken := ts.addUser(t, "coach", domain.RoleCoach, nil)
	athlete, _ := ts.addUser(t, "ann", domain.RoleAthlete, &coach.ID)
	plan := ts.createPlanHTTP(t, coachToken, athlete)
	planPath := "/api/v1/training-plans/" + plan.ID.Hex()

	rr := ts.do(t, http.MethodPost, planPath+"/convert-to-template", coachToken, ConvertToTemplateRequest{Name: "Strength base"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	template := decode[domain.Template](t, rr)
	assert.Equal(t, "Strength base", template.Name)
	assert.Equal(t, domain.TemplateUserCreated, template.Type)

	rr = ts.do(t, http.MethodGet, planPath, coachToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[planResponse](t, rr).IsTemplate)

	rr = ts.do(t, http.MethodPatch, planPath+"/remove-template-status", coachToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.False(t, decode[planResponse](t, rr).IsTemplate)

	// Converting without a body falls back to the plan name.
	req := httptest.NewRequest(http.MethodPost, planPath+"/convert-to-template", nil)
	rr = ts.send(req, coachToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[domain.Template](t, rr).Name)

	// A new plan can be built from the template.
	fromTemplate := TrainingPlanRequest{AthleteID: athlete.ID.Hex(), Name: "Block B", TemplateID: template.ID.Hex()}
	rr = ts.do(t, http.MethodPost, "/api/v1/training-plans", coachToken, fromTemplate)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, decode[planResponse](t, rr).Sessions, 2)
}

func TestFeedbackFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	coach, coachToken := ts.addUser(t, "coach", domain.RoleCoach, nil)
	athlete, athleteToken := ts.addUser(t, "ann", domain.RoleAthlete, &coach.ID)
	plan := ts.createPlanHTTP(t, coachToken, athlete)
	session := plan.Sessions[0]
	squat := session.Exercises[0]

	fields := map[string]string{
		"planId":             plan.ID.Hex(),
		"sessionId":          session.ID.Hex(),
		"exerciseId":         squat.ID.Hex(),
		"completed":          "true",
		"performanceComment": "felt heavy",
	}
	video := &formFile{field: "media", name: "squat.mp4", contentType: "video/mp4", data: []byte("video")}

	t.Run("coach cannot submit", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", fields, nil)
		assert.Equal(t, http.StatusForbidden, ts.send(req, coachToken).Code)
	})

	t.Run("rejects non media files", func(t *testing.T) {
		doc := &formFile{field: "media", name: "notes.pdf", contentType: "application/pdf", data: []byte("pdf")}
		req := multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", fields, doc)
		rr := ts.send(req, athleteToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, ts.files.Len())
	})

	t.Run("submit with evidence", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", fields, video)
		rr := ts.send(req, athleteToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		got := decode[planResponse](t, rr)
		ex := got.Sessions[0].Exercises[0]
		assert.True(t, ex.Completed)
		assert.Equal(t, "felt heavy", ex.PerformanceComment)
		assert.Contains(t, ex.MediaURL, "memory://media/"+athlete.ID.Hex()+"/"+plan.ID.Hex()+"/")
		assert.Equal(t, 1, got.Progress.CompletedExercises)
		assert.Equal(t, 1, ts.files.Len())
	})

	t.Run("omitted fields are kept", func(t *testing.T) {
		partial := map[string]string{
			"planId":       plan.ID.Hex(),
			"sessionId":    session.ID.Hex(),
			"exerciseId":   squat.ID.Hex(),
			"athleteNotes": "knees ok",
		}
		rr := ts.send(multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", partial, nil), athleteToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		ex := decode[planResponse](t, rr).Sessions[0].Exercises[0]
		assert.True(t, ex.Completed)
		assert.Equal(t, "felt heavy", ex.PerformanceComment)
		assert.Equal(t, "knees ok", ex.AthleteNotes)
	})

	t.Run("invalid completed flag", func(t *testing.T) {
		bad := map[string]string{"planId": plan.ID.Hex(), "sessionId": session.ID.Hex(), "exerciseId": squat.ID.Hex(), "completed": "maybe"}
		rr := ts.send(multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", bad, nil), athleteToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing ids", func(t *testing.T) {
		rr := ts.send(multipartRequest(t, http.MethodPost, "/api/v1/training-plans/feedback/exercise", map[string]string{"planId": plan.ID.Hex()}, nil), athleteToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("performed sets", func(t *testing.T) {
		reps, load := 5, 100.0
		req := ExerciseSetsRequest{
			PlanID:     plan.ID.Hex(),
			SessionID:  session.ID.Hex(),
			ExerciseID: squat.ID.Hex(),
			PerformedSets: []PerformedSetRequest{
				{RepsPerformed: &reps, LoadUsed: &load, Completed: true},
				{RepsPerformed: &reps, Completed: false},
			},
		}
		rr := ts.do(t, http.MethodPatch, "/api/v1/training-plans/feedback/exercise-sets", athleteToken, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		sets := decode[planResponse](t, rr).Sessions[0].Exercises[0].PerformedSets
		require.Len(t, sets, 2)
		assert.Equal(t, 1, sets[0].SetNumber)
		assert.Equal(t, 2, sets[1].SetNumber)
		assert.False(t, sets[0].ID.IsZero())
	})

	t.Run("performed sets field errors", func(t *testing.T) {
		reps := 5
		req := ExerciseSetsRequest{
			PlanID:     plan.ID.Hex(),
			SessionID:  session.ID.Hex(),
			ExerciseID: squat.ID.Hex(),
			PerformedSets: []PerformedSetRequest{
				{SetNumber: 1, Completed: false},
				{SetNumber: 2, RepsPerformed: &reps, Completed: true},
			},
		}
		rr := ts.do(t, http.MethodPatch, "/api/v1/training-plans/feedback/exercise-sets", athleteToken, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		body := decode[fieldErrorsResponse](t, rr)
		require.Len(t, body.FieldErrors, 1)
		assert.Equal(t, 1, body.FieldErrors[0].Index)
		assert.Equal(t, 2, body.FieldErrors[0].SetNumber)
		assert.Equal(t, "loadUsed", body.FieldErrors[0].Field)
	})

	t.Run("session notes", func(t *testing.T) {
		req := SessionNotesRequest{PlanID: plan.ID.Hex(), SessionID: session.ID.Hex(), SessionNotes: "Good day"}
		rr := ts.do(t, http.MethodPatch, "/api/v1/training-plans/feedback/session-notes", athleteToken, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Good day", decode[planResponse](t, rr).Sessions[0].SessionNotes)

		req.SessionID = plan.ID.Hex()
		rr = ts.do(t, http.MethodPatch, "/api/v1/training-plans/feedback/session-notes", athleteToken, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(ts.metrics.CounterFeedback.WithLabelValues("exercise")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.CounterFeedback.WithLabelValues("sets")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.CounterMediaUploads.WithLabelValues("video")))
}

func TestResponsesUseUnderscoreIDKey(t *testing.T) {
	ts := newTestServer(t, nil)
	coach, coachToken := ts.addUser(t, "coach", domain.RoleCoach, nil)
	athlete, _ := ts.addUser(t, "ann", domain.RoleAthlete, &coach.ID)
	plan := ts.createPlanHTTP(t, coachToken, athlete)

	rr := ts.do(t, http.MethodGet, "/api/v1/training-plans/"+plan.ID.Hex(), coachToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	raw := decode[map[string]any](t, rr)
	assert.Equal(t, plan.ID.Hex(), raw["_id"])
	assert.NotContains(t, raw, "id")

	rr = ts.do(t, http.MethodGet, "/api/v1/users/athletes/"+coach.ID.Hex(), coachToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	athletes := decode[[]map[string]any](t, rr)
	require.Len(t, athletes, 1)
	assert.Equal(t, athlete.ID.Hex(), athletes[0]["_id"])
	assert.Equal(t, athlete.ID.Hex(), athletes[0]["id"])
}
