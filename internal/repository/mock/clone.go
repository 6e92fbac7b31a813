package mock

import (
	"alcyxob/coaching-api/internal/domain"
)

// Stored documents are cloned on the way in and out so callers never share
// memory with the store, matching what a real database round trip gives.

func cloneSessions(sessions []domain.Session) []domain.Session {
	if sessions == nil {
		return []domain.Session{}
	}
	out := make([]domain.Session, len(sessions))
	for i, s := range sessions {
		out[i] = s
		if s.Date != nil {
			d := *s.Date
			out[i].Date = &d
		}
		out[i].Exercises = make([]domain.Exercise, len(s.Exercises))
		for j, ex := range s.Exercises {
			out[i].Exercises[j] = ex
			out[i].Exercises[j].MediaURL = ""
			out[i].Exercises[j].PerformedSets = cloneSets(ex.PerformedSets)
		}
	}
	return out
}

func cloneSets(sets []domain.PerformedSet) []domain.PerformedSet {
	out := make([]domain.PerformedSet, len(sets))
	copy(out, sets)
	return out
}

func clonePlan(p *domain.TrainingPlan) *domain.TrainingPlan {
	c := *p
	c.Sessions = cloneSessions(p.Sessions)
	return &c
}

func cloneTemplate(t *domain.Template) *domain.Template {
	c := *t
	c.Sessions = cloneSessions(t.Sessions)
	return &c
}
