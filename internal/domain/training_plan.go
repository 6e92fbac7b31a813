// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan is a coach-authored schedule of sessions assigned to one athlete.
// Sessions are embedded so the whole plan is read and written as one document.
type TrainingPlan struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	CoachID     primitive.ObjectID  `bson:"coachId" json:"coachId"`     // Who authored the plan
	AthleteID   primitive.ObjectID  `bson:"athleteId" json:"athleteId"` // Who the plan is for
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	StartDate   *time.Time          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time          `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Sessions    []Session           `bson:"sessions" json:"sessions"`
	IsTemplate  bool                `bson:"isTemplate" json:"isTemplate"` // Plan has been converted into a template
	TemplateID  *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// FindSession returns the session with the given id, or nil.
func (p *TrainingPlan) FindSession(sessionID primitive.ObjectID) *Session {
	for i := range p.Sessions {
		if p.Sessions[i].ID == sessionID {
			return &p.Sessions[i]
		}
	}
	return nil
}

// FindExercise returns the exercise inside the given session, or nil.
func (p *TrainingPlan) FindExercise(sessionID, exerciseID primitive.ObjectID) *Exercise {
	session := p.FindSession(sessionID)
	if session == nil {
		return nil
	}
	for i := range session.Exercises {
		if session.Exercises[i].ID == exerciseID {
			return &session.Exercises[i]
		}
	}
	return nil
}

// IsActiveAt reports whether t falls within the plan's date range.
func (p *TrainingPlan) IsActiveAt(t time.Time) bool {
	if p.StartDate == nil || p.EndDate == nil {
		return false
	}
	return !t.Before(*p.StartDate) && !t.After(*p.EndDate)
}
