package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session represents a single scheduled workout within a TrainingPlan.
type Session struct {
	ID           primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	Name         string             `bson:"sessionName" json:"sessionName"` // e.g., "Day 1: Upper Body"
	Date         *time.Time         `bson:"date,omitempty" json:"date,omitempty"`
	Exercises    []Exercise         `bson:"exercises" json:"exercises"`
	SessionNotes string             `bson:"sessionNotes,omitempty" json:"sessionNotes,omitempty"` // Added post-hoc by the athlete
}

// IsCompleted reports whether the session has at least one exercise and all
// of them are completed.
func (s *Session) IsCompleted() bool {
	if len(s.Exercises) == 0 {
		return false
	}
	for _, ex := range s.Exercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}
