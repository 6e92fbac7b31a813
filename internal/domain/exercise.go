// internal/domain/exercise.go
package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a prescribed movement inside a session, together with the
// athlete's reported outcome.
type Exercise struct {
	ID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name   string             `bson:"name" json:"name"`
	Sets   int                `bson:"sets" json:"sets"` // Target sets
	Reps   int                `bson:"reps" json:"reps"` // Target reps per set
	RPE    *float64           `bson:"rpe,omitempty" json:"rpe,omitempty"`
	RIR    *float64           `bson:"rir,omitempty" json:"rir,omitempty"`
	RM     *float64           `bson:"rm,omitempty" json:"rm,omitempty"`
	Weight *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	Notes  string             `bson:"notes,omitempty" json:"notes,omitempty"` // Coach notes

	// --- Athlete feedback ---
	Completed          bool   `bson:"completed" json:"completed"`
	PerformanceComment string `bson:"performanceComment,omitempty" json:"performanceComment,omitempty"`
	AthleteNotes       string `bson:"athleteNotes,omitempty" json:"athleteNotes,omitempty"`
	// MediaKey is the storage key of the evidence; MediaURL is presigned on read.
	MediaKey string `bson:"mediaKey,omitempty" json:"-"`
	MediaURL string `bson:"-" json:"mediaUrl,omitempty"`

	PerformedSets []PerformedSet `bson:"performedSets" json:"performedSets"`
}

// PerformedSet is the athlete-reported outcome of one set of an exercise.
type PerformedSet struct {
	ID              primitive.ObjectID `bson:"setId" json:"setId"`
	SetNumber       int                `bson:"setNumber" json:"setNumber"`
	RepsPerformed   *int               `bson:"repsPerformed,omitempty" json:"repsPerformed,omitempty"`
	LoadUsed        *float64           `bson:"loadUsed,omitempty" json:"loadUsed,omitempty"`
	MeasureAchieved *float64           `bson:"measureAchieved,omitempty" json:"measureAchieved,omitempty"`
	Completed       bool               `bson:"completed" json:"completed"`
}

// ResetFeedback strips everything the athlete reported, keeping the prescription.
func (e *Exercise) ResetFeedback() {
	e.Completed = false
	e.PerformanceComment = ""
	e.AthleteNotes = ""
	e.MediaKey = ""
	e.MediaURL = ""
	sets := make([]PerformedSet, 0, len(e.PerformedSets))
	for _, s := range e.PerformedSets {
		sets = append(sets, PerformedSet{ID: s.ID, SetNumber: s.SetNumber})
	}
	e.PerformedSets = sets
}
