package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateType string

const (
	TemplatePredefined  TemplateType = "predefined"
	TemplateUserCreated TemplateType = "user_created"
)

type TemplateCategory string

const (
	CategoryBasicStrength TemplateCategory = "fuerza_basico"
	CategoryHypertrophy   TemplateCategory = "hipertrofia"
	CategoryEndurance     TemplateCategory = "resistencia"
)

// Template is a reusable plan blueprint with the same session/exercise/set shape.
type Template struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name               string              `bson:"name" json:"name"`
	Description        string              `bson:"description,omitempty" json:"description,omitempty"`
	Type               TemplateType        `bson:"type" json:"type"`
	PredefinedCategory TemplateCategory    `bson:"predefinedCategory,omitempty" json:"predefinedCategory,omitempty"`
	CreatedBy          *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"` // Coach, nil for predefined
	OriginalPlanID     *primitive.ObjectID `bson:"originalPlanId,omitempty" json:"originalPlanId,omitempty"`
	Sessions           []Session           `bson:"sessions" json:"sessions"`
	UsageCount         int                 `bson:"usageCount" json:"usageCount"`
	IsActive           bool                `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (t *Template) IsPredefined() bool {
	return t.Type == TemplatePredefined
}

// OwnedBy reports whether the template was created by the given coach.
func (t *Template) OwnedBy(coachID primitive.ObjectID) bool {
	return t.CreatedBy != nil && *t.CreatedBy == coachID
}

// ValidCategory reports whether c is one of the predefined categories.
func ValidCategory(c TemplateCategory) bool {
	switch c {
	case CategoryBasicStrength, CategoryHypertrophy, CategoryEndurance:
		return true
	}
	return false
}
