package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleCoach   Role = "coach"
	RoleAthlete Role = "athlete"
)

// User represents a user in the system (either a Coach or an Athlete).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"` // false until the activation link is followed

	ActivationToken     string     `bson:"activationToken,omitempty" json:"-"`
	ResetToken          string     `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiresAt *time.Time `bson:"resetTokenExpiresAt,omitempty" json:"-"`

	ProfilePictureKey string `bson:"profilePictureKey,omitempty" json:"-"`

	// Athlete-specific: the coach managing this athlete.
	CoachID  *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	LinkedAt *time.Time          `bson:"linkedAt,omitempty" json:"linkedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}

// HasCoach reports whether the athlete is linked to the given coach.
func (u *User) HasCoach(coachID primitive.ObjectID) bool {
	return u.CoachID != nil && *u.CoachID == coachID
}
