package repository

import (
	"alcyxob/coaching-api/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByActivationToken(ctx context.Context, token string) (*domain.User, error)
	GetByResetToken(ctx context.Context, token string) (*domain.User, error)
	Activate(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error
	// UpdatePassword stores the new hash and clears any pending reset token.
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName, email string) error
	SetProfilePicture(ctx context.Context, id primitive.ObjectID, objectKey string) error
	// SetCoach links an athlete to a coach; a nil coachID unlinks.
	SetCoach(ctx context.Context, athleteID primitive.ObjectID, coachID *primitive.ObjectID) error
	GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
// Sessions, exercises and performed sets live inside the plan document.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID, athleteID *primitive.ObjectID) ([]domain.TrainingPlan, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error)
	Update(ctx context.Context, plan *domain.TrainingPlan) error
	Delete(ctx context.Context, planID, coachID primitive.ObjectID) error
	SetTemplateStatus(ctx context.Context, planID primitive.ObjectID, isTemplate bool, templateID *primitive.ObjectID) error

	UpdateExerciseFeedback(ctx context.Context, ref ExerciseRef, update ExerciseFeedbackUpdate) error
	ReplacePerformedSets(ctx context.Context, ref ExerciseRef, sets []domain.PerformedSet) error
	UpdateSessionNotes(ctx context.Context, planID, sessionID primitive.ObjectID, notes string) error
}

// ExerciseRef addresses one exercise nested inside a plan.
type ExerciseRef struct {
	PlanID     primitive.ObjectID
	SessionID  primitive.ObjectID
	ExerciseID primitive.ObjectID
}

// ExerciseFeedbackUpdate carries the athlete fields to overwrite. Nil fields are left untouched.
type ExerciseFeedbackUpdate struct {
	Completed          *bool
	PerformanceComment *string
	AthleteNotes       *string
	MediaKey           *string
}

// IsEmpty reports whether the update would change nothing.
func (u ExerciseFeedbackUpdate) IsEmpty() bool {
	return u.Completed == nil && u.PerformanceComment == nil && u.AthleteNotes == nil && u.MediaKey == nil
}

// TemplateFilter narrows template listings. Zero values mean "any".
type TemplateFilter struct {
	Type       domain.TemplateType
	CreatedBy  *primitive.ObjectID
	Category   domain.TemplateCategory
	ActiveOnly bool
}

// TemplateRepository defines the interface for interacting with plan templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	GetPredefinedByName(ctx context.Context, name string) (*domain.Template, error)
	List(ctx context.Context, filter TemplateFilter) ([]domain.Template, error)
	MostUsed(ctx context.Context, limit int) ([]domain.Template, error)
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Upload, error)
	DeleteByPlanID(ctx context.Context, planID primitive.ObjectID) error
}
