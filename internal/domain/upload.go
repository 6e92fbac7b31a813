package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UploadKind string

const (
	UploadExerciseMedia  UploadKind = "exercise_media"
	UploadProfilePicture UploadKind = "profile_picture"
)

// Upload stores metadata about a file uploaded by a user.
// The actual file resides in S3.
type Upload struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	OwnerID     primitive.ObjectID  `bson:"ownerId" json:"ownerId"` // User who uploaded
	Kind        UploadKind          `bson:"kind" json:"kind"`
	PlanID      *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"`
	SessionID   *primitive.ObjectID `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	ExerciseID  *primitive.ObjectID `bson:"exerciseId,omitempty" json:"exerciseId,omitempty"`
	S3ObjectKey string              `bson:"s3ObjectKey" json:"-"`           // Internal use
	FileName    string              `bson:"fileName" json:"fileName"`       // Original filename provided by the user
	ContentType string              `bson:"contentType" json:"contentType"` // MIME type (e.g., "video/mp4")
	Size        int64               `bson:"size" json:"size"`               // File size in bytes
	UploadedAt  time.Time           `bson:"uploadedAt" json:"uploadedAt"`
}
