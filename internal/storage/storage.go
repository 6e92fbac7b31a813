package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrObjectNotFound = errors.New("object not found in storage")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload streams body to the storage provider under objectKey.
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExerciseMediaKey builds media/<athleteId>/<planId>/<uuid><ext>.
func ExerciseMediaKey(athleteID, planID primitive.ObjectID, fileName string) string {
	return fmt.Sprintf("media/%s/%s/%s%s", athleteID.Hex(), planID.Hex(), uuid.NewString(), extension(fileName))
}

// ProfilePictureKey builds profile/<userId>/<uuid><ext>.
func ProfilePictureKey(userID primitive.ObjectID, fileName string) string {
	return fmt.Sprintf("profile/%s/%s%s", userID.Hex(), uuid.NewString(), extension(fileName))
}

func extension(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	// Client supplied, keep it short and path-safe.
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
