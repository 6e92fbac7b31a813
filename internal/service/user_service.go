package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/feedback"
	"alcyxob/coaching-api/internal/metrics"
	"alcyxob/coaching-api/internal/repository"
	"alcyxob/coaching-api/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxProfilePictureSize caps profile picture uploads.
const MaxProfilePictureSize = 5 << 20

// --- Error Definitions ---
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNotAthlete           = errors.New("user found but is not an athlete")
	ErrNotCoach             = errors.New("user found but is not a coach")
	ErrAthleteHasOtherCoach = errors.New("athlete is already linked to another coach")
	ErrAthleteNotLinked     = errors.New("athlete is not linked to this coach")
	ErrNoCoach              = errors.New("athlete has no coach")
	ErrUserAccessDenied     = errors.New("access denied to this user")
)

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*domain.User, error)
	UpdateProfilePicture(ctx context.Context, userID primitive.ObjectID, file MediaFile) (*domain.User, error)
	// ProfilePictureURL presigns the user's picture, or returns "" when there is none.
	ProfilePictureURL(ctx context.Context, user *domain.User) string

	GetMyCoach(ctx context.Context, athleteID primitive.ObjectID) (*domain.User, error)
	SearchAthleteByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAthletes(ctx context.Context, caller Caller, coachID primitive.ObjectID) ([]domain.User, error)
	GetAthlete(ctx context.Context, caller Caller, athleteID primitive.ObjectID) (*domain.User, error)
	LinkCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.User, error)
	UnlinkCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.User, error)
}

// userService implements the UserService interface.
type userService struct {
	userRepo   repository.UserRepository
	uploadRepo repository.UploadRepository
	files      storage.FileStorage
	metrics    *metrics.Manager
	urlExpiry  time.Duration
}

// NewUserService creates a new instance of userService.
func NewUserService(
	userRepo repository.UserRepository,
	uploadRepo repository.UploadRepository,
	files storage.FileStorage,
	metricsManager *metrics.Manager,
	urlExpiry time.Duration,
) UserService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &userService{
		userRepo:   userRepo,
		uploadRepo: uploadRepo,
		files:      files,
		metrics:    metricsManager,
		urlExpiry:  urlExpiry,
	}
}

func (s *userService) getUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// === Profile ===

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.getUser(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrInvalidInput)
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, fullName, email); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.getUser(ctx, userID)
}

// UpdateProfilePicture stores a new image and points the profile at it.
// The previous picture is removed once the profile is updated.
func (s *userService) UpdateProfilePicture(ctx context.Context, userID primitive.ObjectID, file MediaFile) (*domain.User, error) {
	if feedback.MediaKind(file.ContentType, file.FileName) != "image" {
		return nil, ErrUnsupportedPicture
	}
	if file.Size > MaxProfilePictureSize {
		return nil, ErrFileTooLarge
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := storage.ProfilePictureKey(userID, file.FileName)
	if err := s.files.Upload(ctx, key, file.ContentType, file.Body, file.Size); err != nil {
		log.WithError(err).Errorf("upload profile picture for user %s", userID.Hex())
		return nil, ErrMediaStorage
	}

	if err := s.userRepo.SetProfilePicture(ctx, userID, key); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	upload := &domain.Upload{
		OwnerID:     userID,
		Kind:        domain.UploadProfilePicture,
		S3ObjectKey: key,
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Size:        file.Size,
	}
	if _, err := s.uploadRepo.Create(ctx, upload); err != nil {
		log.WithError(err).Warnf("record profile picture upload %s", key)
	}
	s.metrics.CounterMediaUploads.WithLabelValues(string(domain.UploadProfilePicture)).Inc()

	if user.ProfilePictureKey != "" {
		s.deleteObject(ctx, user.ProfilePictureKey)
	}
	user.ProfilePictureKey = key
	return user, nil
}

func (s *userService) deleteObject(ctx context.Context, key string) {
	if err := s.files.DeleteObject(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.WithError(err).Warnf("delete object %s", key)
	}
}

func (s *userService) ProfilePictureURL(ctx context.Context, user *domain.User) string {
	if user == nil || user.ProfilePictureKey == "" {
		return ""
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, user.ProfilePictureKey, s.urlExpiry)
	if err != nil {
		log.WithError(err).Warnf("presign profile picture for user %s", user.ID.Hex())
		return ""
	}
	return url
}

// === Coach / athlete linkage ===

func (s *userService) GetMyCoach(ctx context.Context, athleteID primitive.ObjectID) (*domain.User, error) {
	athlete, err := s.getUser(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if athlete.CoachID == nil {
		return nil, ErrNoCoach
	}
	coach, err := s.getUser(ctx, *athlete.CoachID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrNoCoach
	}
	return coach, err
}

// SearchAthleteByEmail finds an athlete a coach may want to link.
func (s *userService) SearchAthleteByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsAthlete() {
		return nil, ErrNotAthlete
	}
	user.PasswordHash = ""
	return user, nil
}

// GetAthletes lists a coach's athletes. Coaches can only list their own.
func (s *userService) GetAthletes(ctx context.Context, caller Caller, coachID primitive.ObjectID) ([]domain.User, error) {
	if !caller.IsCoach() || caller.ID != coachID {
		return nil, ErrUserAccessDenied
	}
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	if athletes == nil {
		athletes = []domain.User{}
	}
	return athletes, nil
}

// GetAthlete returns an athlete to their coach or to themselves.
func (s *userService) GetAthlete(ctx context.Context, caller Caller, athleteID primitive.ObjectID) (*domain.User, error) {
	athlete, err := s.getUser(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAthlete
	}
	if caller.ID != athlete.ID && !(caller.IsCoach() && athlete.HasCoach(caller.ID)) {
		return nil, ErrUserAccessDenied
	}
	return athlete, nil
}

// LinkCoach makes coachID the athlete's coach. Relinking to the same coach is a no-op.
func (s *userService) LinkCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.User, error) {
	athlete, err := s.getUser(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAthlete
	}
	if athlete.HasCoach(coachID) {
		return athlete, nil
	}
	if athlete.CoachID != nil {
		return nil, ErrAthleteHasOtherCoach
	}

	if err := s.userRepo.SetCoach(ctx, athleteID, &coachID); err != nil {
		return nil, err
	}
	log.Infof("athlete %s linked to coach %s", athleteID.Hex(), coachID.Hex())
	return s.getUser(ctx, athleteID)
}

func (s *userService) UnlinkCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.User, error) {
	athlete, err := s.getUser(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	if !athlete.HasCoach(coachID) {
		return nil, ErrAthleteNotLinked
	}

	if err := s.userRepo.SetCoach(ctx, athleteID, nil); err != nil {
		return nil, err
	}
	log.Infof("athlete %s unlinked from coach %s", athleteID.Hex(), coachID.Hex())
	return s.getUser(ctx, athleteID)
}
