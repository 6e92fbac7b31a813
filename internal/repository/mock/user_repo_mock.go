package mock

import (
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepoMock struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func NewUserRepoMock() *UserRepoMock {
	return &UserRepoMock{
		users: make(map[primitive.ObjectID]*domain.User),
	}
}

func (r *UserRepoMock) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *UserRepoMock) find(match func(u *domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *UserRepoMock) GetByActivationToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.find(func(u *domain.User) bool { return u.ActivationToken == token })
}

func (r *UserRepoMock) GetByResetToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.find(func(u *domain.User) bool { return u.ResetToken == token })
}

func (r *UserRepoMock) mutate(id primitive.ObjectID, fn func(u *domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepoMock) Activate(_ context.Context, id primitive.ObjectID) error {
	return r.mutate(id, func(u *domain.User) error {
		u.IsActive = true
		u.ActivationToken = ""
		return nil
	})
}

func (r *UserRepoMock) SetResetToken(_ context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	return r.mutate(id, func(u *domain.User) error {
		u.ResetToken = token
		exp := expiresAt.UTC()
		u.ResetTokenExpiresAt = &exp
		return nil
	})
}

func (r *UserRepoMock) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.PasswordHash = passwordHash
		u.ResetToken = ""
		u.ResetTokenExpiresAt = nil
		return nil
	})
}

func (r *UserRepoMock) UpdateProfile(_ context.Context, id primitive.ObjectID, fullName, email string) error {
	r.mu.Lock()
	for _, u := range r.users {
		if u.ID != id && u.Email == email {
			r.mu.Unlock()
			return repository.ErrDuplicate
		}
	}
	r.mu.Unlock()

	return r.mutate(id, func(u *domain.User) error {
		u.FullName = fullName
		u.Email = email
		return nil
	})
}

func (r *UserRepoMock) SetProfilePicture(_ context.Context, id primitive.ObjectID, objectKey string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.ProfilePictureKey = objectKey
		return nil
	})
}

func (r *UserRepoMock) SetCoach(_ context.Context, athleteID primitive.ObjectID, coachID *primitive.ObjectID) error {
	return r.mutate(athleteID, func(u *domain.User) error {
		if u.Role != domain.RoleAthlete {
			return repository.ErrNotFound
		}
		if coachID == nil {
			u.CoachID = nil
			u.LinkedAt = nil
			return nil
		}
		id := *coachID
		now := time.Now().UTC()
		u.CoachID = &id
		u.LinkedAt = &now
		return nil
	})
}

func (r *UserRepoMock) GetAthletesByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var athletes []domain.User
	for _, u := range r.users {
		if u.Role == domain.RoleAthlete && u.HasCoach(coachID) {
			athletes = append(athletes, *u)
		}
	}
	sort.Slice(athletes, func(i, j int) bool {
		return linkedOrCreated(athletes[i]).After(linkedOrCreated(athletes[j]))
	})
	return athletes, nil
}

func linkedOrCreated(u domain.User) time.Time {
	if u.LinkedAt != nil {
		return *u.LinkedAt
	}
	return u.CreatedAt
}

var _ repository.UserRepository = (*UserRepoMock)(nil)
