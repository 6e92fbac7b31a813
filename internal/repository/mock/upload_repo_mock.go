package mock

import (
	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UploadRepoMock struct {
	mu      sync.Mutex
	uploads []domain.Upload
}

func NewUploadRepoMock() *UploadRepoMock {
	return &UploadRepoMock{}
}

func (r *UploadRepoMock) Create(_ context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if upload.OwnerID == primitive.NilObjectID || upload.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires ownerId and s3ObjectKey")
	}
	upload.ID = primitive.NewObjectID()
	upload.UploadedAt = time.Now().UTC()
	r.uploads = append(r.uploads, *upload)
	return upload.ID, nil
}

func (r *UploadRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.uploads {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UploadRepoMock) GetByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Upload
	for _, u := range r.uploads {
		if u.PlanID != nil && *u.PlanID == planID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UploadRepoMock) DeleteByPlanID(_ context.Context, planID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.uploads[:0]
	for _, u := range r.uploads {
		if u.PlanID == nil || *u.PlanID != planID {
			kept = append(kept, u)
		}
	}
	r.uploads = kept
	return nil
}

// All returns every stored upload.
func (r *UploadRepoMock) All() []domain.Upload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Upload, len(r.uploads))
	copy(out, r.uploads)
	return out
}

var _ repository.UploadRepository = (*UploadRepoMock)(nil)
