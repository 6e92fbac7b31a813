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

type TemplateRepoMock struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]*domain.Template
}

func NewTemplateRepoMock() *TemplateRepoMock {
	return &TemplateRepoMock{
		templates: make(map[primitive.ObjectID]*domain.Template),
	}
}

func (r *TemplateRepoMock) Create(_ context.Context, template *domain.Template) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if template.Name == "" || template.Type == "" {
		return primitive.NilObjectID, errors.New("template requires name and type")
	}
	template.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	r.templates[template.ID] = cloneTemplate(template)
	return template.ID, nil
}

func (r *TemplateRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTemplate(t), nil
}

func (r *TemplateRepoMock) GetPredefinedByName(_ context.Context, name string) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.Name == name && t.IsPredefined() {
			return cloneTemplate(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *TemplateRepoMock) List(_ context.Context, filter repository.TemplateFilter) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Template
	for _, t := range r.templates {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.CreatedBy != nil && !t.OwnedBy(*filter.CreatedBy) {
			continue
		}
		if filter.Category != "" && t.PredefinedCategory != filter.Category {
			continue
		}
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, *cloneTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TemplateRepoMock) MostUsed(_ context.Context, limit int) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Template
	for _, t := range r.templates {
		if t.IsActive {
			out = append(out, *cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TemplateRepoMock) IncrementUsage(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.UsageCount++
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *TemplateRepoMock) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

var _ repository.TemplateRepository = (*TemplateRepoMock)(nil)
