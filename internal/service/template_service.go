package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultMostUsedLimit = 10
	MaxMostUsedLimit     = 50
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("template not found")
	ErrTemplateAccessDenied = errors.New("access denied to this template")
	ErrPredefinedTemplate   = errors.New("predefined templates cannot be modified")
	ErrInvalidCategory      = errors.New("invalid template category")
)

// ReadCache is the read-through cache in front of template queries.
type ReadCache interface {
	Get(key string, dst any) bool
	Set(key string, value any)
	Purge()
}

// TemplateQuery mirrors the listing query string.
type TemplateQuery struct {
	Type       domain.TemplateType
	CreatedBy  *primitive.ObjectID
	Predefined bool
	Category   domain.TemplateCategory
}

func (q TemplateQuery) cacheKey() string {
	createdBy := ""
	if q.CreatedBy != nil {
		createdBy = q.CreatedBy.Hex()
	}
	return fmt.Sprintf("templates:list:%s:%s:%t:%s", q.Type, createdBy, q.Predefined, q.Category)
}

type TemplateInput struct {
	Name        string
	Description string
	Sessions    []domain.Session
}

type TemplateService interface {
	List(ctx context.Context, query TemplateQuery) ([]domain.Template, error)
	MostUsed(ctx context.Context, limit int) ([]domain.Template, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	Create(ctx context.Context, coachID primitive.ObjectID, input TemplateInput) (*domain.Template, error)
	CreateFromPlan(ctx context.Context, coachID, planID primitive.ObjectID, name, description string) (*domain.Template, error)
	IncrementUsage(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	Delete(ctx context.Context, coachID, id primitive.ObjectID) error
	// SeedPredefined inserts the predefined templates that are missing, by name.
	SeedPredefined(ctx context.Context, templates []domain.Template) (int, error)
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
	planRepo     repository.TrainingPlanRepository
	cache        ReadCache
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.TemplateRepository, planRepo repository.TrainingPlanRepository, cache ReadCache) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		planRepo:     planRepo,
		cache:        cache,
	}
}

func (s *templateService) List(ctx context.Context, query TemplateQuery) ([]domain.Template, error) {
	if query.Category != "" && !domain.ValidCategory(query.Category) {
		return nil, ErrInvalidCategory
	}

	key := query.cacheKey()
	var templates []domain.Template
	if s.cache.Get(key, &templates) {
		return templates, nil
	}

	filter := repository.TemplateFilter{
		Type:       query.Type,
		CreatedBy:  query.CreatedBy,
		Category:   query.Category,
		ActiveOnly: true,
	}
	if query.Predefined {
		filter.Type = domain.TemplatePredefined
	}

	templates, err := s.templateRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	s.cache.Set(key, templates)
	return templates, nil
}

func (s *templateService) MostUsed(ctx context.Context, limit int) ([]domain.Template, error) {
	if limit <= 0 {
		limit = DefaultMostUsedLimit
	}
	if limit > MaxMostUsedLimit {
		limit = MaxMostUsedLimit
	}

	key := fmt.Sprintf("templates:most-used:%d", limit)
	var templates []domain.Template
	if s.cache.Get(key, &templates) {
		return templates, nil
	}

	templates, err := s.templateRepo.MostUsed(ctx, limit)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	s.cache.Set(key, templates)
	return templates, nil
}

func (s *templateService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	key := "templates:id:" + id.Hex()
	var cached domain.Template
	if s.cache.Get(key, &cached) {
		return &cached, nil
	}

	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	s.cache.Set(key, template)
	return template, nil
}

func (s *templateService) Create(ctx context.Context, coachID primitive.ObjectID, input TemplateInput) (*domain.Template, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrInvalidInput)
	}
	if err := validateSessions(input.Sessions); err != nil {
		return nil, err
	}

	template := &domain.Template{
		Name:        name,
		Description: input.Description,
		Type:        domain.TemplateUserCreated,
		CreatedBy:   &coachID,
		Sessions:    newSessionsFrom(input.Sessions),
		IsActive:    true,
	}
	return s.insert(ctx, template)
}

// CreateFromPlan copies the plan's structure into a new template, without athlete feedback.
func (s *templateService) CreateFromPlan(ctx context.Context, coachID, planID primitive.ObjectID, name, description string) (*domain.Template, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = plan.Name
	}
	if description == "" {
		description = plan.Description
	}

	template := &domain.Template{
		Name:           name,
		Description:    description,
		Type:           domain.TemplateUserCreated,
		CreatedBy:      &coachID,
		OriginalPlanID: &plan.ID,
		Sessions:       newSessionsFrom(plan.Sessions),
		IsActive:       true,
	}
	return s.insert(ctx, template)
}

func (s *templateService) insert(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if _, err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}
	s.cache.Purge()
	return template, nil
}

func (s *templateService) IncrementUsage(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	if err := s.templateRepo.IncrementUsage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	s.cache.Purge()
	return s.Get(ctx, id)
}

// Delete removes a user-created template. Only its creator may do so.
func (s *templateService) Delete(ctx context.Context, coachID, id primitive.ObjectID) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if template.IsPredefined() {
		return ErrPredefinedTemplate
	}
	if !template.OwnedBy(coachID) {
		return ErrTemplateAccessDenied
	}

	if err := s.templateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	s.cache.Purge()
	return nil
}

func (s *templateService) SeedPredefined(ctx context.Context, templates []domain.Template) (int, error) {
	created := 0
	for i := range templates {
		t := templates[i]
		if !domain.ValidCategory(t.PredefinedCategory) {
			return created, fmt.Errorf("%w: %q for template %q", ErrInvalidCategory, t.PredefinedCategory, t.Name)
		}

		_, err := s.templateRepo.GetPredefinedByName(ctx, t.Name)
		if err == nil {
			log.Debugf("predefined template %q already present", t.Name)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, err
		}

		t.Type = domain.TemplatePredefined
		t.CreatedBy = nil
		t.IsActive = true
		t.Sessions = newSessionsFrom(t.Sessions)
		if _, err := s.templateRepo.Create(ctx, &t); err != nil {
			return created, fmt.Errorf("seed template %q: %w", t.Name, err)
		}
		created++
	}
	if created > 0 {
		s.cache.Purge()
	}
	return created, nil
}
