package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/cache"
	"github.com/ibuc/dracmas-service/internal/model"
)

type CriterionRepository interface {
	ListActive(ctx context.Context) ([]*model.Criterion, error)
	List(ctx context.Context) ([]*model.Criterion, error)
	GetByCode(ctx context.Context, code string) (*model.Criterion, error)
	Create(ctx context.Context, c *model.Criterion) (*model.Criterion, error)
	Update(ctx context.Context, id uuid.UUID, upd model.CriterionUpdateRequest) (*model.Criterion, error)
}

// CriterionService exposes the crediting categories. The active list is the
// hot path (every launch screen load hits it) and goes through a short-TTL
// redis cache; writes invalidate it.
type CriterionService struct {
	repo  CriterionRepository
	cache *cache.CriteriaCache
}

func NewCriterionService(repo CriterionRepository, c *cache.CriteriaCache) *CriterionService {
	return &CriterionService{
		repo:  repo,
		cache: c,
	}
}

func (s *CriterionService) ListActive(ctx context.Context) ([]*model.Criterion, error) {
	if s.cache != nil {
		if criteria, ok := s.cache.Get(); ok {
			return criteria, nil
		}
	}

	criteria, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(criteria)
	}
	return criteria, nil
}

func (s *CriterionService) List(ctx context.Context) ([]*model.Criterion, error) {
	return s.repo.List(ctx)
}

func (s *CriterionService) Create(ctx context.Context, req model.CriterionCreateRequest) (*model.Criterion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	qty := req.DefaultQuantity
	if qty == 0 {
		qty = 1
	}

	created, err := s.repo.Create(ctx, &model.Criterion{
		Code:            req.Code,
		Label:           req.Label,
		Description:     req.Description,
		DefaultQuantity: qty,
		Active:          active,
	})
	if err != nil {
		return nil, fmt.Errorf("create criterion: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return created, nil
}

func (s *CriterionService) Update(ctx context.Context, id uuid.UUID, req model.CriterionUpdateRequest) (*model.Criterion, error) {
	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return updated, nil
}
