package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCriterionNotFound = errors.New("criterion not found")
	ErrDuplicateCode     = errors.New("criterion code already exists")
)

type CriterionRepository struct {
	*pg.DB
}

func NewCriterionRepository(db *pg.DB) *CriterionRepository {
	return &CriterionRepository{
		db,
	}
}

func (r *CriterionRepository) ListActive(ctx context.Context) ([]*model.Criterion, error) {
	var entities []*CriterionEntity
	err := r.Read(ctx).
		Where("ativo = ?", true).
		Order("nome ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toCriterionModels(entities), nil
}

func (r *CriterionRepository) List(ctx context.Context) ([]*model.Criterion, error) {
	var entities []*CriterionEntity
	if err := r.Read(ctx).Order("nome ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toCriterionModels(entities), nil
}

func (r *CriterionRepository) GetByCode(ctx context.Context, code string) (*model.Criterion, error) {
	var entity CriterionEntity
	err := r.Read(ctx).
		Where("codigo = ?", code).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCriterionNotFound
		}
		return nil, err
	}

	return toCriterionModel(&entity), nil
}

func (r *CriterionRepository) Create(ctx context.Context, c *model.Criterion) (*model.Criterion, error) {
	entity := toCriterionEntity(c)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	now := time.Now().UTC()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	entity.UpdatedAt = now

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	return toCriterionModel(entity), nil
}

// Update applies a partial update. The code column is never touched so
// historical transactions keep a stable criterion reference.
func (r *CriterionRepository) Update(ctx context.Context, id uuid.UUID, upd model.CriterionUpdateRequest) (*model.Criterion, error) {
	changes := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if upd.Label != nil {
		changes["nome"] = *upd.Label
	}
	if upd.Description != nil {
		changes["descricao"] = *upd.Description
	}
	if upd.DefaultQuantity != nil {
		changes["quantidade_padrao"] = *upd.DefaultQuantity
	}
	if upd.Active != nil {
		changes["ativo"] = *upd.Active
	}

	result := r.Write(ctx).
		Model(&CriterionEntity{}).
		Where("id = ?", id).
		Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCriterionNotFound
	}

	var entity CriterionEntity
	if err := r.Write(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}

	return toCriterionModel(&entity), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// driver-specific fallbacks: postgres 23505, sqlite "UNIQUE constraint failed"
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "UNIQUE constraint failed")
}
