package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrRedemptionNotFound = errors.New("redemption not found")
)

type RedemptionRepository struct {
	*pg.DB
}

func NewRedemptionRepository(db *pg.DB) *RedemptionRepository {
	return &RedemptionRepository{
		db,
	}
}

func (r *RedemptionRepository) Create(ctx context.Context, batch *model.Redemption) (*model.Redemption, error) {
	entity := toRedemptionEntity(batch)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.RedeemedAt.IsZero() {
		entity.RedeemedAt = time.Now().UTC()
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toRedemptionModel(entity), nil
}

func (r *RedemptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Redemption, error) {
	var entity RedemptionEntity
	err := r.Read(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, err
	}

	return toRedemptionModel(&entity), nil
}

// List returns redemption batches, newest first, optionally scoped to one
// class. Feeds the redemption history screen.
func (r *RedemptionRepository) List(ctx context.Context, classID *uuid.UUID) ([]*model.Redemption, error) {
	q := r.Read(ctx).Model(&RedemptionEntity{})
	if classID != nil {
		q = q.Where("turma_id = ?", *classID)
	}

	var entities []*RedemptionEntity
	if err := q.Order("resgatado_em DESC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toRedemptionModels(entities), nil
}
