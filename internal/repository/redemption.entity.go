package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
)

type RedemptionEntity struct {
	ID            uuid.UUID `db:"id"            gorm:"primaryKey;type:uuid;column:id"`
	ClassID       uuid.UUID `db:"turma_id"      gorm:"column:turma_id;type:uuid;not null;index"`
	RedeemedBy    uuid.UUID `db:"resgatado_por" gorm:"column:resgatado_por;type:uuid;not null"`
	RedeemedAt    time.Time `db:"resgatado_em"  gorm:"column:resgatado_em;not null"`
	AffectedCount int       `db:"count"         gorm:"column:count;not null"`
	TotalQuantity uint      `db:"total"         gorm:"column:total;not null"`
}

func (RedemptionEntity) TableName() string {
	return "dracmas_resgates"
}

func toRedemptionEntity(m *model.Redemption) *RedemptionEntity {
	if m == nil {
		return nil
	}
	return &RedemptionEntity{
		ID:            m.ID,
		ClassID:       m.ClassID,
		RedeemedBy:    m.RedeemedBy,
		RedeemedAt:    m.RedeemedAt,
		AffectedCount: m.AffectedCount,
		TotalQuantity: m.TotalQuantity,
	}
}

func toRedemptionModel(e *RedemptionEntity) *model.Redemption {
	if e == nil {
		return nil
	}
	return &model.Redemption{
		ID:            e.ID,
		ClassID:       e.ClassID,
		RedeemedBy:    e.RedeemedBy,
		RedeemedAt:    e.RedeemedAt,
		AffectedCount: e.AffectedCount,
		TotalQuantity: e.TotalQuantity,
	}
}

func toRedemptionModels(entities []*RedemptionEntity) []*model.Redemption {
	if entities == nil {
		return nil
	}
	models := make([]*model.Redemption, len(entities))
	for i, e := range entities {
		models[i] = toRedemptionModel(e)
	}
	return models
}
