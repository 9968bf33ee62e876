package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
)

type CriterionEntity struct {
	ID              uuid.UUID `db:"id"                gorm:"primaryKey;type:uuid;column:id"`
	Code            string    `db:"codigo"            gorm:"column:codigo;not null;uniqueIndex"`
	Label           string    `db:"nome"              gorm:"column:nome;not null"`
	Description     string    `db:"descricao"         gorm:"column:descricao"`
	DefaultQuantity uint      `db:"quantidade_padrao" gorm:"column:quantidade_padrao;not null;default:1"`
	Active          bool      `db:"ativo"             gorm:"column:ativo;not null;default:true"`
	CreatedAt       time.Time `db:"created_at"        gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `db:"updated_at"        gorm:"column:updated_at;not null"`
}

func (CriterionEntity) TableName() string {
	return "dracmas_criterios"
}

func toCriterionEntity(m *model.Criterion) *CriterionEntity {
	if m == nil {
		return nil
	}
	return &CriterionEntity{
		ID:              m.ID,
		Code:            m.Code,
		Label:           m.Label,
		Description:     m.Description,
		DefaultQuantity: m.DefaultQuantity,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toCriterionModel(e *CriterionEntity) *model.Criterion {
	if e == nil {
		return nil
	}
	return &model.Criterion{
		ID:              e.ID,
		Code:            e.Code,
		Label:           e.Label,
		Description:     e.Description,
		DefaultQuantity: e.DefaultQuantity,
		Active:          e.Active,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toCriterionModels(entities []*CriterionEntity) []*model.Criterion {
	if entities == nil {
		return nil
	}
	models := make([]*model.Criterion, len(entities))
	for i, e := range entities {
		models[i] = toCriterionModel(e)
	}
	return models
}
