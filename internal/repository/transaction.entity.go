package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
)

type TransactionEntity struct {
	ID            uuid.UUID  `db:"id"             gorm:"primaryKey;type:uuid;column:id"`
	StudentID     uuid.UUID  `db:"aluno_id"       gorm:"column:aluno_id;type:uuid;not null;index"`
	ClassID       uuid.UUID  `db:"turma_id"       gorm:"column:turma_id;type:uuid;not null;index"`
	Date          time.Time  `db:"data"           gorm:"column:data;not null;index"`
	CriterionCode string     `db:"criterio"       gorm:"column:criterio;not null"`
	Quantity      uint       `db:"quantidade"     gorm:"column:quantidade;not null"`
	Description   string     `db:"descricao"      gorm:"column:descricao"`
	RecordedBy    uuid.UUID  `db:"registrado_por" gorm:"column:registrado_por;type:uuid;not null"`
	Status        string     `db:"status"         gorm:"column:status;not null;default:ativa;index"`
	RedemptionID  *uuid.UUID `db:"resgate_id"     gorm:"column:resgate_id;type:uuid;index"`
	CreatedAt     time.Time  `db:"created_at"     gorm:"column:created_at;not null"`
}

func (TransactionEntity) TableName() string {
	return "dracmas_transacoes"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:            m.ID,
		StudentID:     m.StudentID,
		ClassID:       m.ClassID,
		Date:          m.Date,
		CriterionCode: m.CriterionCode,
		Quantity:      m.Quantity,
		Description:   m.Description,
		RecordedBy:    m.RecordedBy,
		Status:        string(m.Status),
		RedemptionID:  m.RedemptionID,
		CreatedAt:     m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:            e.ID,
		StudentID:     e.StudentID,
		ClassID:       e.ClassID,
		Date:          e.Date,
		CriterionCode: e.CriterionCode,
		Quantity:      e.Quantity,
		Description:   e.Description,
		RecordedBy:    e.RecordedBy,
		Status:        model.TransactionStatus(e.Status),
		RedemptionID:  e.RedemptionID,
		CreatedAt:     e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
