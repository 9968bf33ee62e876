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
	// ErrEmptyBatch is returned when InsertMany receives nothing to write.
	ErrEmptyBatch = errors.New("empty transaction batch")
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// InsertMany persists a batch of transactions as one multi-row insert.
// Either every row lands or none does. Ids missing on input are assigned
// here so the write works on backends without a uuid default.
func (r *TransactionRepository) InsertMany(ctx context.Context, txns []*model.Transaction) ([]*model.Transaction, error) {
	if len(txns) == 0 {
		return nil, ErrEmptyBatch
	}

	now := time.Now().UTC()
	entities := make([]*TransactionEntity, len(txns))
	for i, m := range txns {
		e := toTransactionEntity(m)
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.Status == "" {
			e.Status = string(model.StatusActive)
		}
		entities[i] = e
	}

	if err := r.Write(ctx).Create(&entities).Error; err != nil {
		return nil, err
	}

	return toTransactionModels(entities), nil
}

// ListActive returns the active transactions matching the filter, ordered
// by credit date then write time.
func (r *TransactionRepository) ListActive(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error) {
	q := r.activeQuery(r.Read(ctx), f)

	var entities []*TransactionEntity
	if err := q.Order("data ASC, created_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toTransactionModels(entities), nil
}

// SumActive returns the sum of quantities over active transactions matching
// the filter. No matching rows means 0, not an error.
func (r *TransactionRepository) SumActive(ctx context.Context, f model.TransactionFilter) (uint, error) {
	q := r.activeQuery(r.Read(ctx), f)

	var total int64
	if err := q.Select("COALESCE(SUM(quantidade), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}

	return uint(total), nil
}

// MarkRedeemed flips every active transaction of the class written at or
// before asOf to redeemed, back-referencing the redemption batch. Returns
// how many rows were flipped.
func (r *TransactionRepository) MarkRedeemed(ctx context.Context, classID, redemptionID uuid.UUID, asOf time.Time) (int64, error) {
	q := r.Write(ctx).
		Model(&TransactionEntity{}).
		Where("turma_id = ?", classID).
		Where("status = ?", string(model.StatusActive))

	if !asOf.IsZero() {
		q = q.Where("created_at <= ?", asOf)
	}

	result := q.Updates(map[string]interface{}{
		"status":     string(model.StatusRedeemed),
		"resgate_id": redemptionID,
	})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *TransactionRepository) activeQuery(db *gorm.DB, f model.TransactionFilter) *gorm.DB {
	q := db.Model(&TransactionEntity{}).
		Where("status = ?", string(model.StatusActive))

	if f.ClassID != nil {
		q = q.Where("turma_id = ?", *f.ClassID)
	}
	if f.StudentID != nil {
		q = q.Where("aluno_id = ?", *f.StudentID)
	}
	if f.DateFrom != nil {
		q = q.Where("data >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("data <= ?", *f.DateTo)
	}

	return q
}
