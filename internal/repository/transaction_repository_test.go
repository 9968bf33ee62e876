package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTransaction(studentID, classID uuid.UUID, day string, qty uint) *model.Transaction {
	return &model.Transaction{
		StudentID:     studentID,
		ClassID:       classID,
		Date:          date(day),
		CriterionCode: "presenca",
		Quantity:      qty,
		RecordedBy:    uuid.New(),
	}
}

func TestTransactionRepository_InsertMany(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	t.Run("assigns ids, status and created_at", func(t *testing.T) {
		student := uuid.New()
		class := uuid.New()

		created, err := repo.InsertMany(ctx, []*model.Transaction{
			newTransaction(student, class, "2025-03-01", 5),
			newTransaction(student, class, "2025-03-01", 3),
		})
		require.NoError(t, err)
		require.Len(t, created, 2)
		for _, c := range created {
			assert.NotEqual(t, uuid.Nil, c.ID)
			assert.Equal(t, model.StatusActive, c.Status)
			assert.False(t, c.CreatedAt.IsZero())
			assert.Nil(t, c.RedemptionID)
		}
		assert.NotEqual(t, created[0].ID, created[1].ID)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		_, err := repo.InsertMany(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}

func TestTransactionRepository_ListActive(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	studentA := uuid.New()
	studentB := uuid.New()
	classOne := uuid.New()
	classTwo := uuid.New()

	_, err := repo.InsertMany(ctx, []*model.Transaction{
		newTransaction(studentA, classOne, "2025-03-01", 5),
		newTransaction(studentA, classOne, "2025-03-08", 3),
		newTransaction(studentB, classOne, "2025-03-08", 2),
		newTransaction(studentA, classTwo, "2025-03-15", 7),
	})
	require.NoError(t, err)

	t.Run("filter by class", func(t *testing.T) {
		txns, err := repo.ListActive(ctx, model.TransactionFilter{ClassID: &classOne})
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})

	t.Run("filter by student", func(t *testing.T) {
		txns, err := repo.ListActive(ctx, model.TransactionFilter{StudentID: &studentA})
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})

	t.Run("date range is inclusive on both ends", func(t *testing.T) {
		from := date("2025-03-08")
		to := date("2025-03-15")
		txns, err := repo.ListActive(ctx, model.TransactionFilter{DateFrom: &from, DateTo: &to})
		require.NoError(t, err)
		assert.Len(t, txns, 3)
	})

	t.Run("ordered by credit date", func(t *testing.T) {
		txns, err := repo.ListActive(ctx, model.TransactionFilter{ClassID: &classOne})
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.True(t, !txns[0].Date.After(txns[1].Date))
		assert.True(t, !txns[1].Date.After(txns[2].Date))
	})

	t.Run("no matches yields empty, not error", func(t *testing.T) {
		other := uuid.New()
		txns, err := repo.ListActive(ctx, model.TransactionFilter{StudentID: &other})
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}

func TestTransactionRepository_SumActive(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	student := uuid.New()
	class := uuid.New()

	_, err := repo.InsertMany(ctx, []*model.Transaction{
		newTransaction(student, class, "2025-03-01", 5),
		newTransaction(student, class, "2025-03-08", 3),
	})
	require.NoError(t, err)

	t.Run("sums matching quantities", func(t *testing.T) {
		total, err := repo.SumActive(ctx, model.TransactionFilter{StudentID: &student})
		require.NoError(t, err)
		assert.Equal(t, uint(8), total)
	})

	t.Run("no rows means zero", func(t *testing.T) {
		other := uuid.New()
		total, err := repo.SumActive(ctx, model.TransactionFilter{StudentID: &other})
		require.NoError(t, err)
		assert.Equal(t, uint(0), total)
	})

	t.Run("date bounded", func(t *testing.T) {
		from := date("2025-03-05")
		total, err := repo.SumActive(ctx, model.TransactionFilter{StudentID: &student, DateFrom: &from})
		require.NoError(t, err)
		assert.Equal(t, uint(3), total)
	})
}

func TestTransactionRepository_MarkRedeemed(t *testing.T) {
	ctx := context.Background()

	t.Run("flips only the class's active rows", func(t *testing.T) {
		db := setupTestDB(t).DB
		repo := NewTransactionRepository(db)

		classOne := uuid.New()
		classTwo := uuid.New()
		student := uuid.New()

		_, err := repo.InsertMany(ctx, []*model.Transaction{
			newTransaction(student, classOne, "2025-03-01", 5),
			newTransaction(student, classOne, "2025-03-08", 3),
			newTransaction(student, classTwo, "2025-03-08", 2),
		})
		require.NoError(t, err)

		redemptionID := uuid.New()
		affected, err := repo.MarkRedeemed(ctx, classOne, redemptionID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(2), affected)

		// class one has nothing active left
		remaining, err := repo.ListActive(ctx, model.TransactionFilter{ClassID: &classOne})
		require.NoError(t, err)
		assert.Empty(t, remaining)

		// the other class is untouched
		other, err := repo.ListActive(ctx, model.TransactionFilter{ClassID: &classTwo})
		require.NoError(t, err)
		assert.Len(t, other, 1)
	})

	t.Run("redeemed rows carry the redemption id", func(t *testing.T) {
		tdb := setupTestDB(t)
		repo := NewTransactionRepository(tdb.DB)

		class := uuid.New()
		_, err := repo.InsertMany(ctx, []*model.Transaction{
			newTransaction(uuid.New(), class, "2025-03-01", 5),
		})
		require.NoError(t, err)

		redemptionID := uuid.New()
		_, err = repo.MarkRedeemed(ctx, class, redemptionID, time.Now().UTC())
		require.NoError(t, err)

		var entities []*TransactionEntity
		require.NoError(t, tdb.rawDB.Where("turma_id = ?", class).Find(&entities).Error)
		require.Len(t, entities, 1)
		assert.Equal(t, string(model.StatusRedeemed), entities[0].Status)
		require.NotNil(t, entities[0].RedemptionID)
		assert.Equal(t, redemptionID, *entities[0].RedemptionID)
	})

	t.Run("second mark affects nothing", func(t *testing.T) {
		db := setupTestDB(t).DB
		repo := NewTransactionRepository(db)

		class := uuid.New()
		_, err := repo.InsertMany(ctx, []*model.Transaction{
			newTransaction(uuid.New(), class, "2025-03-01", 5),
		})
		require.NoError(t, err)

		_, err = repo.MarkRedeemed(ctx, class, uuid.New(), time.Now().UTC())
		require.NoError(t, err)

		affected, err := repo.MarkRedeemed(ctx, class, uuid.New(), time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})

	t.Run("asOf cutoff spares later writes", func(t *testing.T) {
		db := setupTestDB(t).DB
		repo := NewTransactionRepository(db)

		class := uuid.New()
		_, err := repo.InsertMany(ctx, []*model.Transaction{
			newTransaction(uuid.New(), class, "2025-03-01", 5),
		})
		require.NoError(t, err)

		cutoff := time.Now().UTC().Add(-time.Minute)
		affected, err := repo.MarkRedeemed(ctx, class, uuid.New(), cutoff)
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)

		remaining, err := repo.ListActive(ctx, model.TransactionFilter{ClassID: &class})
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
