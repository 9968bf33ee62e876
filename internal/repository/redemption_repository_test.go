package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedemptionRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewRedemptionRepository(db)
	ctx := context.Background()

	class := uuid.New()
	created, err := repo.Create(ctx, &model.Redemption{
		ClassID:       class,
		RedeemedBy:    uuid.New(),
		AffectedCount: 2,
		TotalQuantity: 8,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.RedeemedAt.IsZero())

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, class, got.ClassID)
	assert.Equal(t, 2, got.AffectedCount)
	assert.Equal(t, uint(8), got.TotalQuantity)
}

func TestRedemptionRepository_Get_NotFound(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewRedemptionRepository(db)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRedemptionNotFound)
}

func TestRedemptionRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewRedemptionRepository(db)
	ctx := context.Background()

	classOne := uuid.New()
	classTwo := uuid.New()

	for _, class := range []uuid.UUID{classOne, classOne, classTwo} {
		_, err := repo.Create(ctx, &model.Redemption{
			ClassID:    class,
			RedeemedBy: uuid.New(),
		})
		require.NoError(t, err)
	}

	t.Run("all classes", func(t *testing.T) {
		items, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("scoped to one class", func(t *testing.T) {
		items, err := repo.List(ctx, &classOne)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}
