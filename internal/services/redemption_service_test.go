package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedemptionStore struct {
	mock.Mock
}

func (m *MockRedemptionStore) ListActive(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockRedemptionStore) MarkRedeemed(ctx context.Context, classID, redemptionID uuid.UUID, asOf time.Time) (int64, error) {
	args := m.Called(ctx, classID, redemptionID, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedemptionStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) Create(ctx context.Context, batch *model.Redemption) (*model.Redemption, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Redemption), args.Error(1)
}

func (m *MockRedemptionRepository) List(ctx context.Context, classID *uuid.UUID) ([]*model.Redemption, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Redemption), args.Error(1)
}

type stubLock struct {
	acquired bool
	busy     bool
	released bool
}

func (l *stubLock) Acquire(classID uuid.UUID) (func(), bool, error) {
	if l.busy {
		return nil, false, nil
	}
	l.acquired = true
	return func() { l.released = true }, true, nil
}

func TestRedemptionService_Redeem(t *testing.T) {
	store := new(MockRedemptionStore)
	repo := new(MockRedemptionRepository)
	lock := &stubLock{}
	service := NewRedemptionService(store, repo, lock)
	ctx := context.Background()

	class := uuid.New()
	redeemedBy := uuid.New()
	redemptionID := uuid.New()

	snapshot := []*model.Transaction{
		{ID: uuid.New(), ClassID: class, Quantity: 5},
		{ID: uuid.New(), ClassID: class, Quantity: 3},
	}

	store.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	store.On("ListActive", mock.Anything, mock.MatchedBy(func(f model.TransactionFilter) bool {
		return f.ClassID != nil && *f.ClassID == class
	})).Return(snapshot, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Redemption) bool {
		return b.ClassID == class && b.RedeemedBy == redeemedBy && b.AffectedCount == 2 && b.TotalQuantity == 8
	})).Return(&model.Redemption{ID: redemptionID, ClassID: class, AffectedCount: 2, TotalQuantity: 8}, nil)
	store.On("MarkRedeemed", mock.Anything, class, redemptionID, mock.Anything).Return(int64(2), nil)

	result, err := service.Redeem(ctx, model.RedemptionRequest{ClassID: class, RedeemedBy: redeemedBy})
	require.NoError(t, err)
	assert.Equal(t, redemptionID, result.RedemptionID)
	assert.Equal(t, 2, result.AffectedCount)
	assert.Equal(t, uint(8), result.TotalQuantity)
	assert.True(t, lock.acquired)
	assert.True(t, lock.released)

	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRedemptionService_Redeem_EmptyClassStillRecordsBatch(t *testing.T) {
	store := new(MockRedemptionStore)
	repo := new(MockRedemptionRepository)
	service := NewRedemptionService(store, repo, &stubLock{})
	ctx := context.Background()

	class := uuid.New()
	redemptionID := uuid.New()

	store.On("WithinTransaction", ctx, mock.Anything).Return(nil)
	store.On("ListActive", mock.Anything, mock.Anything).Return([]*model.Transaction{}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Redemption) bool {
		return b.AffectedCount == 0 && b.TotalQuantity == 0
	})).Return(&model.Redemption{ID: redemptionID, ClassID: class}, nil)
	store.On("MarkRedeemed", mock.Anything, class, redemptionID, mock.Anything).Return(int64(0), nil)

	result, err := service.Redeem(ctx, model.RedemptionRequest{ClassID: class, RedeemedBy: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0, result.AffectedCount)
	assert.Equal(t, uint(0), result.TotalQuantity)
	assert.Equal(t, redemptionID, result.RedemptionID)

	repo.AssertExpectations(t)
}

func TestRedemptionService_Redeem_LockContention(t *testing.T) {
	store := new(MockRedemptionStore)
	repo := new(MockRedemptionRepository)
	service := NewRedemptionService(store, repo, &stubLock{busy: true})
	ctx := context.Background()

	_, err := service.Redeem(ctx, model.RedemptionRequest{ClassID: uuid.New(), RedeemedBy: uuid.New()})
	assert.ErrorIs(t, err, ErrRedeemInProgress)

	store.AssertNotCalled(t, "WithinTransaction", mock.Anything, mock.Anything)
}

func TestRedemptionService_Redeem_SnapshotMismatchRollsBack(t *testing.T) {
	store := new(MockRedemptionStore)
	repo := new(MockRedemptionRepository)
	service := NewRedemptionService(store, repo, &stubLock{})
	ctx := context.Background()

	class := uuid.New()
	redemptionID := uuid.New()

	store.On("WithinTransaction", ctx, mock.Anything).Return(nil)
	store.On("ListActive", mock.Anything, mock.Anything).Return([]*model.Transaction{
		{ID: uuid.New(), ClassID: class, Quantity: 5},
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).
		Return(&model.Redemption{ID: redemptionID, ClassID: class}, nil)
	// a concurrent launch slipped in: two rows flipped, one counted
	store.On("MarkRedeemed", mock.Anything, class, redemptionID, mock.Anything).Return(int64(2), nil)

	_, err := service.Redeem(ctx, model.RedemptionRequest{ClassID: class, RedeemedBy: uuid.New()})
	assert.ErrorIs(t, err, ErrRedeemConflict)
}

func TestRedemptionService_Redeem_Validation(t *testing.T) {
	service := NewRedemptionService(new(MockRedemptionStore), new(MockRedemptionRepository), nil)
	ctx := context.Background()

	_, err := service.Redeem(ctx, model.RedemptionRequest{RedeemedBy: uuid.New()})
	assert.ErrorIs(t, err, model.ErrMissingClassID)

	_, err = service.Redeem(ctx, model.RedemptionRequest{ClassID: uuid.New()})
	assert.ErrorIs(t, err, model.ErrMissingRedeemedBy)
}

func TestRedemptionService_Redeem_StorageFailureSurfaces(t *testing.T) {
	store := new(MockRedemptionStore)
	repo := new(MockRedemptionRepository)
	service := NewRedemptionService(store, repo, &stubLock{})
	ctx := context.Background()

	storageErr := errors.New("connection reset")
	store.On("WithinTransaction", ctx, mock.Anything).Return(storageErr)

	_, err := service.Redeem(ctx, model.RedemptionRequest{ClassID: uuid.New(), RedeemedBy: uuid.New()})
	assert.ErrorIs(t, err, storageErr)
}
