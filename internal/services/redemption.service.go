package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/pkg/logger"
	"github.com/ibuc/dracmas-service/pkg/prom"
)

var (
	// ErrRedeemInProgress signals lock contention: another redemption of
	// the same class is running. The caller should retry shortly.
	ErrRedeemInProgress = errors.New("redemption already in progress for this class")
	// ErrRedeemConflict signals that a batch landed between the snapshot
	// read and the flip. The transaction was rolled back; retrying is safe.
	ErrRedeemConflict = errors.New("concurrent launch detected during redemption")
)

type RedemptionRepository interface {
	Create(ctx context.Context, batch *model.Redemption) (*model.Redemption, error)
	List(ctx context.Context, classID *uuid.UUID) ([]*model.Redemption, error)
}

type RedemptionStore interface {
	ListActive(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error)
	MarkRedeemed(ctx context.Context, classID, redemptionID uuid.UUID, asOf time.Time) (int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ClassLocker interface {
	Acquire(classID uuid.UUID) (release func(), ok bool, err error)
}

// RedemptionService performs the read-snapshot-then-flip state transition
// that closes out a class's active balance. The per-class lock serializes
// redemptions; the surrounding database transaction makes the batch row
// and the status flip land together or not at all.
type RedemptionService struct {
	store          RedemptionStore
	redemptionRepo RedemptionRepository
	lock           ClassLocker
}

func NewRedemptionService(store RedemptionStore, redemptionRepo RedemptionRepository, lock ClassLocker) *RedemptionService {
	return &RedemptionService{
		store:          store,
		redemptionRepo: redemptionRepo,
		lock:           lock,
	}
}

func (s *RedemptionService) Redeem(ctx context.Context, req model.RedemptionRequest) (*model.RedemptionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.lock != nil {
		release, ok, err := s.lock.Acquire(req.ClassID)
		if err != nil {
			return nil, fmt.Errorf("acquire class lock: %w", err)
		}
		if !ok {
			return nil, ErrRedeemInProgress
		}
		defer release()
	}

	start := time.Now()
	var result *model.RedemptionResult
	err := s.store.WithinTransaction(ctx, func(ctx context.Context) error {
		snapshot, err := s.store.ListActive(ctx, model.TransactionFilter{ClassID: &req.ClassID})
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		asOf := time.Now().UTC()

		var total uint
		for _, t := range snapshot {
			total += t.Quantity
		}

		// A redemption with nothing to redeem still gets a batch row:
		// the event itself is part of the audit trail.
		batch, err := s.redemptionRepo.Create(ctx, &model.Redemption{
			ClassID:       req.ClassID,
			RedeemedBy:    req.RedeemedBy,
			RedeemedAt:    asOf,
			AffectedCount: len(snapshot),
			TotalQuantity: total,
		})
		if err != nil {
			return fmt.Errorf("create redemption batch: %w", err)
		}

		affected, err := s.store.MarkRedeemed(ctx, req.ClassID, batch.ID, asOf)
		if err != nil {
			return fmt.Errorf("mark redeemed: %w", err)
		}
		if affected != int64(len(snapshot)) {
			// a launch slipped in between snapshot and flip; roll the
			// whole thing back rather than redeem rows we never counted
			return ErrRedeemConflict
		}

		result = &model.RedemptionResult{
			RedemptionID:  batch.ID,
			AffectedCount: len(snapshot),
			TotalQuantity: total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncCounter(prom.SystemDracmas, prom.MetricRedemptions)
	prom.AddCounter(prom.SystemDracmas, prom.MetricPointsRedeemed, float64(result.TotalQuantity))
	prom.AddHistogram(prom.SystemDracmas, prom.MetricRedeemDuration, time.Since(start).Seconds())
	logger.Info("dracmas redeemed",
		"turma_id", req.ClassID,
		"resgate_id", result.RedemptionID,
		"count", result.AffectedCount,
		"total", result.TotalQuantity,
	)

	return result, nil
}

// History lists past redemption batches, optionally scoped to one class.
func (s *RedemptionService) History(ctx context.Context, classID *uuid.UUID) ([]*model.Redemption, error) {
	return s.redemptionRepo.List(ctx, classID)
}
