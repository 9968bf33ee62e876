package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/internal/repository"
	"github.com/ibuc/dracmas-service/pkg/logger"
	"github.com/ibuc/dracmas-service/pkg/prom"
)

var (
	ErrUnknownCriterion  = errors.New("unknown criterion code")
	ErrInactiveCriterion = errors.New("criterion is not active")
)

type TransactionRepository interface {
	InsertMany(ctx context.Context, txns []*model.Transaction) ([]*model.Transaction, error)
	ListActive(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, error)
	SumActive(ctx context.Context, f model.TransactionFilter) (uint, error)
}

type CriterionReader interface {
	GetByCode(ctx context.Context, code string) (*model.Criterion, error)
}

// LedgerService owns the batch-launch write path and the read-only
// aggregations. Balances are always derived from the store on every call;
// nothing is cached between requests.
type LedgerService struct {
	txRepo   TransactionRepository
	critRepo CriterionReader
}

func NewLedgerService(txRepo TransactionRepository, critRepo CriterionReader) *LedgerService {
	return &LedgerService{
		txRepo:   txRepo,
		critRepo: critRepo,
	}
}

// LaunchBatch validates and commits one batch of credits as a unit.
// Zero and negative quantities are dropped silently, mirroring the launch
// screen's "only non-empty entries count" rule; a batch whose entries are
// all dropped is a valid no-op, not an error.
func (s *LedgerService) LaunchBatch(ctx context.Context, req model.BatchCreateRequest) (*model.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	crit, err := s.critRepo.GetByCode(ctx, req.CriterionCode)
	if err != nil {
		if errors.Is(err, repository.ErrCriterionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCriterion, req.CriterionCode)
		}
		return nil, fmt.Errorf("lookup criterion: %w", err)
	}
	if !crit.Active {
		return nil, fmt.Errorf("%w: %s", ErrInactiveCriterion, req.CriterionCode)
	}

	txns := make([]*model.Transaction, 0, len(req.Entries))
	for _, e := range req.Entries {
		if e.Quantity <= 0 {
			continue
		}
		txns = append(txns, &model.Transaction{
			StudentID:     e.StudentID,
			ClassID:       req.ClassID,
			Date:          req.Date,
			CriterionCode: crit.Code,
			Quantity:      uint(e.Quantity),
			Description:   req.Description,
			RecordedBy:    req.RecordedBy,
			Status:        model.StatusActive,
		})
	}

	if len(txns) == 0 {
		return &model.BatchResult{}, nil
	}

	created, err := s.txRepo.InsertMany(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("launch batch: %w", err)
	}

	result := &model.BatchResult{
		CreatedCount:   len(created),
		TransactionIDs: make([]uuid.UUID, len(created)),
	}
	for i, t := range created {
		result.TransactionIDs[i] = t.ID
		result.TotalQuantity += t.Quantity
	}

	prom.IncCounter(prom.SystemDracmas, prom.MetricBatchesLaunched)
	prom.AddCounter(prom.SystemDracmas, prom.MetricPointsCredited, float64(result.TotalQuantity))
	logger.Info("dracmas batch launched",
		"turma_id", req.ClassID,
		"criterio", crit.Code,
		"criadas", result.CreatedCount,
		"total", result.TotalQuantity,
	)

	return result, nil
}

// StudentBalance sums the student's active transactions, optionally
// bounded by an inclusive date range. No transactions means balance 0.
func (s *LedgerService) StudentBalance(ctx context.Context, studentID uuid.UUID, from, to *time.Time) (uint, error) {
	return s.txRepo.SumActive(ctx, model.TransactionFilter{
		StudentID: &studentID,
		DateFrom:  from,
		DateTo:    to,
	})
}

// StudentStatement returns the balance together with the transactions
// behind it, oldest first.
func (s *LedgerService) StudentStatement(ctx context.Context, studentID uuid.UUID, from, to *time.Time) (*model.StudentStatement, error) {
	txns, err := s.txRepo.ListActive(ctx, model.TransactionFilter{
		StudentID: &studentID,
		DateFrom:  from,
		DateTo:    to,
	})
	if err != nil {
		return nil, err
	}

	st := &model.StudentStatement{
		StudentID:    studentID,
		Transactions: txns,
	}
	for _, t := range txns {
		st.Balance += t.Quantity
	}

	return st, nil
}

// ClassSummary aggregates the class's active transactions. PerStudent only
// carries students with at least one transaction; the ledger does not own
// roster membership and never invents zero rows.
func (s *LedgerService) ClassSummary(ctx context.Context, classID uuid.UUID, from, to *time.Time) (*model.ClassSummary, error) {
	txns, err := s.txRepo.ListActive(ctx, model.TransactionFilter{
		ClassID:  &classID,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		return nil, err
	}

	summary := &model.ClassSummary{
		ClassID:      classID,
		PerStudent:   make(map[uuid.UUID]uint),
		Transactions: txns,
	}
	for _, t := range txns {
		summary.Total += t.Quantity
		summary.PerStudent[t.StudentID] += t.Quantity
	}

	return summary, nil
}

// Total returns the sum of all active points across every class.
func (s *LedgerService) Total(ctx context.Context) (uint, error) {
	return s.txRepo.SumActive(ctx, model.TransactionFilter{})
}
