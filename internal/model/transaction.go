package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	// StatusActive marks a transaction that still counts towards balances.
	StatusActive TransactionStatus = "ativa"
	// StatusRedeemed marks a transaction closed out by a redemption batch.
	StatusRedeemed TransactionStatus = "resgatada"
)

// Transaction is a single drácma credit. Everything except the status
// (and the redemption back-reference) is immutable after insert.
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	StudentID     uuid.UUID         `json:"aluno_id"`
	ClassID       uuid.UUID         `json:"turma_id"`
	Date          time.Time         `json:"data"`
	CriterionCode string            `json:"criterio"`
	Quantity      uint              `json:"quantidade"`
	Description   string            `json:"descricao,omitempty"`
	RecordedBy    uuid.UUID         `json:"registrado_por"`
	Status        TransactionStatus `json:"status"`
	RedemptionID  *uuid.UUID        `json:"resgate_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TransactionFilter narrows active-transaction queries. Date bounds are
// inclusive on both ends and compare against the credit date, not the
// write timestamp.
type TransactionFilter struct {
	ClassID   *uuid.UUID
	StudentID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// BatchEntry is one (student, quantity) pair of a launch request. Quantity
// is signed on the wire so zero and negative entries can be received and
// dropped instead of failing the whole batch.
type BatchEntry struct {
	StudentID uuid.UUID `json:"aluno_id"`
	Quantity  int       `json:"quantidade"`
}

type BatchCreateRequest struct {
	ClassID       uuid.UUID    `json:"turma_id"`
	Date          time.Time    `json:"data"`
	CriterionCode string       `json:"criterio"`
	Description   string       `json:"descricao"`
	RecordedBy    uuid.UUID    `json:"registrado_por"`
	Entries       []BatchEntry `json:"transacoes"`
}

func (r BatchCreateRequest) Validate() error {
	if r.ClassID == uuid.Nil {
		return ErrMissingClassID
	}
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if r.CriterionCode == "" {
		return ErrMissingCriterion
	}
	if r.RecordedBy == uuid.Nil {
		return ErrMissingRecordedBy
	}
	return nil
}

// BatchResult reports what a launch actually persisted. A batch whose
// entries were all filtered out yields CreatedCount 0 and no ids.
type BatchResult struct {
	CreatedCount   int         `json:"criadas"`
	TotalQuantity  uint        `json:"total"`
	TransactionIDs []uuid.UUID `json:"transacao_ids"`
}

// ClassSummary aggregates the active transactions of a class. PerStudent
// holds only students with at least one active transaction.
type ClassSummary struct {
	ClassID      uuid.UUID          `json:"turma_id"`
	Total        uint               `json:"total_turma"`
	PerStudent   map[uuid.UUID]uint `json:"resumo_por_aluno"`
	Transactions []*Transaction     `json:"transacoes"`
}

// StudentStatement is a student's active balance plus the transactions
// behind it.
type StudentStatement struct {
	StudentID    uuid.UUID      `json:"aluno_id"`
	Balance      uint           `json:"saldo"`
	Transactions []*Transaction `json:"transacoes"`
}
