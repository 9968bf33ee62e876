package model

import (
	"time"

	"github.com/google/uuid"
)

// Redemption records one point-in-time closing of a class's active balance.
// Immutable after creation, even when it covered zero transactions.
type Redemption struct {
	ID            uuid.UUID `json:"id"`
	ClassID       uuid.UUID `json:"turma_id"`
	RedeemedBy    uuid.UUID `json:"resgatado_por"`
	RedeemedAt    time.Time `json:"resgatado_em"`
	AffectedCount int       `json:"count"`
	TotalQuantity uint      `json:"total"`
}

type RedemptionRequest struct {
	ClassID    uuid.UUID `json:"turma_id"`
	RedeemedBy uuid.UUID `json:"resgatado_por"`
}

func (r RedemptionRequest) Validate() error {
	if r.ClassID == uuid.Nil {
		return ErrMissingClassID
	}
	if r.RedeemedBy == uuid.Nil {
		return ErrMissingRedeemedBy
	}
	return nil
}

type RedemptionResult struct {
	RedemptionID  uuid.UUID `json:"resgate_id"`
	AffectedCount int       `json:"count"`
	TotalQuantity uint      `json:"total"`
}
