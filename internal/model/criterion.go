package model

import (
	"time"

	"github.com/google/uuid"
)

// Criterion is a configured crediting category ("presenca", "tarefa", ...).
// Inactive criteria stay valid as labels on historical transactions but may
// not be used in new batches.
type Criterion struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"codigo"`
	Label           string    `json:"nome"`
	Description     string    `json:"descricao,omitempty"`
	DefaultQuantity uint      `json:"quantidade_padrao"`
	Active          bool      `json:"ativo"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CriterionCreateRequest struct {
	Code            string `json:"codigo"`
	Label           string `json:"nome"`
	Description     string `json:"descricao"`
	DefaultQuantity uint   `json:"quantidade_padrao"`
	Active          *bool  `json:"ativo"`
}

func (r CriterionCreateRequest) Validate() error {
	if r.Code == "" {
		return ErrMissingCode
	}
	if r.Label == "" {
		return ErrMissingLabel
	}
	return nil
}

// CriterionUpdateRequest carries partial updates; nil fields are left
// untouched. The code itself is immutable so historical transactions keep
// a stable label reference.
type CriterionUpdateRequest struct {
	Label           *string `json:"nome"`
	Description     *string `json:"descricao"`
	DefaultQuantity *uint   `json:"quantidade_padrao"`
	Active          *bool   `json:"ativo"`
}
