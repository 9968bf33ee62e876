package model

import "errors"

var (
	ErrMissingClassID    = errors.New("turma_id is required")
	ErrMissingDate       = errors.New("data is required")
	ErrMissingCriterion  = errors.New("criterio is required")
	ErrMissingRecordedBy = errors.New("registrado_por is required")
	ErrMissingStudentID  = errors.New("aluno_id is required")
	ErrMissingRedeemedBy = errors.New("resgatado_por is required")
	ErrMissingCode       = errors.New("codigo is required")
	ErrMissingLabel      = errors.New("nome is required")
)
