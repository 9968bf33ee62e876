package handlers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/auth"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/internal/repository"
	xhttp "github.com/ibuc/dracmas-service/pkg/http"
)

type CriterionService interface {
	ListActive(ctx context.Context) ([]*model.Criterion, error)
	List(ctx context.Context) ([]*model.Criterion, error)
	Create(ctx context.Context, req model.CriterionCreateRequest) (*model.Criterion, error)
	Update(ctx context.Context, id uuid.UUID, req model.CriterionUpdateRequest) (*model.Criterion, error)
}

type CriteriaHandler struct {
	svc CriterionService
}

func NewCriteriaHandler(svc CriterionService) *CriteriaHandler {
	return &CriteriaHandler{
		svc: svc,
	}
}

func RegisterCriteriaRoutes(e *router.Group, h *CriteriaHandler) {
	e.GET("/dracmas/criterios", auth.Require(auth.CanView, h.ListCriteria))
	e.POST("/dracmas/criterios", auth.Require(auth.CanConfigure, h.CreateCriterion))
	e.PUT("/dracmas/criterios/{id}", auth.Require(auth.CanConfigure, h.UpdateCriterion))
}

// ListCriteria returns active criteria; ?todos=1 includes inactive ones
// (the settings screen needs them, the launch screen does not).
func (h *CriteriaHandler) ListCriteria(ctx *xhttp.RequestCtx) {
	var (
		criteria []*model.Criterion
		err      error
	)
	if query(ctx, "todos") == "1" {
		criteria, err = h.svc.List(ctx)
	} else {
		criteria, err = h.svc.ListActive(ctx)
	}
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, criteria)
}

func (h *CriteriaHandler) CreateCriterion(ctx *xhttp.RequestCtx) {
	var req model.CriterionCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	created, err := h.svc.Create(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			writeError(ctx, 409, "codigo already exists: "+req.Code)
			return
		}
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, created)
}

func (h *CriteriaHandler) UpdateCriterion(ctx *xhttp.RequestCtx) {
	idStr, _ := ctx.UserValue("id").(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(ctx, 400, "invalid criterion id")
		return
	}

	var req model.CriterionUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	updated, err := h.svc.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrCriterionNotFound) {
			writeError(ctx, 404, "criterion not found")
			return
		}
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, updated)
}
