package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/internal/auth"
	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/internal/services"
	xhttp "github.com/ibuc/dracmas-service/pkg/http"
)

type LedgerService interface {
	LaunchBatch(ctx context.Context, req model.BatchCreateRequest) (*model.BatchResult, error)
	StudentBalance(ctx context.Context, studentID uuid.UUID, from, to *time.Time) (uint, error)
	StudentStatement(ctx context.Context, studentID uuid.UUID, from, to *time.Time) (*model.StudentStatement, error)
	ClassSummary(ctx context.Context, classID uuid.UUID, from, to *time.Time) (*model.ClassSummary, error)
	Total(ctx context.Context) (uint, error)
}

type RedemptionService interface {
	Redeem(ctx context.Context, req model.RedemptionRequest) (*model.RedemptionResult, error)
	History(ctx context.Context, classID *uuid.UUID) ([]*model.Redemption, error)
}

type DracmasHandler struct {
	ledger     LedgerService
	redemption RedemptionService
}

func NewDracmasHandler(ledger LedgerService, redemption RedemptionService) *DracmasHandler {
	return &DracmasHandler{
		ledger:     ledger,
		redemption: redemption,
	}
}

func RegisterDracmasRoutes(e *router.Group, h *DracmasHandler) {
	e.POST("/dracmas/lancar-lote", auth.Require(auth.CanLaunch, h.LaunchBatch))
	e.GET("/dracmas/saldo", auth.Require(auth.CanView, h.StudentBalance))
	e.GET("/dracmas/por-aluno", auth.Require(auth.CanView, h.StudentStatement))
	e.GET("/dracmas/por-turma", auth.Require(auth.CanView, h.ClassSummary))
	e.GET("/dracmas/total", auth.Require(auth.CanView, h.Total))
	e.POST("/dracmas/resgatar", auth.Require(auth.CanRedeem, h.Redeem))
	e.GET("/dracmas/resgates", auth.Require(auth.CanView, h.RedemptionHistory))
}

type launchBatchRequest struct {
	ClassID       string             `json:"turma_id"`
	Date          string             `json:"data"`
	CriterionCode string             `json:"criterio"`
	Description   string             `json:"descricao"`
	RecordedBy    string             `json:"registrado_por"`
	Entries       []launchBatchEntry `json:"transacoes"`
}

type launchBatchEntry struct {
	StudentID string `json:"aluno_id"`
	Quantity  int    `json:"quantidade"`
}

type balanceResponse struct {
	StudentID string `json:"aluno_id"`
	Balance   uint   `json:"saldo"`
}

type totalResponse struct {
	Total uint `json:"total"`
}

type redeemRequest struct {
	ClassID    string `json:"turma_id"`
	RedeemedBy string `json:"resgatado_por"`
}

type redemptionListResponse struct {
	Items []*model.Redemption `json:"items"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *DracmasHandler) LaunchBatch(ctx *xhttp.RequestCtx) {
	var req launchBatchRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		writeError(ctx, 400, "invalid turma_id")
		return
	}
	recordedBy, err := uuid.Parse(req.RecordedBy)
	if err != nil {
		writeError(ctx, 400, "invalid registrado_por")
		return
	}
	date, err := parseTime(req.Date)
	if err != nil {
		writeError(ctx, 400, "invalid data")
		return
	}

	p := model.BatchCreateRequest{
		ClassID:       classID,
		Date:          date,
		CriterionCode: req.CriterionCode,
		Description:   req.Description,
		RecordedBy:    recordedBy,
	}
	for _, e := range req.Entries {
		studentID, err := uuid.Parse(e.StudentID)
		if err != nil {
			writeError(ctx, 400, "invalid aluno_id: "+e.StudentID)
			return
		}
		p.Entries = append(p.Entries, model.BatchEntry{
			StudentID: studentID,
			Quantity:  e.Quantity,
		})
	}

	result, err := h.ledger.LaunchBatch(ctx, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, result)
}

func (h *DracmasHandler) StudentBalance(ctx *xhttp.RequestCtx) {
	studentID, err := uuid.Parse(query(ctx, "aluno_id"))
	if err != nil {
		writeError(ctx, 400, "invalid aluno_id")
		return
	}
	from, to, err := dateRange(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	balance, err := h.ledger.StudentBalance(ctx, studentID, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, balanceResponse{StudentID: studentID.String(), Balance: balance})
}

func (h *DracmasHandler) StudentStatement(ctx *xhttp.RequestCtx) {
	studentID, err := uuid.Parse(query(ctx, "aluno_id"))
	if err != nil {
		writeError(ctx, 400, "invalid aluno_id")
		return
	}
	from, to, err := dateRange(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	statement, err := h.ledger.StudentStatement(ctx, studentID, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, statement)
}

func (h *DracmasHandler) ClassSummary(ctx *xhttp.RequestCtx) {
	classID, err := uuid.Parse(query(ctx, "turma_id"))
	if err != nil {
		writeError(ctx, 400, "invalid turma_id")
		return
	}
	from, to, err := dateRange(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	summary, err := h.ledger.ClassSummary(ctx, classID, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

func (h *DracmasHandler) Total(ctx *xhttp.RequestCtx) {
	total, err := h.ledger.Total(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, totalResponse{Total: total})
}

func (h *DracmasHandler) Redeem(ctx *xhttp.RequestCtx) {
	var req redeemRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	classID, err := uuid.Parse(req.ClassID)
	if err != nil {
		writeError(ctx, 400, "invalid turma_id")
		return
	}
	redeemedBy, err := uuid.Parse(req.RedeemedBy)
	if err != nil {
		writeError(ctx, 400, "invalid resgatado_por")
		return
	}

	result, err := h.redemption.Redeem(ctx, model.RedemptionRequest{
		ClassID:    classID,
		RedeemedBy: redeemedBy,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, result)
}

func (h *DracmasHandler) RedemptionHistory(ctx *xhttp.RequestCtx) {
	var classID *uuid.UUID
	if v := query(ctx, "turma_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(ctx, 400, "invalid turma_id")
			return
		}
		classID = &id
	}

	items, err := h.redemption.History(ctx, classID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, redemptionListResponse{Items: items})
}

/* --------------------------------- Helpers ----------------------------------- */

// writeServiceError maps service errors to wire responses: validation
// failures name the offending field, contention maps to 409/retry, and
// anything else is a generic storage failure with no partial state exposed.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownCriterion),
		errors.Is(err, services.ErrInactiveCriterion):
		writeError(ctx, 422, err.Error())
	case errors.Is(err, model.ErrMissingClassID),
		errors.Is(err, model.ErrMissingDate),
		errors.Is(err, model.ErrMissingCriterion),
		errors.Is(err, model.ErrMissingRecordedBy),
		errors.Is(err, model.ErrMissingStudentID),
		errors.Is(err, model.ErrMissingRedeemedBy),
		errors.Is(err, model.ErrMissingCode),
		errors.Is(err, model.ErrMissingLabel):
		writeError(ctx, 400, err.Error())
	case errors.Is(err, services.ErrRedeemInProgress),
		errors.Is(err, services.ErrRedeemConflict):
		writeError(ctx, 409, err.Error())
	default:
		writeError(ctx, 500, "operação falhou, tente novamente")
	}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func dateRange(ctx *xhttp.RequestCtx) (from, to *time.Time, err error) {
	if v := query(ctx, "inicio"); v != "" {
		t, e := parseTime(v)
		if e != nil {
			return nil, nil, errors.New("invalid inicio")
		}
		from = &t
	}
	if v := query(ctx, "fim"); v != "" {
		t, e := parseTime(v)
		if e != nil {
			return nil, nil, errors.New("invalid fim")
		}
		to = &t
	}
	return from, to, nil
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
