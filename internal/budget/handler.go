package budget

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurum-erp/aurum-erp/internal/platform/httpx"
)

// Handler wires budget JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", h.listByYear)
		r.Post("/", h.create)
		r.Post("/generate", h.generate)
		r.Get("/{id}", h.get)
		r.Post("/{id}/lines", h.addLine)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/revisions", h.createRevision)
		r.Get("/{id}/variance", h.variance)
		r.Get("/{id}/variance/export", h.exportVariance)
		r.Get("/{id}/forecast", h.forecast)
	})
}

type createBudgetRequest struct {
	Name       string `json:"name" validate:"required"`
	BudgetYear int    `json:"budget_year" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Currency   string `json:"currency"`
	ActorID    int64  `json:"actor_id" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must be YYYY-MM-DD")
		return
	}
	b, err := h.service.Create(r.Context(), CreateBudgetInput{
		Name:       req.Name,
		BudgetYear: req.BudgetYear,
		StartDate:  start,
		EndDate:    end,
		Currency:   req.Currency,
		ActorID:    req.ActorID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

type generateRequest struct {
	Name       string  `json:"name" validate:"required"`
	BaseYear   int     `json:"base_year" validate:"required"`
	TargetYear int     `json:"target_year" validate:"required"`
	GrowthPct  float64 `json:"growth_pct"`
	Currency   string  `json:"currency"`
	ActorID    int64   `json:"actor_id" validate:"required"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.GenerateFromHistory(r.Context(), GenerateInput{
		Name:       req.Name,
		BaseYear:   req.BaseYear,
		TargetYear: req.TargetYear,
		GrowthPct:  req.GrowthPct,
		Currency:   req.Currency,
		ActorID:    req.ActorID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

type addLineRequest struct {
	AccountID    int64          `json:"account_id" validate:"required"`
	Category     string         `json:"category"`
	Subcategory  string         `json:"subcategory"`
	CostCenterID *int64         `json:"cost_center_id"`
	Department   string         `json:"department"`
	Monthly      MonthlyAmounts `json:"monthly"`
	ActorID      int64          `json:"actor_id" validate:"required"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	var req addLineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	line, err := h.service.AddLine(r.Context(), id, LineInput{
		AccountID:    req.AccountID,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		CostCenterID: req.CostCenterID,
		Department:   req.Department,
		Monthly:      req.Monthly,
		ActorID:      req.ActorID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, line)
}

type approveRequest struct {
	ActorID int64 `json:"actor_id" validate:"required"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	var req approveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Approve(r.Context(), id, req.ActorID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

type revisionRequest struct {
	Overrides map[int64]map[string]float64 `json:"overrides"`
	Reason    string                       `json:"reason" validate:"required"`
	ActorID   int64                        `json:"actor_id" validate:"required"`
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

func (h *Handler) createRevision(w http.ResponseWriter, r *http.Request) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	var req revisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	overrides := make(map[int64]MonthOverrides, len(req.Overrides))
	for accountID, months := range req.Overrides {
		mo := MonthOverrides{}
		for name, amount := range months {
			month, ok := monthNames[name]
			if !ok {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown month "+name)
				return
			}
			mo[month] = amount
		}
		overrides[accountID] = mo
	}
	b, err := h.service.CreateRevision(r.Context(), RevisionInput{
		BudgetID:  id,
		Overrides: overrides,
		Reason:    req.Reason,
		ActorID:   req.ActorID,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) listByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "year query parameter required")
		return
	}
	list, err := h.service.ListByYear(r.Context(), year)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) variance(w http.ResponseWriter, r *http.Request) {
	report, ok := h.varianceReport(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) exportVariance(w http.ResponseWriter, r *http.Request) {
	report, ok := h.varianceReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="budget-variance.xlsx"`)
	if err := WriteVarianceXLSX(w, report); err != nil {
		h.logger.Error("variance export failed", slog.Any("error", err))
	}
}

func (h *Handler) varianceReport(w http.ResponseWriter, r *http.Request) (VarianceReport, bool) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return VarianceReport{}, false
	}
	asOf, err := queryDate(r, "as_of", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
		return VarianceReport{}, false
	}
	report, err := h.service.VarianceAnalysis(r.Context(), id, asOf)
	if err != nil {
		h.respondErr(w, err)
		return VarianceReport{}, false
	}
	return report, true
}

func (h *Handler) forecast(w http.ResponseWriter, r *http.Request) {
	id, ok := h.budgetID(w, r)
	if !ok {
		return
	}
	asOf, err := queryDate(r, "as_of", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
		return
	}
	report, err := h.service.Forecast(r.Context(), id, asOf)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) budgetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid budget id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBudgetNotFound), errors.Is(err, ErrLineNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateLine):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrNotDraft), errors.Is(err, ErrAlreadySuperseded), errors.Is(err, ErrNoHistory):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid State", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func queryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
