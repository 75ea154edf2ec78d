package ledger

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

// Handler wires ledger JSON endpoints.
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
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.createTransaction)
		r.Get("/{id}", h.getTransaction)
	})
	r.Get("/accounts/{id}/balance", h.accountBalance)
	r.Get("/accounts/{id}/statement", h.accountStatement)
}

type entryRequest struct {
	AccountID   int64             `json:"account_id" validate:"required"`
	Debit       float64           `json:"debit"`
	Credit      float64           `json:"credit"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type createTransactionRequest struct {
	ReferenceNumber  string         `json:"reference_number" validate:"required"`
	Description      string         `json:"description"`
	DescriptionLocal string         `json:"description_local"`
	Date             string         `json:"date" validate:"required"`
	Type             string         `json:"type"`
	CostCenterID     *int64         `json:"cost_center_id"`
	Tags             []string       `json:"tags"`
	RequiresApproval bool           `json:"requires_approval"`
	ActorID          int64          `json:"actor_id" validate:"required"`
	Entries          []entryRequest `json:"entries" validate:"required,min=2,dive"`
}

func (req createTransactionRequest) toInput() (CreateTransactionInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return CreateTransactionInput{}, err
	}
	input := CreateTransactionInput{
		ReferenceNumber:  req.ReferenceNumber,
		Description:      req.Description,
		DescriptionLocal: req.DescriptionLocal,
		Date:             date,
		Type:             TransactionType(req.Type),
		CostCenterID:     req.CostCenterID,
		Tags:             req.Tags,
		RequiresApproval: req.RequiresApproval,
		ActorID:          req.ActorID,
	}
	for _, e := range req.Entries {
		input.Entries = append(input.Entries, EntryInput{
			AccountID:   e.AccountID,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Currency:    e.Currency,
			Description: e.Description,
			Metadata:    e.Metadata,
		})
	}
	return input, nil
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}
	txn, err := h.service.CreateTransaction(r.Context(), input)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaction id")
		return
	}
	txn, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txn)
}

func (h *Handler) accountBalance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	asOf, err := queryDate(r, "as_of", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
		return
	}
	debit, credit, err := h.service.AccountBalanceAsOf(r.Context(), id, asOf)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"account_id": id,
		"as_of":      asOf.Format("2006-01-02"),
		"debit":      debit,
		"credit":     credit,
	})
}

func (h *Handler) accountStatement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account id")
		return
	}
	upTo, err := queryDate(r, "up_to", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "up_to must be YYYY-MM-DD")
		return
	}
	lines, err := h.service.AccountStatement(r.Context(), id, upTo)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateReference):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrUnbalanced), errors.Is(err, ErrTooFewEntries), errors.Is(err, ErrAmountConflict),
		errors.Is(err, ErrNegativeAmount), errors.Is(err, ErrAccountMissing), errors.Is(err, ErrAccountInactive):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrConsistency):
		h.logger.Error("consistency failure surfaced", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
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
