package recon

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurum-erp/aurum-erp/internal/platform/httpx"
)

// Handler wires reconciliation JSON endpoints.
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
	r.Post("/reconciliations", h.reconcile)
}

type bankTransactionRequest struct {
	Date        string  `json:"date" validate:"required"`
	Amount      float64 `json:"amount" validate:"required"`
	Description string  `json:"description"`
}

type reconcileRequest struct {
	AccountID         int64                    `json:"account_id" validate:"required"`
	StatementDate     string                   `json:"statement_date" validate:"required"`
	BankEndingBalance float64                  `json:"bank_ending_balance"`
	BankTransactions  []bankTransactionRequest `json:"bank_transactions" validate:"required,min=1,dive"`
	ActorID           int64                    `json:"actor_id" validate:"required"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	statementDate, err := time.Parse("2006-01-02", req.StatementDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "statement_date must be YYYY-MM-DD")
		return
	}
	input := Input{
		AccountID:         req.AccountID,
		StatementDate:     statementDate,
		BankEndingBalance: req.BankEndingBalance,
		ActorID:           req.ActorID,
	}
	for _, bt := range req.BankTransactions {
		date, err := time.Parse("2006-01-02", bt.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "bank transaction dates must be YYYY-MM-DD")
			return
		}
		input.BankTransactions = append(input.BankTransactions, BankTransaction{
			Date:        date,
			Amount:      bt.Amount,
			Description: bt.Description,
		})
	}
	report, err := h.service.Reconcile(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrNoBankStatement) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("reconciliation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
