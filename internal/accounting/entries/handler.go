package entries

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
	"github.com/aurum-erp/aurum-erp/internal/platform/httpx"
)

// Handler wires journal entry builder JSON endpoints.
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
	r.Route("/entries", func(r chi.Router) {
		r.Post("/advanced", h.postAdvanced)
		r.Post("/adjusting", h.postAdjusting)
		r.Post("/recurring", h.postRecurring)
		r.Post("/reverse", h.reverse)
		r.Post("/closing", h.generateClosing)
	})
}

type entryRequest struct {
	AccountID   int64             `json:"account_id" validate:"required"`
	Debit       float64           `json:"debit"`
	Credit      float64           `json:"credit"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

type taxLineRequest struct {
	TaxCode         string  `json:"tax_code" validate:"required"`
	TaxableAmount   float64 `json:"taxable_amount" validate:"required,gt=0"`
	DebitAccountID  int64   `json:"debit_account_id" validate:"required"`
	CreditAccountID int64   `json:"credit_account_id" validate:"required"`
	Description     string  `json:"description"`
}

type advancedEntryRequest struct {
	ReferenceNumber  string           `json:"reference_number" validate:"required"`
	Description      string           `json:"description"`
	Date             string           `json:"date" validate:"required"`
	SourceType       string           `json:"source_type"`
	CostCenterID     *int64           `json:"cost_center_id"`
	Tags             []string         `json:"tags"`
	RequiresApproval bool             `json:"requires_approval"`
	ActorID          int64            `json:"actor_id" validate:"required"`
	Entries          []entryRequest   `json:"entries" validate:"required,min=2,dive"`
	TaxLines         []taxLineRequest `json:"tax_lines" validate:"dive"`
}

func (req advancedEntryRequest) toInput() (AdvancedEntryInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return AdvancedEntryInput{}, err
	}
	input := AdvancedEntryInput{
		CreateTransactionInput: ledger.CreateTransactionInput{
			ReferenceNumber:  req.ReferenceNumber,
			Description:      req.Description,
			Date:             date,
			SourceType:       req.SourceType,
			SourceID:         uuid.New(),
			CostCenterID:     req.CostCenterID,
			Tags:             req.Tags,
			RequiresApproval: req.RequiresApproval,
			ActorID:          req.ActorID,
		},
	}
	for _, e := range req.Entries {
		input.Entries = append(input.Entries, ledger.EntryInput{
			AccountID:   e.AccountID,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Currency:    e.Currency,
			Description: e.Description,
			Metadata:    e.Metadata,
		})
	}
	for _, t := range req.TaxLines {
		input.TaxLines = append(input.TaxLines, TaxLineInput{
			TaxCode:         t.TaxCode,
			TaxableAmount:   t.TaxableAmount,
			DebitAccountID:  t.DebitAccountID,
			CreditAccountID: t.CreditAccountID,
			Description:     t.Description,
		})
	}
	return input, nil
}

func (h *Handler) postAdvanced(w http.ResponseWriter, r *http.Request) {
	h.postEntry(w, r, h.service.PostAdvanced)
}

func (h *Handler) postAdjusting(w http.ResponseWriter, r *http.Request) {
	h.postEntry(w, r, h.service.PostAdjusting)
}

func (h *Handler) postEntry(w http.ResponseWriter, r *http.Request, post func(context.Context, AdvancedEntryInput) (ledger.Transaction, error)) {
	var req advancedEntryRequest
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
	txn, err := post(r.Context(), input)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

type recurringEntryRequest struct {
	Template  advancedEntryRequest `json:"template" validate:"required"`
	StartDate string               `json:"start_date" validate:"required"`
	EndDate   string               `json:"end_date" validate:"required"`
	Frequency string               `json:"frequency" validate:"required"`
}

func (h *Handler) postRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	template, err := req.Template.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}
	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must be YYYY-MM-DD")
		return
	}
	result, err := h.service.PostRecurring(r.Context(), RecurringEntryInput{
		Template:  template.CreateTransactionInput,
		StartDate: start,
		EndDate:   end,
		Frequency: Frequency(req.Frequency),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

type reverseRequest struct {
	TransactionID int64  `json:"transaction_id" validate:"required"`
	ActorID       int64  `json:"actor_id" validate:"required"`
	Date          string `json:"date"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := ReverseInput{TransactionID: req.TransactionID, ActorID: req.ActorID}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
			return
		}
		input.Date = &date
	}
	txn, err := h.service.Reverse(r.Context(), input)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

type closingRequest struct {
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end" validate:"required"`
	ActorID     int64  `json:"actor_id" validate:"required"`
}

func (h *Handler) generateClosing(w http.ResponseWriter, r *http.Request) {
	var req closingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, err1 := time.Parse("2006-01-02", req.PeriodStart)
	end, err2 := time.Parse("2006-01-02", req.PeriodEnd)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "dates must be YYYY-MM-DD")
		return
	}
	result, err := h.service.GenerateClosing(r.Context(), ClosingInput{PeriodStart: start, PeriodEnd: end, ActorID: req.ActorID})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrTransactionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ledger.ErrDuplicateReference):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrTaxCalculation):
		httpx.Problem(w, http.StatusBadGateway, "Tax Calculation Failed", err.Error())
	case errors.Is(err, ErrUnknownFrequency), errors.Is(err, ErrTooManyOccurrences),
		errors.Is(err, ledger.ErrUnbalanced), errors.Is(err, ledger.ErrTooFewEntries),
		errors.Is(err, ledger.ErrAmountConflict), errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrAccountMissing), errors.Is(err, ledger.ErrAccountInactive):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
