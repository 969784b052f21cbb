package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"millbooks/internal/app"
	"millbooks/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit on everything else to prevent unbounded request abuse.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Accounts
		r.Get("/api/accounts", h.listAccounts)
		r.Get("/api/accounts/{id}", h.getAccount)
		r.Get("/api/accounts/{id}/statement", h.accountStatement)

		// Financials
		r.Post("/api/financials/voucher", h.postVoucher)
		r.Get("/api/financials/ledger", h.getLedger)
		r.Get("/api/financials/balances", h.accountBalances)

		// Procurement
		r.Post("/api/procurement/purchase", h.recordPurchase)
		r.Get("/api/procurement/purchases", h.listPurchases)

		// Production
		r.Post("/api/production/batch", h.recordBatch)
		r.Get("/api/production/batches", h.listBatches)

		// Sales
		r.Post("/api/sales/invoice", h.createInvoice)
		r.Get("/api/sales/invoices", h.listInvoices)

		// Inventory & dashboard
		r.Get("/api/inventory/stock", h.getStock)
		r.Get("/api/dashboard", h.getDashboard)

		// AI
		r.Post("/api/ai/suggest-voucher", h.suggestVoucher)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) accountStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetAccountStatement(r.Context(), id,
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) postVoucher(w http.ResponseWriter, r *http.Request) {
	var req core.VoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.PostVoucher(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCreated(w, result)
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	filter := core.LedgerFilter{
		StartDate: r.URL.Query().Get("from"),
		EndDate:   r.URL.Query().Get("to"),
	}
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, "account_id must be numeric", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		filter.AccountID = &id
	}

	result, err := h.svc.GetLedger(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) accountBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.GetAccountBalances(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, balances)
}

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var req core.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	record, err := h.svc.RecordPurchase(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCreated(w, record)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListPurchases(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, records)
}

func (h *Handler) recordBatch(w http.ResponseWriter, r *http.Request) {
	var req core.BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	batch, err := h.svc.RecordBatch(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCreated(w, batch)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.svc.ListBatches(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, batches)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req core.InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	invoice, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeCreated(w, invoice)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, invoices)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetStock(r.Context(), r.URL.Query().Get("as_of"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetDashboard(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) suggestVoucher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, r, "text is required", "VALIDATION_FAILED", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SuggestVoucher(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// pathID extracts the numeric {id} URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "id must be numeric", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for all
// other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
