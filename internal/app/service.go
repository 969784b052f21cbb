package app

import (
	"context"

	"millbooks/internal/core"
)

// ApplicationService is the single interface all adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no HTML, and no display logic of any kind.
type ApplicationService interface {
	// ListAccounts returns the trading-partner directory ordered by name.
	ListAccounts(ctx context.Context) ([]core.Account, error)

	// GetAccount returns one account by id.
	GetAccount(ctx context.Context, id int) (*core.Account, error)

	// PostVoucher posts a manual voucher (CP, CR, BP, BR, JV). The PU and IV
	// types are reserved for the purchase and sale composites and are rejected
	// here.
	PostVoucher(ctx context.Context, req core.VoucherRequest) (*VoucherResult, error)

	// GetLedger returns journal rows, newest first, optionally filtered by
	// account and date range.
	GetLedger(ctx context.Context, filter core.LedgerFilter) (*LedgerResult, error)

	// GetAccountStatement returns one account's journal with running balances,
	// newest first. fromDate and toDate are optional (empty means unbounded).
	GetAccountStatement(ctx context.Context, accountID int, fromDate, toDate string) (*StatementResult, error)

	// GetAccountBalances returns every account's net position.
	GetAccountBalances(ctx context.Context) ([]core.AccountBalance, error)

	// RecordPurchase stores a paddy purchase and posts the vendor payable
	// atomically.
	RecordPurchase(ctx context.Context, req core.PurchaseRequest) (*core.ProcurementRecord, error)

	// ListPurchases returns procurement records, newest first.
	ListPurchases(ctx context.Context) ([]core.ProcurementRecord, error)

	// RecordBatch stores a milling run. Batches have no financial leg.
	RecordBatch(ctx context.Context, req core.BatchRequest) (*core.ProductionBatch, error)

	// ListBatches returns milling runs, newest first.
	ListBatches(ctx context.Context) ([]core.ProductionBatch, error)

	// CreateInvoice stores a sales invoice with its items and posts the
	// customer receivable atomically.
	CreateInvoice(ctx context.Context, req core.InvoiceRequest) (*core.SalesInvoice, error)

	// ListInvoices returns invoices with their items, newest first.
	ListInvoices(ctx context.Context) ([]core.SalesInvoice, error)

	// GetStock reconciles current stock positions by replaying the event
	// stores. asOf is optional (empty means all time).
	GetStock(ctx context.Context, asOf string) (*core.StockReport, error)

	// GetDashboard returns the front-page summary.
	GetDashboard(ctx context.Context) (*core.DashboardSummary, error)

	// SuggestVoucher turns a free-text description of a money movement into a
	// structured voucher proposal. The proposal is never posted automatically;
	// the caller reviews it and submits via PostVoucher.
	SuggestVoucher(ctx context.Context, text string) (*SuggestionResult, error)
}

// VoucherResult is the outcome of a manual posting.
type VoucherResult struct {
	ID        int              `json:"id"`
	VoucherNo int              `json:"voucher_no"`
	Type      core.VoucherType `json:"voucher_type"`
}

// LedgerResult wraps a journal query response.
type LedgerResult struct {
	Entries []core.LedgerEntry `json:"entries"`
	Count   int                `json:"count"`
}

// StatementResult wraps an account statement. ClosingBalance is the account's
// net position at the end of the requested range.
type StatementResult struct {
	Account        *core.Account        `json:"account"`
	Lines          []core.StatementLine `json:"lines"`
	ClosingBalance string               `json:"closing_balance"`
}

// SuggestionResult is an AI voucher proposal or a clarification request when
// the input was too ambiguous to propose anything.
type SuggestionResult struct {
	IsClarification bool                  `json:"is_clarification"`
	Clarification   string                `json:"clarification,omitempty"`
	Proposal        *core.VoucherProposal `json:"proposal,omitempty"`
}
