package app

import (
	"context"

	"millbooks/internal/ai"
	"millbooks/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool        *pgxpool.Pool
	accounts    *core.AccountService
	ledger      *core.Ledger
	query       *core.LedgerQuery
	procurement *core.ProcurementService
	production  *core.ProductionService
	sales       *core.SalesService
	stock       *core.StockService
	reporting   *core.ReportingService
	agent       *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no AI key is configured; SuggestVoucher then fails
// with a validation error.
func NewAppService(
	pool *pgxpool.Pool,
	accounts *core.AccountService,
	ledger *core.Ledger,
	query *core.LedgerQuery,
	procurement *core.ProcurementService,
	production *core.ProductionService,
	sales *core.SalesService,
	stock *core.StockService,
	reporting *core.ReportingService,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		pool:        pool,
		accounts:    accounts,
		ledger:      ledger,
		query:       query,
		procurement: procurement,
		production:  production,
		sales:       sales,
		stock:       stock,
		reporting:   reporting,
		agent:       agent,
	}
}

func (s *appService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.accounts.ListAccounts(ctx)
}

func (s *appService) GetAccount(ctx context.Context, id int) (*core.Account, error) {
	return s.accounts.GetAccount(ctx, id)
}

// PostVoucher posts a manual voucher after confirming the type is one a user
// may post directly.
func (s *appService) PostVoucher(ctx context.Context, req core.VoucherRequest) (*VoucherResult, error) {
	if err := core.RequireManualType(req.Type); err != nil {
		return nil, err
	}
	result, err := s.ledger.Post(ctx, req)
	if err != nil {
		return nil, err
	}
	return &VoucherResult{ID: result.ID, VoucherNo: result.VoucherNo, Type: req.Type}, nil
}

func (s *appService) GetLedger(ctx context.Context, filter core.LedgerFilter) (*LedgerResult, error) {
	entries, err := s.query.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Entries: entries, Count: len(entries)}, nil
}

func (s *appService) GetAccountStatement(ctx context.Context, accountID int, fromDate, toDate string) (*StatementResult, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	lines, err := s.query.AccountStatement(ctx, accountID, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	closing := decimal.Zero
	if len(lines) > 0 {
		closing = lines[0].RunningBalance // newest first
	}
	return &StatementResult{
		Account:        account,
		Lines:          lines,
		ClosingBalance: closing.String(),
	}, nil
}

func (s *appService) GetAccountBalances(ctx context.Context) ([]core.AccountBalance, error) {
	return s.query.AccountBalances(ctx)
}

func (s *appService) RecordPurchase(ctx context.Context, req core.PurchaseRequest) (*core.ProcurementRecord, error) {
	return s.procurement.RecordPurchase(ctx, req)
}

func (s *appService) ListPurchases(ctx context.Context) ([]core.ProcurementRecord, error) {
	return s.procurement.ListRecords(ctx)
}

func (s *appService) RecordBatch(ctx context.Context, req core.BatchRequest) (*core.ProductionBatch, error) {
	return s.production.RecordBatch(ctx, req)
}

func (s *appService) ListBatches(ctx context.Context) ([]core.ProductionBatch, error) {
	return s.production.ListBatches(ctx)
}

func (s *appService) CreateInvoice(ctx context.Context, req core.InvoiceRequest) (*core.SalesInvoice, error) {
	return s.sales.CreateInvoice(ctx, req)
}

func (s *appService) ListInvoices(ctx context.Context) ([]core.SalesInvoice, error) {
	return s.sales.ListInvoices(ctx)
}

func (s *appService) GetStock(ctx context.Context, asOf string) (*core.StockReport, error) {
	return s.stock.CurrentStock(ctx, asOf)
}

func (s *appService) GetDashboard(ctx context.Context) (*core.DashboardSummary, error) {
	return s.reporting.Summary(ctx)
}

// SuggestVoucher feeds the account directory to the agent alongside the user's
// text so proposals reference real account ids.
func (s *appService) SuggestVoucher(ctx context.Context, text string) (*SuggestionResult, error) {
	if s.agent == nil {
		return nil, core.ErrAgentUnavailable
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	response, err := s.agent.SuggestVoucher(ctx, text, accounts)
	if err != nil {
		return nil, err
	}

	if response.IsClarificationRequest {
		return &SuggestionResult{
			IsClarification: true,
			Clarification:   response.Clarification,
		}, nil
	}
	return &SuggestionResult{Proposal: &response.Proposal}, nil
}
