package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the front-page snapshot: overall receivable/payable
// position, event counts, and the most recent journal activity.
type DashboardSummary struct {
	TotalReceivable decimal.Decimal `json:"total_receivable"` // Σ positive balances
	TotalPayable    decimal.Decimal `json:"total_payable"`    // Σ |negative balances|
	AccountCount    int             `json:"account_count"`
	PurchaseCount   int             `json:"purchase_count"`
	BatchCount      int             `json:"batch_count"`
	InvoiceCount    int             `json:"invoice_count"`
	RecentEntries   []LedgerEntry   `json:"recent_entries"`
}

// ReportingService aggregates across the other stores for dashboard views.
type ReportingService struct {
	pool  *pgxpool.Pool
	query *LedgerQuery
}

func NewReportingService(pool *pgxpool.Pool, query *LedgerQuery) *ReportingService {
	return &ReportingService{pool: pool, query: query}
}

const recentEntryLimit = 10

// Summary builds the dashboard snapshot.
func (s *ReportingService) Summary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		TotalReceivable: decimal.Zero,
		TotalPayable:    decimal.Zero,
	}

	balances, err := s.query.AccountBalances(ctx)
	if err != nil {
		return nil, err
	}
	summary.AccountCount = len(balances)
	for _, b := range balances {
		switch {
		case b.Balance.IsPositive():
			summary.TotalReceivable = summary.TotalReceivable.Add(b.Balance)
		case b.Balance.IsNegative():
			summary.TotalPayable = summary.TotalPayable.Add(b.Balance.Neg())
		}
	}

	err = s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM paddy_procurement),
		       (SELECT COUNT(*) FROM production_batch),
		       (SELECT COUNT(*) FROM sales_invoices)
	`).Scan(&summary.PurchaseCount, &summary.BatchCount, &summary.InvoiceCount)
	if err != nil {
		return nil, storeErr("count events", err)
	}

	rows, err := s.pool.Query(ctx,
		ledgerSelect+" ORDER BY fl.date DESC, fl.id DESC LIMIT $1", recentEntryLimit)
	if err != nil {
		return nil, storeErr("query recent entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		summary.RecentEntries = append(summary.RecentEntries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate recent entries", err)
	}
	return summary, nil
}
