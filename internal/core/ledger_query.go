package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerFilter narrows a journal query. All fields are optional and combine
// with AND semantics. Dates are YYYY-MM-DD and inclusive.
type LedgerFilter struct {
	AccountID *int
	StartDate string
	EndDate   string
}

func (f LedgerFilter) validate() error {
	for _, d := range []struct{ name, value string }{
		{"start", f.StartDate},
		{"end", f.EndDate},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d.value); err != nil {
			return validationf("invalid %s date %q", d.name, d.value)
		}
	}
	return nil
}

// StatementLine is one journal row in an account statement. RunningBalance is
// the cumulative Σdebit − Σcredit for the account up to and including this
// line in chronological order (date ASC, id ASC); positive means the party
// owes the business.
type StatementLine struct {
	LedgerEntry
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// AccountBalance is the net position of one account over the whole journal.
type AccountBalance struct {
	AccountID int             `json:"account_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"` // Σdebit − Σcredit
}

// LedgerQuery is the read side of the journal. It owns no state and takes no
// locks beyond the store's snapshot.
type LedgerQuery struct {
	pool *pgxpool.Pool
}

func NewLedgerQuery(pool *pgxpool.Pool) *LedgerQuery {
	return &LedgerQuery{pool: pool}
}

const ledgerSelect = `
	SELECT fl.id, fl.date::text, fl.voucher_type, fl.voucher_no,
	       fl.account_id, COALESCE(a.name, ''), fl.description,
	       fl.debit, fl.credit, fl.sales_invoice_id, fl.created_at
	FROM financial_ledger fl
	LEFT JOIN accounts a ON a.id = fl.account_id
	WHERE 1=1`

// Query returns journal rows joined with the account name, newest first
// (date DESC, id DESC — stable tie-break on insertion order).
func (q *LedgerQuery) Query(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	query, args := buildLedgerQuery(filter)
	query += " ORDER BY fl.date DESC, fl.id DESC"

	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query ledger", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate ledger rows", err)
	}
	return entries, nil
}

// AccountStatement returns the journal for one account, newest first, with
// each line carrying the running balance. The balance is accumulated over
// chronological order regardless of the newest-first display order, so the
// most recent line shows the account's current net position.
func (q *LedgerQuery) AccountStatement(ctx context.Context, accountID int, startDate, endDate string) ([]StatementLine, error) {
	filter := LedgerFilter{
		AccountID: &accountID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	var accountExists bool
	if err := q.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", accountID,
	).Scan(&accountExists); err != nil {
		return nil, storeErr("check account", err)
	}
	if !accountExists {
		return nil, notFoundf("account %d not found", accountID)
	}

	query, args := buildLedgerQuery(filter)
	query += " ORDER BY fl.date ASC, fl.id ASC"

	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query account statement", err)
	}
	defer rows.Close()

	var lines []StatementLine
	running := decimal.Zero
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		running = running.Add(e.Debit).Sub(e.Credit)
		lines = append(lines, StatementLine{LedgerEntry: *e, RunningBalance: running})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate statement rows", err)
	}

	// Display order is newest first; the balances above were accumulated
	// oldest first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

// AccountBalances returns the net Σdebit − Σcredit position per account,
// ordered by account name. Accounts with no ledger activity report zero.
func (q *LedgerQuery) AccountBalances(ctx context.Context) ([]AccountBalance, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT a.id, a.name,
		       COALESCE(SUM(fl.debit), 0) - COALESCE(SUM(fl.credit), 0) AS balance
		FROM accounts a
		LEFT JOIN financial_ledger fl ON fl.account_id = a.id
		GROUP BY a.id, a.name
		ORDER BY a.name
	`)
	if err != nil {
		return nil, storeErr("query account balances", err)
	}
	defer rows.Close()

	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Name, &b.Balance); err != nil {
			return nil, storeErr("scan account balance", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate balance rows", err)
	}
	return balances, nil
}

func buildLedgerQuery(filter LedgerFilter) (string, []any) {
	query := ledgerSelect
	var args []any

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += fmt.Sprintf(" AND fl.account_id = $%d", len(args))
	}
	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND fl.date >= $%d::date", len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND fl.date <= $%d::date", len(args))
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row rowScanner) (*LedgerEntry, error) {
	var e LedgerEntry
	if err := row.Scan(
		&e.ID, &e.Date, &e.VoucherType, &e.VoucherNo,
		&e.AccountID, &e.AccountName, &e.Description,
		&e.Debit, &e.Credit, &e.SalesInvoiceID, &e.CreatedAt,
	); err != nil {
		return nil, storeErr("scan ledger entry", err)
	}
	return &e, nil
}
