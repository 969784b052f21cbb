package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Ledger is the voucher posting engine. It owns all writes to the
// financial_ledger table: it computes the debit/credit direction for each
// voucher type, assigns voucher numbers from a per-type sequence, and inserts
// exactly one journal row per voucher.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Direction returns the (debit, credit) pair for a voucher of the given type
// and amount. This is a fixed business rule, not configurable at call time:
// payments to a party and sales invoices debit the party; receipts from a
// party and purchases credit the party. JV posts a debit adjustment — the
// counter-account stays implicit throughout this ledger.
func Direction(t VoucherType, amount decimal.Decimal) (debit, credit decimal.Decimal, err error) {
	switch t {
	case VoucherCashPayment, VoucherBankPayment, VoucherJournal, VoucherSalesInvoice:
		return amount, decimal.Zero, nil
	case VoucherCashReceipt, VoucherBankReceipt, VoucherPurchase:
		return decimal.Zero, amount, nil
	default:
		return decimal.Zero, decimal.Zero, validationf("unknown voucher type %q", t)
	}
}

// Post validates and posts a voucher in its own transaction.
func (l *Ledger) Post(ctx context.Context, req VoucherRequest) (*PostResult, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	result, err := l.PostInTx(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit voucher", err)
	}
	return result, nil
}

// PostInTx posts a voucher inside the caller's transaction. Composite
// operations (purchase, sale) use this so the event record and its ledger
// entry commit atomically — the caller owns the transaction boundary.
func (l *Ledger) PostInTx(ctx context.Context, tx pgx.Tx, req VoucherRequest) (*PostResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, validationf("voucher amount must be positive, got %s", req.Amount)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, validationf("invalid voucher date %q", req.Date)
	}

	debit, credit, err := Direction(req.Type, req.Amount)
	if err != nil {
		return nil, err
	}

	if err := ensureAccountExists(ctx, tx, req.AccountID); err != nil {
		return nil, err
	}

	voucherNo, err := l.claimVoucherNo(ctx, tx, req.Type, req.VoucherNo)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("%s - Manual Entry", req.Type)
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO financial_ledger (
			date, voucher_type, voucher_no, account_id,
			description, debit, credit, sales_invoice_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, req.Date, string(req.Type), voucherNo, req.AccountID,
		description, debit, credit, req.salesInvoiceID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("voucher %s-%d already exists", req.Type, voucherNo)
		}
		return nil, storeErr("insert ledger entry", err)
	}

	return &PostResult{ID: id, VoucherNo: voucherNo}, nil
}

// claimVoucherNo assigns the voucher number within the posting transaction.
// Auto-assignment bumps the per-type sequence row; because the UPDATE locks
// that row until the transaction commits, two concurrent postings of the same
// type can never receive the same number. A caller-supplied number advances
// the sequence with GREATEST so later auto-numbers skip past it.
func (l *Ledger) claimVoucherNo(ctx context.Context, tx pgx.Tx, t VoucherType, manual *int) (int, error) {
	if manual != nil {
		if *manual <= 0 {
			return 0, validationf("voucher number must be positive, got %d", *manual)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO voucher_sequences (voucher_type, last_number)
			VALUES ($1, $2)
			ON CONFLICT (voucher_type)
			DO UPDATE SET last_number = GREATEST(voucher_sequences.last_number, EXCLUDED.last_number)
		`, string(t), *manual)
		if err != nil {
			return 0, storeErr("advance voucher sequence", err)
		}
		return *manual, nil
	}

	var n int
	err := tx.QueryRow(ctx, `
		INSERT INTO voucher_sequences (voucher_type, last_number)
		VALUES ($1, 1)
		ON CONFLICT (voucher_type)
		DO UPDATE SET last_number = voucher_sequences.last_number + 1
		RETURNING last_number
	`, string(t)).Scan(&n)
	if err != nil {
		return 0, storeErr("generate voucher number", err)
	}
	return n, nil
}

// ensureAccountExists verifies the referenced account inside the caller's
// transaction. Composite operations call it before inserting their event
// record, so a bad reference surfaces as not-found instead of a foreign key
// failure from the store.
func ensureAccountExists(ctx context.Context, tx pgx.Tx, id int) error {
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id,
	).Scan(&exists); err != nil {
		return storeErr("check account", err)
	}
	if !exists {
		return notFoundf("account %d not found", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
