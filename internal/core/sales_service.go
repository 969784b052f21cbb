package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const defaultItemUnit = "kg"

// SalesService creates invoices. Header, line items, and the IV ledger entry
// commit in one transaction; a duplicate invoice number or a bad customer
// reference rolls the whole dispatch back.
type SalesService struct {
	pool   *pgxpool.Pool
	ledger *Ledger
}

func NewSalesService(pool *pgxpool.Pool, ledger *Ledger) *SalesService {
	return &SalesService{pool: pool, ledger: ledger}
}

// CreateInvoice validates the request, stores the invoice with its items, and
// posts the customer receivable (IV debit) for the final amount.
func (s *SalesService) CreateInvoice(ctx context.Context, req InvoiceRequest) (*SalesInvoice, error) {
	if err := validateInvoice(&req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := ensureAccountExists(ctx, tx, req.AccountID); err != nil {
		return nil, err
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO sales_invoices (
			invoice_no, date, account_id,
			total_amount, discount_amount, final_amount, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, req.InvoiceNo, req.Date, req.AccountID,
		req.TotalAmount, req.DiscountAmount, req.FinalAmount, toPtr(req.Remarks),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("invoice %s already exists", req.InvoiceNo)
		}
		return nil, storeErr("insert invoice", err)
	}

	for _, item := range req.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO sales_invoice_items (invoice_id, item_name, quantity, unit, rate, amount)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, item.ItemName, item.Quantity, item.Unit, item.Rate, item.Amount)
		if err != nil {
			return nil, storeErr("insert invoice item", err)
		}
	}

	// Dispatching goods means the customer owes money: debit the customer.
	_, err = s.ledger.PostInTx(ctx, tx, VoucherRequest{
		Date:           req.Date,
		Type:           VoucherSalesInvoice,
		AccountID:      req.AccountID,
		Amount:         req.FinalAmount,
		Description:    fmt.Sprintf("Sales Invoice #%s", req.InvoiceNo),
		salesInvoiceID: &id,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit invoice", err)
	}

	return s.GetInvoice(ctx, id)
}

// GetInvoice returns one invoice with its line items.
func (s *SalesService) GetInvoice(ctx context.Context, id int) (*SalesInvoice, error) {
	inv := &SalesInvoice{}
	err := s.pool.QueryRow(ctx, invoiceSelect+" WHERE id = $1", id).Scan(invoiceDest(inv)...)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf("invoice %d not found", id)
		}
		return nil, storeErr("get invoice", err)
	}
	if err := s.loadItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns invoices with their line items, newest first.
func (s *SalesService) ListInvoices(ctx context.Context) ([]SalesInvoice, error) {
	rows, err := s.pool.Query(ctx, invoiceSelect+" ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, storeErr("list invoices", err)
	}
	defer rows.Close()

	var invoices []SalesInvoice
	for rows.Next() {
		var inv SalesInvoice
		if err := rows.Scan(invoiceDest(&inv)...); err != nil {
			return nil, storeErr("scan invoice", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate invoice rows", err)
	}

	for i := range invoices {
		if err := s.loadItems(ctx, &invoices[i]); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (s *SalesService) loadItems(ctx context.Context, inv *SalesInvoice) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, item_name, quantity, unit, rate, amount
		FROM sales_invoice_items
		WHERE invoice_id = $1
		ORDER BY id
	`, inv.ID)
	if err != nil {
		return storeErr("query invoice items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item SalesInvoiceItem
		if err := rows.Scan(&item.ID, &item.ItemName, &item.Quantity, &item.Unit, &item.Rate, &item.Amount); err != nil {
			return storeErr("scan invoice item", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return storeErr("iterate item rows", err)
	}
	return nil
}

const invoiceSelect = `
	SELECT id, invoice_no, date::text, account_id,
	       total_amount, discount_amount, final_amount, status, remarks, created_at
	FROM sales_invoices`

func invoiceDest(inv *SalesInvoice) []any {
	return []any{
		&inv.ID, &inv.InvoiceNo, &inv.Date, &inv.AccountID,
		&inv.TotalAmount, &inv.DiscountAmount, &inv.FinalAmount, &inv.Status, &inv.Remarks, &inv.CreatedAt,
	}
}

// validateInvoice re-checks the caller-supplied totals: each line's amount
// must equal quantity × rate, the header total must equal the sum of lines,
// and the final amount must equal total minus discount. Defaults are filled
// in place.
func validateInvoice(req *InvoiceRequest) error {
	if req.InvoiceNo == "" {
		return validationf("invoice number is required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return validationf("invalid invoice date %q", req.Date)
	}
	if len(req.Items) == 0 {
		return validationf("invoice must have at least one item")
	}
	if req.DiscountAmount.IsNegative() {
		return validationf("discount cannot be negative, got %s", req.DiscountAmount)
	}

	sum := decimal.Zero
	for i := range req.Items {
		item := &req.Items[i]
		if item.ItemName == "" {
			return validationf("item %d: name is required", i+1)
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return validationf("item %d: quantity must be positive, got %s", i+1, item.Quantity)
		}
		if item.Unit == "" {
			item.Unit = defaultItemUnit
		}
		if expected := item.Quantity.Mul(item.Rate); !item.Amount.Equal(expected) {
			return validationf("item %d: amount %s does not equal quantity %s times rate %s",
				i+1, item.Amount, item.Quantity, item.Rate)
		}
		sum = sum.Add(item.Amount)
	}

	if !req.TotalAmount.Equal(sum) {
		return validationf("total amount %s does not equal item sum %s", req.TotalAmount, sum)
	}
	if expected := req.TotalAmount.Sub(req.DiscountAmount); !req.FinalAmount.Equal(expected) {
		return validationf("final amount %s does not equal total %s minus discount %s",
			req.FinalAmount, req.TotalAmount, req.DiscountAmount)
	}
	return nil
}
