package core_test

import (
	"context"
	"errors"
	"testing"

	"millbooks/internal/core"

	"github.com/shopspring/decimal"
)

func invoiceFixture() core.InvoiceRequest {
	// 200 kg head rice at 100/kg = 20,000, no discount.
	return core.InvoiceRequest{
		InvoiceNo: "INV-001",
		Date:      "2024-02-01",
		AccountID: 2,
		Items: []core.InvoiceItemRequest{
			{
				ItemName: "Super Kernel Rice",
				Quantity: decimal.NewFromInt(200),
				Rate:     decimal.NewFromInt(100),
				Amount:   decimal.NewFromInt(20000),
			},
		},
		TotalAmount:    decimal.NewFromInt(20000),
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.NewFromInt(20000),
	}
}

func TestSales_CreateInvoicePostsCustomerDebit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	svc := core.NewSalesService(pool, ledger)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, invoiceFixture())
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(inv.Items))
	}
	if inv.Items[0].Unit != "kg" {
		t.Errorf("Expected default unit kg, got %q", inv.Items[0].Unit)
	}
	if inv.Status != "posted" {
		t.Errorf("Expected status posted, got %q", inv.Status)
	}

	var debit, credit decimal.Decimal
	var voucherType, description string
	var salesInvoiceID *int
	err = pool.QueryRow(ctx, `
		SELECT voucher_type, description, debit, credit, sales_invoice_id
		FROM financial_ledger WHERE account_id = 2
	`).Scan(&voucherType, &description, &debit, &credit, &salesInvoiceID)
	if err != nil {
		t.Fatalf("Failed to read ledger entry: %v", err)
	}

	if voucherType != "IV" {
		t.Errorf("Expected voucher type IV, got %s", voucherType)
	}
	if !debit.Equal(decimal.NewFromInt(20000)) || !credit.IsZero() {
		t.Errorf("Expected debit 20000 / credit 0, got debit=%s credit=%s", debit, credit)
	}
	if description != "Sales Invoice #INV-001" {
		t.Errorf("Unexpected description: %q", description)
	}
	if salesInvoiceID == nil || *salesInvoiceID != inv.ID {
		t.Errorf("Expected ledger entry linked to invoice %d, got %v", inv.ID, salesInvoiceID)
	}
}

func TestSales_DuplicateInvoiceNoConflicts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSalesService(pool, core.NewLedger(pool))
	ctx := context.Background()

	if _, err := svc.CreateInvoice(ctx, invoiceFixture()); err != nil {
		t.Fatalf("First invoice failed: %v", err)
	}

	_, err := svc.CreateInvoice(ctx, invoiceFixture())
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("Expected ErrConflict for duplicate invoice number, got %v", err)
	}

	// Only the first invoice and its single ledger entry survive.
	var invoices, entries int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_invoices").Scan(&invoices); err != nil {
		t.Fatalf("Failed to count invoices: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM financial_ledger").Scan(&entries); err != nil {
		t.Fatalf("Failed to count ledger entries: %v", err)
	}
	if invoices != 1 || entries != 1 {
		t.Errorf("Expected 1 invoice and 1 entry, got %d and %d", invoices, entries)
	}
}

func TestSales_TotalMismatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSalesService(pool, core.NewLedger(pool))
	ctx := context.Background()

	badLine := invoiceFixture()
	badLine.Items[0].Amount = decimal.NewFromInt(19000) // not qty × rate
	if _, err := svc.CreateInvoice(ctx, badLine); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for line amount mismatch, got %v", err)
	}

	badTotal := invoiceFixture()
	badTotal.TotalAmount = decimal.NewFromInt(25000)
	if _, err := svc.CreateInvoice(ctx, badTotal); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for total mismatch, got %v", err)
	}

	badFinal := invoiceFixture()
	badFinal.DiscountAmount = decimal.NewFromInt(1000)
	// FinalAmount left at 20000 — no longer total − discount.
	if _, err := svc.CreateInvoice(ctx, badFinal); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for final amount mismatch, got %v", err)
	}

	empty := invoiceFixture()
	empty.Items = nil
	if _, err := svc.CreateInvoice(ctx, empty); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty invoice, got %v", err)
	}
}

func TestSales_AtomicRollback(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSalesService(pool, core.NewLedger(pool))
	ctx := context.Background()

	// An unknown customer is rejected inside the composite's transaction;
	// neither the header nor any items may survive.
	req := invoiceFixture()
	req.AccountID = 999

	_, err := svc.CreateInvoice(ctx, req)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	var invoices, items int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_invoices").Scan(&invoices); err != nil {
		t.Fatalf("Failed to count invoices: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_invoice_items").Scan(&items); err != nil {
		t.Fatalf("Failed to count invoice items: %v", err)
	}
	if invoices != 0 || items != 0 {
		t.Errorf("Expected rollback to remove invoice and items, found %d and %d", invoices, items)
	}
}
