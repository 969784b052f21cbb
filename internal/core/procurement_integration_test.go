package core_test

import (
	"context"
	"errors"
	"testing"

	"millbooks/internal/core"

	"github.com/shopspring/decimal"
)

func purchaseFixture() core.PurchaseRequest {
	// 25,000 kg at 40/kg = 1,000,000 with no deductions.
	return core.PurchaseRequest{
		Date:        "2024-01-15",
		GatePassNo:  101,
		VehicleNo:   "LEB-1234",
		DriverName:  "Test Driver",
		AccountID:   1,
		Bags:        250,
		GrossWeight: decimal.NewFromInt(26000),
		TareWeight:  decimal.NewFromInt(1000),
		NetWeight:   decimal.NewFromInt(25000),
		Rate:        decimal.NewFromInt(40),
		Amount:      decimal.NewFromInt(1000000),
		FinalAmount: decimal.NewFromInt(1000000),
	}
}

func TestProcurement_RecordPurchasePostsVendorCredit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	svc := core.NewProcurementService(pool, ledger)
	ctx := context.Background()

	record, err := svc.RecordPurchase(ctx, purchaseFixture())
	if err != nil {
		t.Fatalf("RecordPurchase failed: %v", err)
	}
	if record.ItemName != "Basmati Paddy" {
		t.Errorf("Expected default item name, got %q", record.ItemName)
	}

	var debit, credit decimal.Decimal
	var voucherType, description string
	err = pool.QueryRow(ctx, `
		SELECT voucher_type, description, debit, credit
		FROM financial_ledger WHERE account_id = 1
	`).Scan(&voucherType, &description, &debit, &credit)
	if err != nil {
		t.Fatalf("Failed to read ledger entry: %v", err)
	}

	if voucherType != "PU" {
		t.Errorf("Expected voucher type PU, got %s", voucherType)
	}
	if !credit.Equal(decimal.NewFromInt(1000000)) || !debit.IsZero() {
		t.Errorf("Expected credit 1000000 / debit 0, got credit=%s debit=%s", credit, debit)
	}
	if description != "Paddy Purchase GP#101 / LEB-1234" {
		t.Errorf("Unexpected description: %q", description)
	}
}

func TestProcurement_DerivedValueMismatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewProcurementService(pool, core.NewLedger(pool))
	ctx := context.Background()

	badNet := purchaseFixture()
	badNet.NetWeight = decimal.NewFromInt(24000)
	if _, err := svc.RecordPurchase(ctx, badNet); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for net weight mismatch, got %v", err)
	}

	badFinal := purchaseFixture()
	badFinal.Deductions.Labor = decimal.NewFromInt(5000)
	// FinalAmount left at the undeducted figure — no longer amount − deductions.
	if _, err := svc.RecordPurchase(ctx, badFinal); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Expected ErrValidation for final amount mismatch, got %v", err)
	}

	unknownVendor := purchaseFixture()
	unknownVendor.AccountID = 999
	if _, err := svc.RecordPurchase(ctx, unknownVendor); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown vendor, got %v", err)
	}
}

func TestProcurement_DeductionsReduceFinalAmount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewProcurementService(pool, core.NewLedger(pool))

	req := purchaseFixture()
	req.Deductions = core.Deductions{
		Bardana:  decimal.NewFromInt(2000),
		Labor:    decimal.NewFromInt(1500),
		Moisture: decimal.NewFromInt(6500),
	}
	req.FinalAmount = decimal.NewFromInt(990000)

	record, err := svc.RecordPurchase(context.Background(), req)
	if err != nil {
		t.Fatalf("RecordPurchase failed: %v", err)
	}
	if !record.FinalAmount.Equal(decimal.NewFromInt(990000)) {
		t.Errorf("Expected final amount 990000, got %s", record.FinalAmount)
	}
	if !record.Deductions.Total().Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected deduction total 10000, got %s", record.Deductions.Total())
	}
}

func TestProcurement_AtomicRollback(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	svc := core.NewProcurementService(pool, ledger)
	ctx := context.Background()

	// Plant a colliding ledger row so the composite's posting step hits the
	// unique (voucher_type, voucher_no) index. The sequence table is empty, so
	// the composite will claim PU-1.
	_, err := pool.Exec(ctx, `
		INSERT INTO financial_ledger (date, voucher_type, voucher_no, account_id, description, debit, credit)
		VALUES ('2024-01-01', 'PU', 1, 1, 'pre-existing', 0, 500)
	`)
	if err != nil {
		t.Fatalf("Failed to plant colliding entry: %v", err)
	}

	_, err = svc.RecordPurchase(ctx, purchaseFixture())
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	// The procurement record must have rolled back with the failed posting.
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM paddy_procurement").Scan(&count); err != nil {
		t.Fatalf("Failed to count procurement records: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no procurement records after rollback, found %d", count)
	}
}
