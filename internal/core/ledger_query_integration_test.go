package core_test

import (
	"context"
	"errors"
	"testing"

	"millbooks/internal/core"

	"github.com/shopspring/decimal"
)

func TestLedgerQuery_NewestFirstOrdering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	query := core.NewLedgerQuery(pool)

	// Same date: insertion order breaks the tie, newest insertion first.
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-10", Type: core.VoucherCashPayment, AccountID: 1,
		Amount: decimal.NewFromInt(100), Description: "oldest",
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-20", Type: core.VoucherCashPayment, AccountID: 1,
		Amount: decimal.NewFromInt(200), Description: "newest",
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-20", Type: core.VoucherCashReceipt, AccountID: 1,
		Amount: decimal.NewFromInt(300), Description: "newest same day later insert",
	})

	entries, err := query.Query(context.Background(), core.LedgerFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Description != "newest same day later insert" ||
		entries[1].Description != "newest" ||
		entries[2].Description != "oldest" {
		t.Errorf("Wrong order: %q, %q, %q",
			entries[0].Description, entries[1].Description, entries[2].Description)
	}
	if entries[0].AccountName != "Test Vendor" {
		t.Errorf("Expected joined account name 'Test Vendor', got %q", entries[0].AccountName)
	}
}

func TestLedgerQuery_Filters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	query := core.NewLedgerQuery(pool)
	ctx := context.Background()

	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-05", Type: core.VoucherCashPayment, AccountID: 1,
		Amount: decimal.NewFromInt(100),
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-02-05", Type: core.VoucherCashPayment, AccountID: 1,
		Amount: decimal.NewFromInt(200),
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-02-05", Type: core.VoucherCashReceipt, AccountID: 2,
		Amount: decimal.NewFromInt(300),
	})

	accountOne := 1
	byAccount, err := query.Query(ctx, core.LedgerFilter{AccountID: &accountOne})
	if err != nil {
		t.Fatalf("Query by account failed: %v", err)
	}
	if len(byAccount) != 2 {
		t.Errorf("Expected 2 entries for account 1, got %d", len(byAccount))
	}

	// Date bounds are inclusive.
	byRange, err := query.Query(ctx, core.LedgerFilter{StartDate: "2024-02-05", EndDate: "2024-02-05"})
	if err != nil {
		t.Fatalf("Query by range failed: %v", err)
	}
	if len(byRange) != 2 {
		t.Errorf("Expected 2 entries on 2024-02-05, got %d", len(byRange))
	}
}

func TestLedgerQuery_AccountStatementRunningBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	query := core.NewLedgerQuery(pool)
	ctx := context.Background()

	// Debit 500, then credit 200: balance runs 500 → 300.
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-10", Type: core.VoucherCashPayment, AccountID: 1,
		Amount: decimal.NewFromInt(500),
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-20", Type: core.VoucherCashReceipt, AccountID: 1,
		Amount: decimal.NewFromInt(200),
	})

	lines, err := query.AccountStatement(ctx, 1, "", "")
	if err != nil {
		t.Fatalf("AccountStatement failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 statement lines, got %d", len(lines))
	}

	// Newest first: lines[0] is the credit and carries the final position.
	if !lines[0].RunningBalance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected newest line balance 300, got %s", lines[0].RunningBalance)
	}
	if !lines[1].RunningBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected oldest line balance 500, got %s", lines[1].RunningBalance)
	}
}

func TestLedgerQuery_AccountStatementUnknownAccount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	query := core.NewLedgerQuery(pool)
	_, err := query.AccountStatement(context.Background(), 999, "", "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestLedgerQuery_AccountBalances(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	query := core.NewLedgerQuery(pool)
	ctx := context.Background()

	// Vendor: credit 1000 (we owe). Customer: debit 400 (they owe).
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-10", Type: core.VoucherCashReceipt, AccountID: 1,
		Amount: decimal.NewFromInt(1000),
	})
	mustPost(t, ledger, core.VoucherRequest{
		Date: "2024-01-10", Type: core.VoucherCashPayment, AccountID: 2,
		Amount: decimal.NewFromInt(400),
	})

	balances, err := query.AccountBalances(ctx)
	if err != nil {
		t.Fatalf("AccountBalances failed: %v", err)
	}

	byID := map[int]decimal.Decimal{}
	for _, b := range balances {
		byID[b.AccountID] = b.Balance
	}

	if !byID[1].Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("Expected vendor balance -1000, got %s", byID[1])
	}
	if !byID[2].Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected customer balance 400, got %s", byID[2])
	}
	// The idle cash counter account still reports, at zero.
	if !byID[3].Equal(decimal.Zero) {
		t.Errorf("Expected idle account balance 0, got %s", byID[3])
	}
}
