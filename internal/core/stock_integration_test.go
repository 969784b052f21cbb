package core_test

import (
	"context"
	"testing"

	"millbooks/internal/core"

	"github.com/shopspring/decimal"
)

// Full cycle: purchase 10,000 kg paddy, mill all of it into 6,000 head rice +
// 3,000 broken + 500 bran + 500 husk, sell 200 kg head rice and 100 kg of an
// unclassifiable item. Paddy nets to zero; head rice to 5,800; the unknown
// item is excluded from every position.
func TestStock_FullCycleReconciliation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	procurement := core.NewProcurementService(pool, ledger)
	production := core.NewProductionService(pool)
	sales := core.NewSalesService(pool, ledger)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	_, err := procurement.RecordPurchase(ctx, core.PurchaseRequest{
		Date: "2024-01-10", GatePassNo: 1, VehicleNo: "LEB-0001", AccountID: 1,
		Bags:        100,
		GrossWeight: decimal.NewFromInt(10400),
		TareWeight:  decimal.NewFromInt(400),
		NetWeight:   decimal.NewFromInt(10000),
		Rate:        decimal.NewFromInt(40),
		Amount:      decimal.NewFromInt(400000),
		FinalAmount: decimal.NewFromInt(400000),
	})
	if err != nil {
		t.Fatalf("RecordPurchase failed: %v", err)
	}

	_, err = production.RecordBatch(ctx, core.BatchRequest{
		Date:             "2024-01-12",
		InputQty:         decimal.NewFromInt(10000),
		InputBags:        100,
		OutputHeadRice:   decimal.NewFromInt(6000),
		OutputBrokenRice: decimal.NewFromInt(3000),
		OutputBran:       decimal.NewFromInt(500),
		OutputHusk:       decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}

	_, err = sales.CreateInvoice(ctx, core.InvoiceRequest{
		InvoiceNo: "INV-100", Date: "2024-01-20", AccountID: 2,
		Items: []core.InvoiceItemRequest{
			{
				ItemName: "Super Kernel Rice",
				Quantity: decimal.NewFromInt(200),
				Rate:     decimal.NewFromInt(100),
				Amount:   decimal.NewFromInt(20000),
			},
			{
				// No mapping row and no keyword match: must not reduce any
				// tracked position.
				ItemName: "Test Rice",
				Quantity: decimal.NewFromInt(100),
				Rate:     decimal.NewFromInt(50),
				Amount:   decimal.NewFromInt(5000),
			},
		},
		TotalAmount:    decimal.NewFromInt(25000),
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.NewFromInt(25000),
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	report, err := stock.CurrentStock(ctx, "")
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}

	if !report.Paddy.OnHand.IsZero() {
		t.Errorf("Expected paddy on hand 0, got %s", report.Paddy.OnHand)
	}

	onHand := map[core.Category]decimal.Decimal{}
	for _, p := range report.Finished {
		onHand[p.Category] = p.OnHand
	}

	expected := map[core.Category]int64{
		core.CategoryHeadRice:   5800,
		core.CategoryBrokenRice: 3000,
		core.CategoryBran:       500,
		core.CategoryHusk:       500,
	}
	for cat, want := range expected {
		if !onHand[cat].Equal(decimal.NewFromInt(want)) {
			t.Errorf("Expected %s on hand %d, got %s", cat, want, onHand[cat])
		}
	}

	if !report.TotalKg.Equal(decimal.NewFromInt(9800)) {
		t.Errorf("Expected total 9800 kg, got %s", report.TotalKg)
	}
}

func TestStock_AsOfExcludesLaterEvents(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	procurement := core.NewProcurementService(pool, ledger)
	production := core.NewProductionService(pool)
	stock := core.NewStockService(pool)
	ctx := context.Background()

	_, err := procurement.RecordPurchase(ctx, core.PurchaseRequest{
		Date: "2024-01-10", GatePassNo: 1, VehicleNo: "LEB-0001", AccountID: 1,
		Bags:        50,
		GrossWeight: decimal.NewFromInt(5200),
		TareWeight:  decimal.NewFromInt(200),
		NetWeight:   decimal.NewFromInt(5000),
		Rate:        decimal.NewFromInt(40),
		Amount:      decimal.NewFromInt(200000),
		FinalAmount: decimal.NewFromInt(200000),
	})
	if err != nil {
		t.Fatalf("RecordPurchase failed: %v", err)
	}

	_, err = production.RecordBatch(ctx, core.BatchRequest{
		Date:           "2024-01-20",
		InputQty:       decimal.NewFromInt(5000),
		InputBags:      50,
		OutputHeadRice: decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}

	// As of the 15th the batch has not happened: all paddy still on hand.
	report, err := stock.CurrentStock(ctx, "2024-01-15")
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	if !report.Paddy.OnHand.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected paddy on hand 5000 as of 2024-01-15, got %s", report.Paddy.OnHand)
	}
	for _, p := range report.Finished {
		if !p.OnHand.IsZero() {
			t.Errorf("Expected %s on hand 0 as of 2024-01-15, got %s", p.Category, p.OnHand)
		}
	}
}

func TestStock_MappingOverridesKeywords(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	production := core.NewProductionService(pool)
	sales := core.NewSalesService(pool, core.NewLedger(pool))
	stock := core.NewStockService(pool)
	ctx := context.Background()

	// "Mill Special" carries no keyword; only the explicit mapping makes it
	// count against broken rice.
	_, err := pool.Exec(ctx,
		"INSERT INTO item_categories (item_name, category) VALUES ('Mill Special', 'broken_rice')")
	if err != nil {
		t.Fatalf("Failed to insert mapping: %v", err)
	}

	_, err = production.RecordBatch(ctx, core.BatchRequest{
		Date:             "2024-01-12",
		InputQty:         decimal.NewFromInt(1000),
		InputBags:        10,
		OutputBrokenRice: decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("RecordBatch failed: %v", err)
	}

	_, err = sales.CreateInvoice(ctx, core.InvoiceRequest{
		InvoiceNo: "INV-200", Date: "2024-01-20", AccountID: 2,
		Items: []core.InvoiceItemRequest{{
			ItemName: "Mill Special",
			Quantity: decimal.NewFromInt(150),
			Rate:     decimal.NewFromInt(60),
			Amount:   decimal.NewFromInt(9000),
		}},
		TotalAmount:    decimal.NewFromInt(9000),
		DiscountAmount: decimal.Zero,
		FinalAmount:    decimal.NewFromInt(9000),
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	report, err := stock.CurrentStock(ctx, "")
	if err != nil {
		t.Fatalf("CurrentStock failed: %v", err)
	}
	for _, p := range report.Finished {
		if p.Category == core.CategoryBrokenRice && !p.OnHand.Equal(decimal.NewFromInt(250)) {
			t.Errorf("Expected broken rice on hand 250, got %s", p.OnHand)
		}
	}
}
