package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockPosition is the derived quantity of one category: everything that ever
// flowed in minus everything that ever flowed out.
type StockPosition struct {
	Category Category        `json:"category"`
	Inflow   decimal.Decimal `json:"inflow"`  // kg
	Outflow  decimal.Decimal `json:"outflow"` // kg
	OnHand   decimal.Decimal `json:"on_hand"` // inflow − outflow
}

// StockReport is the full reconciliation: paddy plus the four finished-goods
// positions, derived by replaying the procurement, production, and sales
// stores. Nothing here is stored; the report is recomputed on every call.
type StockReport struct {
	AsOf     string          `json:"as_of,omitempty"` // YYYY-MM-DD, empty = all time
	Paddy    StockPosition   `json:"paddy"`
	Finished []StockPosition `json:"finished"`
	TotalKg  decimal.Decimal `json:"total_kg"` // sum of all on-hand positions
}

// StockService derives stock positions from the event stores.
//
// Paddy: inflow is procurement net weight; outflow is production input
// classified as paddy. Finished goods: inflow is the batch output column for
// the category; outflow is sold invoice-line quantity classified into the
// category. Item names that classify to no category are excluded, so the
// report can understate outflow when clerks invent names — the explicit
// item_categories mapping exists to close that gap.
type StockService struct {
	pool *pgxpool.Pool
}

func NewStockService(pool *pgxpool.Pool) *StockService {
	return &StockService{pool: pool}
}

// CurrentStock reconciles all positions. asOf limits the replay to events
// dated on or before it; empty means all time.
func (s *StockService) CurrentStock(ctx context.Context, asOf string) (*StockReport, error) {
	if asOf != "" {
		if _, err := time.Parse("2006-01-02", asOf); err != nil {
			return nil, validationf("invalid as-of date %q", asOf)
		}
	}

	classifier, err := s.loadClassifier(ctx)
	if err != nil {
		return nil, err
	}

	report := &StockReport{AsOf: asOf}

	// Paddy in: procurement net weight.
	purchased, err := s.sumGrouped(ctx, `
		SELECT item_name, COALESCE(SUM(net_weight), 0)
		FROM paddy_procurement`+dateClause(asOf)+`
		GROUP BY item_name
	`, asOf)
	if err != nil {
		return nil, err
	}

	// Paddy out: production input.
	consumed, err := s.sumGrouped(ctx, `
		SELECT input_item, COALESCE(SUM(input_qty), 0)
		FROM production_batch`+dateClause(asOf)+`
		GROUP BY input_item
	`, asOf)
	if err != nil {
		return nil, err
	}

	// Finished goods in: batch output columns, already categorised by the
	// schema so no classification is needed.
	produced := map[Category]decimal.Decimal{}
	query := `
		SELECT COALESCE(SUM(output_head_rice), 0), COALESCE(SUM(output_broken_rice), 0),
		       COALESCE(SUM(output_bran), 0), COALESCE(SUM(output_husk), 0)
		FROM production_batch` + dateClause(asOf)
	var headRice, brokenRice, bran, husk decimal.Decimal
	var args []any
	if asOf != "" {
		args = append(args, asOf)
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&headRice, &brokenRice, &bran, &husk); err != nil {
		return nil, storeErr("sum production outputs", err)
	}
	produced[CategoryHeadRice] = headRice
	produced[CategoryBrokenRice] = brokenRice
	produced[CategoryBran] = bran
	produced[CategoryHusk] = husk

	// Finished goods out: sold invoice lines.
	sold, err := s.sumGrouped(ctx, `
		SELECT i.item_name, COALESCE(SUM(i.quantity), 0)
		FROM sales_invoice_items i
		JOIN sales_invoices si ON si.id = i.invoice_id`+dateClause(asOf, "si.date")+`
		GROUP BY i.item_name
	`, asOf)
	if err != nil {
		return nil, err
	}

	paddyIn := sumByCategory(classifier, purchased)[CategoryPaddy]
	paddyOut := sumByCategory(classifier, consumed)[CategoryPaddy]
	report.Paddy = position(CategoryPaddy, paddyIn, paddyOut)

	soldByCat := sumByCategory(classifier, sold)
	for _, cat := range []Category{CategoryHeadRice, CategoryBrokenRice, CategoryBran, CategoryHusk} {
		report.Finished = append(report.Finished,
			position(cat, produced[cat], soldByCat[cat]))
	}

	report.TotalKg = report.Paddy.OnHand
	for _, p := range report.Finished {
		report.TotalKg = report.TotalKg.Add(p.OnHand)
	}
	return report, nil
}

func position(cat Category, in, out decimal.Decimal) StockPosition {
	return StockPosition{Category: cat, Inflow: in, Outflow: out, OnHand: in.Sub(out)}
}

// loadClassifier reads the explicit item_categories mapping and wraps it with
// the keyword fallback.
func (s *StockService) loadClassifier(ctx context.Context) (*Classifier, error) {
	rows, err := s.pool.Query(ctx, "SELECT item_name, category FROM item_categories")
	if err != nil {
		return nil, storeErr("load item categories", err)
	}
	defer rows.Close()

	mapping := map[string]Category{}
	for rows.Next() {
		var name, cat string
		if err := rows.Scan(&name, &cat); err != nil {
			return nil, storeErr("scan item category", err)
		}
		mapping[name] = Category(cat)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate item categories", err)
	}
	return NewClassifier(mapping), nil
}

// sumGrouped runs a name/quantity aggregate query and returns the raw pairs.
func (s *StockService) sumGrouped(ctx context.Context, query, asOf string) (map[string]decimal.Decimal, error) {
	var rows pgx.Rows
	var err error
	if asOf != "" {
		rows, err = s.pool.Query(ctx, query, asOf)
	} else {
		rows, err = s.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, storeErr("sum stock movements", err)
	}
	defer rows.Close()

	sums := map[string]decimal.Decimal{}
	for rows.Next() {
		var name string
		var qty decimal.Decimal
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, storeErr("scan stock movement", err)
		}
		sums[name] = sums[name].Add(qty)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate stock movements", err)
	}
	return sums, nil
}

func sumByCategory(c *Classifier, byName map[string]decimal.Decimal) map[Category]decimal.Decimal {
	out := map[Category]decimal.Decimal{}
	for name, qty := range byName {
		cat := c.Classify(name)
		if cat == CategoryUnknown {
			continue
		}
		out[cat] = out[cat].Add(qty)
	}
	return out
}

// dateClause appends an as-of filter bound to $1. col defaults to the table's
// own date column.
func dateClause(asOf string, col ...string) string {
	if asOf == "" {
		return ""
	}
	c := "date"
	if len(col) > 0 {
		c = col[0]
	}
	return " WHERE " + c + " <= $1::date"
}
