package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductionService records milling runs. Unlike purchases and sales, a batch
// has no financial leg, so writes are single-statement and need no explicit
// transaction.
type ProductionService struct {
	pool *pgxpool.Pool
}

func NewProductionService(pool *pgxpool.Pool) *ProductionService {
	return &ProductionService{pool: pool}
}

// RecordBatch validates and stores a milling run. A zero BatchNo is assigned
// from the batch sequence.
func (s *ProductionService) RecordBatch(ctx context.Context, req BatchRequest) (*ProductionBatch, error) {
	if err := validateBatch(&req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	batchNo := req.BatchNo
	if batchNo == 0 {
		err := tx.QueryRow(ctx, `
			INSERT INTO voucher_sequences (voucher_type, last_number)
			VALUES ('BATCH', 1)
			ON CONFLICT (voucher_type)
			DO UPDATE SET last_number = voucher_sequences.last_number + 1
			RETURNING last_number
		`).Scan(&batchNo)
		if err != nil {
			return nil, storeErr("generate batch number", err)
		}
	} else {
		// Advance the sequence past the manual number so later auto-assigned
		// batches do not collide with it.
		_, err := tx.Exec(ctx, `
			INSERT INTO voucher_sequences (voucher_type, last_number)
			VALUES ('BATCH', $1)
			ON CONFLICT (voucher_type)
			DO UPDATE SET last_number = GREATEST(voucher_sequences.last_number, EXCLUDED.last_number)
		`, batchNo)
		if err != nil {
			return nil, storeErr("advance batch sequence", err)
		}
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO production_batch (
			date, batch_no, machine_no,
			input_item, input_qty, input_bags,
			output_head_rice, output_broken_rice, output_bran,
			output_husk, output_dirt, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, req.Date, batchNo, toPtr(req.MachineNo),
		req.InputItem, req.InputQty, req.InputBags,
		req.OutputHeadRice, req.OutputBrokenRice, req.OutputBran,
		req.OutputHusk, req.OutputDirt, toPtr(req.Remarks),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("batch %d already exists", batchNo)
		}
		return nil, storeErr("insert production batch", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit batch", err)
	}

	return s.GetBatch(ctx, id)
}

// GetBatch returns a production batch by id.
func (s *ProductionService) GetBatch(ctx context.Context, id int) (*ProductionBatch, error) {
	b := &ProductionBatch{}
	err := s.pool.QueryRow(ctx, batchSelect+" WHERE id = $1", id).Scan(batchDest(b)...)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf("production batch %d not found", id)
		}
		return nil, storeErr("get production batch", err)
	}
	return b, nil
}

// ListBatches returns milling runs, newest first.
func (s *ProductionService) ListBatches(ctx context.Context) ([]ProductionBatch, error) {
	rows, err := s.pool.Query(ctx, batchSelect+" ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, storeErr("list production batches", err)
	}
	defer rows.Close()

	var batches []ProductionBatch
	for rows.Next() {
		var b ProductionBatch
		if err := rows.Scan(batchDest(&b)...); err != nil {
			return nil, storeErr("scan production batch", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate batch rows", err)
	}
	return batches, nil
}

const batchSelect = `
	SELECT id, date::text, batch_no, machine_no,
	       input_item, input_qty, input_bags,
	       output_head_rice, output_broken_rice, output_bran,
	       output_husk, output_dirt, remarks, created_at
	FROM production_batch`

func batchDest(b *ProductionBatch) []any {
	return []any{
		&b.ID, &b.Date, &b.BatchNo, &b.MachineNo,
		&b.InputItem, &b.InputQty, &b.InputBags,
		&b.OutputHeadRice, &b.OutputBrokenRice, &b.OutputBran,
		&b.OutputHusk, &b.OutputDirt, &b.Remarks, &b.CreatedAt,
	}
}

func validateBatch(req *BatchRequest) error {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return validationf("invalid batch date %q", req.Date)
	}
	if req.BatchNo < 0 {
		return validationf("batch number must be positive, got %d", req.BatchNo)
	}
	if req.InputQty.LessThanOrEqual(decimal.Zero) {
		return validationf("input quantity must be positive, got %s", req.InputQty)
	}
	if req.InputItem == "" {
		req.InputItem = defaultProcurementItem
	}

	for _, out := range []struct {
		name string
		qty  decimal.Decimal
	}{
		{"head rice", req.OutputHeadRice},
		{"broken rice", req.OutputBrokenRice},
		{"bran", req.OutputBran},
		{"husk", req.OutputHusk},
		{"dirt", req.OutputDirt},
	} {
		if out.qty.IsNegative() {
			return validationf("%s output cannot be negative, got %s", out.name, out.qty)
		}
	}

	total := req.OutputHeadRice.Add(req.OutputBrokenRice).Add(req.OutputBran).
		Add(req.OutputHusk).Add(req.OutputDirt)
	if total.GreaterThan(req.InputQty) {
		return validationf("total output %s exceeds input %s", total, req.InputQty)
	}
	return nil
}
