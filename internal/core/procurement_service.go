package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultProcurementItem = "Basmati Paddy"

// ProcurementService records raw-material intake. Each purchase is a single
// atomic unit of work: the procurement record and its PU ledger entry commit
// together or not at all.
type ProcurementService struct {
	pool   *pgxpool.Pool
	ledger *Ledger
}

func NewProcurementService(pool *pgxpool.Pool, ledger *Ledger) *ProcurementService {
	return &ProcurementService{pool: pool, ledger: ledger}
}

// RecordPurchase validates the request, inserts the procurement record, and
// posts the vendor payable (PU credit) in one transaction.
func (s *ProcurementService) RecordPurchase(ctx context.Context, req PurchaseRequest) (*ProcurementRecord, error) {
	if err := validatePurchase(&req); err != nil {
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
		INSERT INTO paddy_procurement (
			date, gate_pass_no, vehicle_no, driver_name, account_id,
			item_name, lot_no, bags, bag_type,
			gross_weight, tare_weight, net_weight,
			rate, amount,
			deduction_bardana, deduction_labor, deduction_stiching,
			deduction_munshyana, deduction_sottri, deduction_moisture,
			final_amount, remarks
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12,
			$13, $14,
			$15, $16, $17,
			$18, $19, $20,
			$21, $22
		) RETURNING id
	`, req.Date, req.GatePassNo, req.VehicleNo, toPtr(req.DriverName), req.AccountID,
		req.ItemName, req.LotNo, req.Bags, toPtr(req.BagType),
		req.GrossWeight, req.TareWeight, req.NetWeight,
		req.Rate, req.Amount,
		req.Deductions.Bardana, req.Deductions.Labor, req.Deductions.Stiching,
		req.Deductions.Munshyana, req.Deductions.Sottri, req.Deductions.Moisture,
		req.FinalAmount, toPtr(req.Remarks),
	).Scan(&id)
	if err != nil {
		return nil, storeErr("insert procurement record", err)
	}

	// Purchasing goods means the business owes money: credit the vendor.
	_, err = s.ledger.PostInTx(ctx, tx, VoucherRequest{
		Date:        req.Date,
		Type:        VoucherPurchase,
		AccountID:   req.AccountID,
		Amount:      req.FinalAmount,
		Description: fmt.Sprintf("Paddy Purchase GP#%d / %s", req.GatePassNo, req.VehicleNo),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit purchase", err)
	}

	return s.GetRecord(ctx, id)
}

// GetRecord returns a procurement record by id.
func (s *ProcurementService) GetRecord(ctx context.Context, id int) (*ProcurementRecord, error) {
	r := &ProcurementRecord{}
	err := s.pool.QueryRow(ctx, procurementSelect+" WHERE id = $1", id).Scan(procurementDest(r)...)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf("procurement record %d not found", id)
		}
		return nil, storeErr("get procurement record", err)
	}
	return r, nil
}

// ListRecords returns procurement records, newest first.
func (s *ProcurementService) ListRecords(ctx context.Context) ([]ProcurementRecord, error) {
	rows, err := s.pool.Query(ctx, procurementSelect+" ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, storeErr("list procurement records", err)
	}
	defer rows.Close()

	var records []ProcurementRecord
	for rows.Next() {
		var r ProcurementRecord
		if err := rows.Scan(procurementDest(&r)...); err != nil {
			return nil, storeErr("scan procurement record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate procurement rows", err)
	}
	return records, nil
}

const procurementSelect = `
	SELECT id, date::text, gate_pass_no, vehicle_no, driver_name, account_id,
	       item_name, lot_no, bags, bag_type,
	       gross_weight, tare_weight, net_weight, rate, amount,
	       deduction_bardana, deduction_labor, deduction_stiching,
	       deduction_munshyana, deduction_sottri, deduction_moisture,
	       final_amount, remarks, created_at
	FROM paddy_procurement`

func procurementDest(r *ProcurementRecord) []any {
	return []any{
		&r.ID, &r.Date, &r.GatePassNo, &r.VehicleNo, &r.DriverName, &r.AccountID,
		&r.ItemName, &r.LotNo, &r.Bags, &r.BagType,
		&r.GrossWeight, &r.TareWeight, &r.NetWeight, &r.Rate, &r.Amount,
		&r.Deductions.Bardana, &r.Deductions.Labor, &r.Deductions.Stiching,
		&r.Deductions.Munshyana, &r.Deductions.Sottri, &r.Deductions.Moisture,
		&r.FinalAmount, &r.Remarks, &r.CreatedAt,
	}
}

// validatePurchase re-checks the caller-supplied derived values and fills
// defaults. The transport layer has already shape-checked the request; this
// guards the accounting invariants.
func validatePurchase(req *PurchaseRequest) error {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return validationf("invalid purchase date %q", req.Date)
	}
	if req.VehicleNo == "" {
		return validationf("vehicle number is required")
	}
	if req.Bags < 1 {
		return validationf("bags must be at least 1, got %d", req.Bags)
	}
	if req.ItemName == "" {
		req.ItemName = defaultProcurementItem
	}

	if expected := req.GrossWeight.Sub(req.TareWeight); !req.NetWeight.Equal(expected) {
		return validationf("net weight %s does not equal gross %s minus tare %s",
			req.NetWeight, req.GrossWeight, req.TareWeight)
	}
	if expected := req.Amount.Sub(req.Deductions.Total()); !req.FinalAmount.Equal(expected) {
		return validationf("final amount %s does not equal amount %s minus deductions %s",
			req.FinalAmount, req.Amount, req.Deductions.Total())
	}
	return nil
}

func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
