package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deductions itemizes the amounts withheld from a paddy purchase before the
// final payable is settled.
type Deductions struct {
	Bardana   decimal.Decimal `json:"deduction_bardana"`   // gunny bags
	Labor     decimal.Decimal `json:"deduction_labor"`     // unloading labor
	Stiching  decimal.Decimal `json:"deduction_stiching"`  // bag stitching
	Munshyana decimal.Decimal `json:"deduction_munshyana"` // broker commission
	Sottri    decimal.Decimal `json:"deduction_sottri"`
	Moisture  decimal.Decimal `json:"deduction_moisture"`
}

// Total returns the sum of all deduction heads.
func (d Deductions) Total() decimal.Decimal {
	return d.Bardana.Add(d.Labor).Add(d.Stiching).
		Add(d.Munshyana).Add(d.Sottri).Add(d.Moisture)
}

// ProcurementRecord is one weighbridge gate-pass worth of raw-material
// intake. Immutable once created; net_weight and final_amount are derived
// values re-verified on submission.
type ProcurementRecord struct {
	ID          int             `json:"id"`
	Date        string          `json:"date"`
	GatePassNo  int             `json:"gate_pass_no"`
	VehicleNo   string          `json:"vehicle_no"`
	DriverName  *string         `json:"driver_name,omitempty"`
	AccountID   int             `json:"account_id"` // vendor
	ItemName    string          `json:"item_name"`
	LotNo       int             `json:"lot_no"`
	Bags        int             `json:"bags"`
	BagType     *string         `json:"bag_type,omitempty"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	TareWeight  decimal.Decimal `json:"tare_weight"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Deductions  Deductions      `json:"deductions"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Remarks     *string         `json:"remarks,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseRequest is the validated input for the purchase composite
// operation.
type PurchaseRequest struct {
	Date        string          `json:"date"`
	GatePassNo  int             `json:"gate_pass_no"`
	VehicleNo   string          `json:"vehicle_no"`
	DriverName  string          `json:"driver_name,omitempty"`
	AccountID   int             `json:"account_id"`
	ItemName    string          `json:"item_name,omitempty"` // defaults to Basmati Paddy
	LotNo       int             `json:"lot_no,omitempty"`
	Bags        int             `json:"bags"`
	BagType     string          `json:"bag_type,omitempty"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	TareWeight  decimal.Decimal `json:"tare_weight"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	Deductions  Deductions      `json:"deductions"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	Remarks     string          `json:"remarks,omitempty"`
}
