package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionBatch is one milling run: paddy in, graded outputs out. Batches
// never touch the financial ledger; they exist for stock reconciliation and
// yield reporting.
type ProductionBatch struct {
	ID        int     `json:"id"`
	Date      string  `json:"date"`
	BatchNo   int     `json:"batch_no"`
	MachineNo *string `json:"machine_no,omitempty"`

	InputItem string          `json:"input_item"`
	InputQty  decimal.Decimal `json:"input_qty"` // kg consumed
	InputBags int             `json:"input_bags"`

	OutputHeadRice   decimal.Decimal `json:"output_head_rice"`
	OutputBrokenRice decimal.Decimal `json:"output_broken_rice"`
	OutputBran       decimal.Decimal `json:"output_bran"`
	OutputHusk       decimal.Decimal `json:"output_husk"`
	OutputDirt       decimal.Decimal `json:"output_dirt"` // impurities, not stocked

	Remarks   *string   `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TotalOutput returns the stocked output mass (dirt excluded).
func (b ProductionBatch) TotalOutput() decimal.Decimal {
	return b.OutputHeadRice.Add(b.OutputBrokenRice).Add(b.OutputBran).Add(b.OutputHusk)
}

// BatchRequest is the validated input for recording a milling run.
type BatchRequest struct {
	Date      string `json:"date"`
	BatchNo   int    `json:"batch_no,omitempty"` // 0 = engine assigns
	MachineNo string `json:"machine_no,omitempty"`

	InputItem string          `json:"input_item,omitempty"` // defaults to Basmati Paddy
	InputQty  decimal.Decimal `json:"input_qty"`
	InputBags int             `json:"input_bags"`

	OutputHeadRice   decimal.Decimal `json:"output_head_rice"`
	OutputBrokenRice decimal.Decimal `json:"output_broken_rice"`
	OutputBran       decimal.Decimal `json:"output_bran"`
	OutputHusk       decimal.Decimal `json:"output_husk"`
	OutputDirt       decimal.Decimal `json:"output_dirt"`

	Remarks string `json:"remarks,omitempty"`
}
