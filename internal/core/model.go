package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType tags a ledger entry with the business event that produced it.
type VoucherType string

const (
	VoucherCashPayment  VoucherType = "CP" // cash paid out to a party
	VoucherCashReceipt  VoucherType = "CR" // cash received from a party
	VoucherBankPayment  VoucherType = "BP" // bank payment to a party
	VoucherBankReceipt  VoucherType = "BR" // bank receipt from a party
	VoucherJournal      VoucherType = "JV" // manual adjustment (posted as a debit)
	VoucherPurchase     VoucherType = "PU" // paddy purchase — vendor payable
	VoucherSalesInvoice VoucherType = "IV" // sales invoice — customer receivable
)

// ManualVoucherTypes are the types a caller may post directly. PU and IV are
// reserved for the purchase and sale composite operations.
var ManualVoucherTypes = []VoucherType{
	VoucherCashPayment, VoucherCashReceipt,
	VoucherBankPayment, VoucherBankReceipt,
	VoucherJournal,
}

// Account is one row of the externally-owned trading-partner directory.
// This engine only ever reads it.
type Account struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	LegacyPCode *string    `json:"legacy_pcode,omitempty"`
	Address     *string    `json:"address,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// LedgerEntry is one immutable journal row. Exactly one of Debit/Credit is
// non-zero (the store enforces this with a CHECK constraint). Entries are
// never updated or deleted; corrections are posted as new offsetting entries.
type LedgerEntry struct {
	ID             int             `json:"id"`
	Date           string          `json:"date"` // YYYY-MM-DD
	VoucherType    VoucherType     `json:"voucher_type"`
	VoucherNo      int             `json:"voucher_no"`
	AccountID      int             `json:"account_id"`
	AccountName    string          `json:"account_name,omitempty"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	SalesInvoiceID *int            `json:"sales_invoice_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// VoucherRequest is a user intent to move money. It has no storage identity of
// its own; posting it produces exactly one LedgerEntry.
type VoucherRequest struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Type        VoucherType     `json:"voucher_type"`
	VoucherNo   *int            `json:"voucher_no,omitempty"` // nil = engine assigns
	AccountID   int             `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`

	// salesInvoiceID links the entry to an originating invoice. Set only by
	// the sales composite via PostInTx.
	salesInvoiceID *int
}

// PostResult identifies the ledger entry a voucher produced.
type PostResult struct {
	ID        int `json:"id"`
	VoucherNo int `json:"voucher_no"`
}
