package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoiceItem is one line of an invoice. Amount is quantity × rate,
// re-verified on submission.
type SalesInvoiceItem struct {
	ID       int             `json:"id"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"` // defaults to kg
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// SalesInvoice is a dispatch of finished goods to a customer. Creating one
// also posts an IV debit against the customer for the final amount; the ledger
// entry carries the invoice id so statements can link back here.
type SalesInvoice struct {
	ID             int                `json:"id"`
	InvoiceNo      string             `json:"invoice_no"`
	Date           string             `json:"date"`
	AccountID      int                `json:"account_id"` // customer
	Items          []SalesInvoiceItem `json:"items"`
	TotalAmount    decimal.Decimal    `json:"total_amount"` // Σ item amounts
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	FinalAmount    decimal.Decimal    `json:"final_amount"` // total − discount
	Status         string             `json:"status"`
	Remarks        *string            `json:"remarks,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// InvoiceItemRequest is one requested invoice line.
type InvoiceItemRequest struct {
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
}

// InvoiceRequest is the validated input for the sale composite operation.
type InvoiceRequest struct {
	InvoiceNo      string               `json:"invoice_no"`
	Date           string               `json:"date"`
	AccountID      int                  `json:"account_id"`
	Items          []InvoiceItemRequest `json:"items"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	FinalAmount    decimal.Decimal      `json:"final_amount"`
	Remarks        string               `json:"remarks,omitempty"`
}
