package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherProposal is an AI-suggested voucher. Amounts travel as strings
// because the model emits them as text; Validate parses and checks them. A
// proposal is never posted without human review.
type VoucherProposal struct {
	Date        string  `json:"date" jsonschema_description:"Voucher date in YYYY-MM-DD format"`
	VoucherType string  `json:"voucher_type" jsonschema:"enum=CP,enum=CR,enum=BP,enum=BR,enum=JV" jsonschema_description:"Voucher type code"`
	AccountID   int     `json:"account_id" jsonschema_description:"The id of the account from the provided directory"`
	AccountName string  `json:"account_name" jsonschema_description:"The name of the chosen account, verbatim from the directory"`
	Amount      string  `json:"amount" jsonschema_description:"Amount as a plain decimal string, e.g. 15000.00"`
	Description string  `json:"description" jsonschema_description:"Short narration for the ledger entry"`
	Reasoning   string  `json:"reasoning" jsonschema_description:"Why this type, account, and amount were chosen"`
	Confidence  float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

// Normalize cleans up model output, dealing with common formatting issues.
func (p *VoucherProposal) Normalize() {
	p.VoucherType = strings.ToUpper(strings.TrimSpace(p.VoucherType))
	p.Date = strings.TrimSpace(p.Date)
	p.Amount = strings.TrimSpace(strings.ReplaceAll(p.Amount, ",", ""))
	if strings.EqualFold(p.Amount, "null") {
		p.Amount = ""
	}
	if p.Date == "" {
		p.Date = time.Now().Format("2006-01-02")
	}
}

// Validate enforces posting rules on the proposal before it is shown to the
// user.
func (p *VoucherProposal) Validate() error {
	if err := RequireManualType(VoucherType(p.VoucherType)); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return validationf("invalid proposal date %q", p.Date)
	}
	if p.AccountID <= 0 {
		return validationf("proposal must reference an account")
	}

	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return validationf("invalid proposal amount %q", p.Amount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return validationf("proposal amount must be positive, got %s", amount)
	}
	return nil
}

// ToRequest converts a validated proposal into a postable voucher request.
func (p *VoucherProposal) ToRequest() (VoucherRequest, error) {
	if err := p.Validate(); err != nil {
		return VoucherRequest{}, err
	}
	amount, _ := decimal.NewFromString(p.Amount)
	return VoucherRequest{
		Date:        p.Date,
		Type:        VoucherType(p.VoucherType),
		AccountID:   p.AccountID,
		Amount:      amount,
		Description: p.Description,
	}, nil
}

// RequireManualType rejects voucher types reserved for the purchase and sale
// composites.
func RequireManualType(t VoucherType) error {
	for _, mt := range ManualVoucherTypes {
		if t == mt {
			return nil
		}
	}
	return validationf("voucher type %q cannot be posted directly", t)
}
