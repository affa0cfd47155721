package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the closed set of invoice payment states.
type InvoiceStatus string

const (
	InvoiceUnpaid          InvoiceStatus = "UNPAID"
	InvoicePendingApproval InvoiceStatus = "PENDING_APPROVAL"
	InvoicePaid            InvoiceStatus = "PAID"
)

// ValidInvoiceStatus reports whether s belongs to the closed status set.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceUnpaid, InvoicePendingApproval, InvoicePaid:
		return true
	}
	return false
}

// InvoiceType distinguishes single-day cash sales from multi-day credit runs.
type InvoiceType string

const (
	InvoiceSingleDay InvoiceType = "SINGLE_DAY"
	InvoiceMultiDay  InvoiceType = "MULTI_DAY"
)

// InvoiceItem is one line of a sale. Name and price are snapshots taken at
// invoice creation; later inventory edits do not rewrite history.
type InvoiceItem struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Qty      int             `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Invoice is a sale transaction. TotalAmount is immutable after creation and
// may be below the sum of line totals when a discount was applied at the
// register; only the net effect survives.
type Invoice struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Date         time.Time       `json:"date"`
	Items        []InvoiceItem   `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       InvoiceStatus   `json:"status"`
	Type         InvoiceType     `json:"type"`
	Notes        string          `json:"notes,omitempty"`

	// ProofRef points at a stored proof-of-payment object (see the proof
	// service) or holds an opaque reference supplied by the customer.
	ProofRef string `json:"proof_ref,omitempty"`
}

// IsWalkIn reports whether the invoice belongs to a non-account sale.
func (inv *Invoice) IsWalkIn() bool {
	return inv.CustomerID == WalkInCustomerID || inv.CustomerID == ""
}
