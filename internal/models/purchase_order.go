package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the closed set of purchase-order lifecycle states.
type POStatus string

const (
	PODraft             POStatus = "DRAFT"
	POSent              POStatus = "SENT"
	POPartiallyReceived POStatus = "PARTIALLY_RECEIVED"
	POReceived          POStatus = "RECEIVED"
	POCancelled         POStatus = "CANCELLED"
)

// ValidPOStatus reports whether s belongs to the closed status set.
func ValidPOStatus(s POStatus) bool {
	switch s {
	case PODraft, POSent, POPartiallyReceived, POReceived, POCancelled:
		return true
	}
	return false
}

// Closed reports whether the status is terminal; closed orders are immutable.
func (s POStatus) Closed() bool {
	return s == POReceived || s == POCancelled
}

// POItem is one ordered line. ReceivedQty accumulates monotonically across
// partial receipts and never exceeds Qty.
type POItem struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Name            string          `json:"name"`
	Qty             int             `json:"qty"`
	ReceivedQty     int             `json:"received_qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Total           decimal.Decimal `json:"total"`
}

// Outstanding is the ordered-but-unreceived quantity.
func (it *POItem) Outstanding() int {
	return it.Qty - it.ReceivedQty
}

// POTimelineEvent records one status transition. The timeline is append-only,
// newest first.
type POTimelineEvent struct {
	Date   time.Time `json:"date"`
	Status POStatus  `json:"status"`
	Note   string    `json:"note,omitempty"`
	User   string    `json:"user,omitempty"`
}

// ReceivedItem names a quantity of one item arriving in a partial receipt.
type ReceivedItem struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// PurchaseOrder is a restock order placed with a wholesaler. Tax is fixed at
// 8% of subtotal, computed once at creation and never recalculated.
type PurchaseOrder struct {
	ID                   string            `json:"id"`
	PONumber             string            `json:"po_number"`
	WholesalerID         string            `json:"wholesaler_id"`
	WholesalerName       string            `json:"wholesaler_name"`
	Date                 time.Time         `json:"date"`
	ExpectedDeliveryDate *time.Time        `json:"expected_delivery_date,omitempty"`
	Status               POStatus          `json:"status"`
	Items                []POItem          `json:"items"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	Tax                  decimal.Decimal   `json:"tax"`
	Shipping             decimal.Decimal   `json:"shipping"`
	Discount             decimal.Decimal   `json:"discount"`
	TotalCost            decimal.Decimal   `json:"total_cost"`
	Notes                string            `json:"notes,omitempty"`
	Timeline             []POTimelineEvent `json:"timeline"`
}

// FullyReceived reports whether every line has arrived in full.
func (po *PurchaseOrder) FullyReceived() bool {
	for i := range po.Items {
		if po.Items[i].Outstanding() > 0 {
			return false
		}
	}
	return true
}
