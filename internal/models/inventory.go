package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus classifies an item's stock level. It is derived, never stored.
type StockStatus string

const (
	StockOut StockStatus = "OUT_OF_STOCK"
	StockLow StockStatus = "LOW_STOCK"
	StockIn  StockStatus = "IN_STOCK"
)

// InventoryItem is a stock-keeping unit. Qty is decremented by invoice
// creation and incremented by purchase-order receipts; under the permissive
// stock policy it may go negative when a sale outruns the shelf count.
type InventoryItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Qty      int             `json:"qty"`
	MinStock int             `json:"min_stock,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Details  string          `json:"details,omitempty"`
	Category string          `json:"category,omitempty"`

	// Cost basis, overwritten on every purchase-order receipt.
	LastSupplierID    string           `json:"last_supplier_id,omitempty"`
	LastSupplierName  string           `json:"last_supplier_name,omitempty"`
	LastPurchasePrice *decimal.Decimal `json:"last_purchase_price,omitempty"`
	LastPurchaseDate  *time.Time       `json:"last_purchase_date,omitempty"`
}

// StockStatus recomputes the classification from the current quantity.
func (i *InventoryItem) StockStatus() StockStatus {
	switch {
	case i.Qty <= 0:
		return StockOut
	case i.MinStock > 0 && i.Qty <= i.MinStock:
		return StockLow
	default:
		return StockIn
	}
}
