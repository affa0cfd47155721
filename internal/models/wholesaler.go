package models

// WholesalerStatus mirrors UserStatus for supplier records.
type WholesalerStatus string

const (
	WholesalerActive   WholesalerStatus = "ACTIVE"
	WholesalerInactive WholesalerStatus = "INACTIVE"
)

// Wholesaler is a supplier that purchase orders are placed with.
type Wholesaler struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Code               string           `json:"code,omitempty"`
	Contact            string           `json:"contact"`
	Phone              string           `json:"phone,omitempty"`
	Email              string           `json:"email,omitempty"`
	Address            string           `json:"address,omitempty"`
	City               string           `json:"city,omitempty"`
	ItemsSupplied      string           `json:"items_supplied,omitempty"`
	LinkedInventoryIDs []string         `json:"linked_inventory_ids,omitempty"`
	Tags               []string         `json:"tags,omitempty"`
	PaymentTerms       string           `json:"payment_terms,omitempty"`
	Status             WholesalerStatus `json:"status"`
	Notes              string           `json:"notes,omitempty"`
}
