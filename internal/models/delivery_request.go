package models

import "time"

// DeliveryStatus is the closed set of delivery request states.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliveryApproved  DeliveryStatus = "APPROVED"
	DeliveryRejected  DeliveryStatus = "REJECTED"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

// DeliveryRequest asks the shop to deliver against an existing invoice.
// The address fields are snapshots of the customer's delivery profile at
// request time.
type DeliveryRequest struct {
	ID           string         `json:"id"`
	CustomerID   string         `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	InvoiceID    string         `json:"invoice_id,omitempty"`
	Date         time.Time      `json:"date"`
	Status       DeliveryStatus `json:"status"`

	DeliveryAddressLine string `json:"delivery_address_line"`
	DeliveryArea        string `json:"delivery_area"`
	DeliveryCity        string `json:"delivery_city"`
	Notes               string `json:"notes,omitempty"`
}
