package services

import "fridgepos/internal/store"

// Engine bundles the command/query surface the presentation layer consumes.
// It is handed to screens by dependency injection; nothing in here is a
// process-wide singleton, so tests can stand up as many engines as they
// like.
type Engine struct {
	Store          *store.Store
	Invoices       InvoiceService
	PurchaseOrders PurchaseOrderService
	Auth           AuthService
	Notifications  NotificationService
	Deliveries     DeliveryService

	// Proofs is nil when proof-of-payment storage is not configured.
	Proofs ProofService
}

// NewEngine wires the ledger services over a shared store.
func NewEngine(st *store.Store, proofs ProofService) *Engine {
	return &Engine{
		Store:          st,
		Invoices:       NewInvoiceService(st),
		PurchaseOrders: NewPurchaseOrderService(st),
		Auth:           NewAuthService(st),
		Notifications:  NewNotificationService(st),
		Deliveries:     NewDeliveryService(st),
		Proofs:         proofs,
	}
}
