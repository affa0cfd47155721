package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fridgepos/internal/common"
	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

// poTaxRate is fixed at 8% of subtotal, computed once at creation and never
// recalculated on later edits.
var poTaxRate = decimal.RequireFromString("0.08")

// PurchaseOrderService is the receiving side of the ledger engine: it models
// the ordered→received lifecycle of a wholesaler order and synchronizes
// inventory stock and cost basis exactly once per unit actually received.
type PurchaseOrderService interface {
	// CreatePurchaseOrder computes subtotal, tax and total cost, seeds the
	// timeline with a "PO Created" event and appends the order. Initial
	// status must be DRAFT or SENT.
	CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error

	// UpdatePurchaseOrderStatus drives the receiving state machine. With
	// receivedItems present the order moves to PARTIALLY_RECEIVED and each
	// named line's receivedQty and the matching inventory quantity grow by
	// the delta. A RECEIVED transition without receivedItems force-delivers
	// every outstanding quantity. Closed orders reject all transitions.
	UpdatePurchaseOrderStatus(ctx context.Context, poID string, status models.POStatus, receivedItems []models.ReceivedItem) error

	GetPurchaseOrderByID(ctx context.Context, poID string) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) []*models.PurchaseOrder
}

type purchaseOrderService struct {
	store *store.Store
}

// NewPurchaseOrderService creates a new purchase-order service.
func NewPurchaseOrderService(st *store.Store) PurchaseOrderService {
	return &purchaseOrderService{store: st}
}

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) error {
	if len(po.Items) == 0 {
		return fmt.Errorf("%w: purchase order needs at least one item", ErrValidation)
	}
	if po.Status == "" {
		po.Status = models.PODraft
	}
	if po.Status != models.PODraft && po.Status != models.POSent {
		return fmt.Errorf("%w: purchase orders start DRAFT or SENT, got %s", ErrValidation, po.Status)
	}
	for _, item := range po.Items {
		if item.Qty <= 0 {
			return fmt.Errorf("%w: ordered quantity must be positive for item %s", ErrValidation, item.InventoryItemID)
		}
		if item.UnitCost.IsNegative() {
			return fmt.Errorf("%w: unit cost cannot be negative for item %s", ErrValidation, item.InventoryItemID)
		}
	}
	wholesaler, ok := s.store.GetWholesaler(po.WholesalerID)
	if !ok {
		return &NotFoundError{Resource: "wholesaler", ID: po.WholesalerID}
	}

	if po.ID == "" {
		po.ID = uuid.NewString()
	}
	if po.PONumber == "" {
		po.PONumber = "PO-" + strings.ToUpper(uuid.NewString()[:8])
	}
	if po.WholesalerName == "" {
		po.WholesalerName = wholesaler.Name
	}
	if po.Date.IsZero() {
		po.Date = time.Now()
	}

	subtotal := decimal.Zero
	for i := range po.Items {
		item := &po.Items[i]
		item.ReceivedQty = 0
		item.Total = item.UnitCost.Mul(decimal.NewFromInt(int64(item.Qty)))
		subtotal = subtotal.Add(item.Total)
	}
	po.Subtotal = subtotal
	po.Tax = subtotal.Mul(poTaxRate)
	po.TotalCost = subtotal.Add(po.Tax).Add(po.Shipping).Sub(po.Discount)

	po.Timeline = []models.POTimelineEvent{{
		Date:   time.Now(),
		Status: po.Status,
		Note:   "PO Created",
		User:   common.ActorFrom(ctx),
	}}

	s.store.SavePurchaseOrder(ctx, po)
	return nil
}

func (s *purchaseOrderService) UpdatePurchaseOrderStatus(ctx context.Context, poID string, status models.POStatus, receivedItems []models.ReceivedItem) error {
	po, ok := s.store.GetPurchaseOrder(poID)
	if !ok {
		return &NotFoundError{Resource: "purchase order", ID: poID}
	}
	if !models.ValidPOStatus(status) {
		return &TransitionError{Entity: "purchase order", From: string(po.Status), To: string(status)}
	}
	if po.Status.Closed() {
		return &TransitionError{Entity: "purchase order", From: string(po.Status), To: string(status)}
	}

	if len(receivedItems) > 0 {
		return s.receivePartial(ctx, po, receivedItems)
	}
	if status == models.POReceived {
		return s.receiveAll(ctx, po)
	}
	return s.transition(ctx, po, status)
}

// receivePartial records a partial receipt. The order moves to
// PARTIALLY_RECEIVED regardless of the status the caller asked for.
func (s *purchaseOrderService) receivePartial(ctx context.Context, po *models.PurchaseOrder, receivedItems []models.ReceivedItem) error {
	if po.Status != models.POSent && po.Status != models.POPartiallyReceived {
		return &TransitionError{Entity: "purchase order", From: string(po.Status), To: string(models.POPartiallyReceived)}
	}

	// Validate the whole receipt before touching anything; there is no
	// transaction to unwind a half-applied receipt.
	lines := make(map[string]*models.POItem, len(po.Items))
	for i := range po.Items {
		lines[po.Items[i].InventoryItemID] = &po.Items[i]
	}
	// A receipt may name the same item more than once; the clamp applies to
	// the accumulated quantity, not each entry in isolation.
	requested := make(map[string]int, len(receivedItems))
	for _, rec := range receivedItems {
		if rec.Qty <= 0 {
			return fmt.Errorf("%w: received quantity must be positive for item %s", ErrValidation, rec.ItemID)
		}
		line, ok := lines[rec.ItemID]
		if !ok {
			return &NotFoundError{Resource: "purchase order line", ID: rec.ItemID}
		}
		if _, ok := s.store.GetInventoryItem(rec.ItemID); !ok {
			return &NotFoundError{Resource: "inventory item", ID: rec.ItemID}
		}
		requested[rec.ItemID] += rec.Qty
		if line.ReceivedQty+requested[rec.ItemID] > line.Qty {
			return &ExcessReceiptError{
				ItemID:    rec.ItemID,
				Ordered:   line.Qty,
				Received:  line.ReceivedQty,
				Requested: requested[rec.ItemID],
			}
		}
	}

	now := time.Now()
	for _, rec := range receivedItems {
		line := lines[rec.ItemID]
		line.ReceivedQty += rec.Qty
		s.restock(ctx, po, line, rec.Qty, now)
	}

	oldStatus := po.Status
	po.Status = models.POPartiallyReceived
	s.appendTimeline(ctx, po, oldStatus, now)
	s.store.SavePurchaseOrder(ctx, po)
	return nil
}

// receiveAll force-delivers every outstanding quantity and closes the order.
func (s *purchaseOrderService) receiveAll(ctx context.Context, po *models.PurchaseOrder) error {
	if po.Status != models.POSent && po.Status != models.POPartiallyReceived {
		return &TransitionError{Entity: "purchase order", From: string(po.Status), To: string(models.POReceived)}
	}

	now := time.Now()
	for i := range po.Items {
		line := &po.Items[i]
		// Cost basis is refreshed on completion even for lines already
		// received in full.
		s.restock(ctx, po, line, line.Outstanding(), now)
		line.ReceivedQty = line.Qty
	}

	oldStatus := po.Status
	po.Status = models.POReceived
	s.appendTimeline(ctx, po, oldStatus, now)
	s.store.SavePurchaseOrder(ctx, po)
	return nil
}

// poTransitions lists the plain transitions that carry no inventory effect.
// PARTIALLY_RECEIVED is only reachable through a receipt, never requested
// directly.
var poTransitions = map[models.POStatus][]models.POStatus{
	models.PODraft:             {models.POSent, models.POCancelled},
	models.POSent:              {models.POCancelled},
	models.POPartiallyReceived: {models.POCancelled},
}

func (s *purchaseOrderService) transition(ctx context.Context, po *models.PurchaseOrder, status models.POStatus) error {
	if status == po.Status {
		return nil
	}
	allowed := false
	for _, next := range poTransitions[po.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return &TransitionError{Entity: "purchase order", From: string(po.Status), To: string(status)}
	}

	oldStatus := po.Status
	po.Status = status
	s.appendTimeline(ctx, po, oldStatus, time.Now())
	s.store.SavePurchaseOrder(ctx, po)
	return nil
}

// restock adds qty units to inventory and overwrites the item's cost basis
// from the receiving order. Receipts for items that vanished from inventory
// were validated away earlier; completion is still lenient about them so a
// closing order cannot wedge.
func (s *purchaseOrderService) restock(ctx context.Context, po *models.PurchaseOrder, line *models.POItem, qty int, now time.Time) {
	item, ok := s.store.GetInventoryItem(line.InventoryItemID)
	if !ok {
		return
	}
	item.Qty += qty
	item.LastSupplierID = po.WholesalerID
	item.LastSupplierName = po.WholesalerName
	cost := line.UnitCost
	item.LastPurchasePrice = &cost
	item.LastPurchaseDate = &now
	s.store.SaveInventoryItem(ctx, item)
}

func (s *purchaseOrderService) appendTimeline(ctx context.Context, po *models.PurchaseOrder, oldStatus models.POStatus, now time.Time) {
	event := models.POTimelineEvent{
		Date:   now,
		Status: po.Status,
		Note:   fmt.Sprintf("Status changed from %s to %s", oldStatus, po.Status),
		User:   common.ActorFrom(ctx),
	}
	// Newest first, matching how the timeline is rendered.
	po.Timeline = append([]models.POTimelineEvent{event}, po.Timeline...)
}

func (s *purchaseOrderService) GetPurchaseOrderByID(ctx context.Context, poID string) (*models.PurchaseOrder, error) {
	po, ok := s.store.GetPurchaseOrder(poID)
	if !ok {
		return nil, &NotFoundError{Resource: "purchase order", ID: poID}
	}
	return po, nil
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context) []*models.PurchaseOrder {
	return s.store.ListPurchaseOrders()
}
