package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

// DeliveryService handles delivery requests raised by delivery customers.
// Requests snapshot the customer's delivery profile at submission time.
type DeliveryService interface {
	// CreateRequest validates that the customer exists, holds the delivery
	// role and has a complete delivery profile, then records the request
	// as PENDING.
	CreateRequest(ctx context.Context, customerID, invoiceID, notes string) (*models.DeliveryRequest, error)

	// UpdateStatus moves a request PENDING → APPROVED|REJECTED and
	// APPROVED → DELIVERED. Terminal states reject further updates.
	UpdateStatus(ctx context.Context, requestID string, status models.DeliveryStatus) error

	ListByCustomer(ctx context.Context, customerID string) []*models.DeliveryRequest
}

type deliveryService struct {
	store *store.Store
}

func NewDeliveryService(st *store.Store) DeliveryService {
	return &deliveryService{store: st}
}

func (s *deliveryService) CreateRequest(ctx context.Context, customerID, invoiceID, notes string) (*models.DeliveryRequest, error) {
	customer, ok := s.store.GetUser(customerID)
	if !ok {
		return nil, &NotFoundError{Resource: "customer", ID: customerID}
	}
	if customer.Role != models.RoleCustomerDelivery {
		return nil, fmt.Errorf("%w: only delivery customers can request delivery", ErrValidation)
	}
	if !customer.HasDeliveryProfile() {
		return nil, fmt.Errorf("%w: delivery profile is incomplete", ErrValidation)
	}
	if invoiceID != "" {
		if _, ok := s.store.GetInvoice(invoiceID); !ok {
			return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
		}
	}
	if notes == "" {
		notes = customer.DeliveryNotes
	}

	request := &models.DeliveryRequest{
		ID:                  uuid.NewString(),
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		InvoiceID:           invoiceID,
		Date:                time.Now(),
		Status:              models.DeliveryPending,
		DeliveryAddressLine: customer.DeliveryAddressLine,
		DeliveryArea:        customer.DeliveryArea,
		DeliveryCity:        customer.DeliveryCity,
		Notes:               notes,
	}
	s.store.SaveDeliveryRequest(ctx, request)
	return request, nil
}

var deliveryTransitions = map[models.DeliveryStatus][]models.DeliveryStatus{
	models.DeliveryPending:  {models.DeliveryApproved, models.DeliveryRejected},
	models.DeliveryApproved: {models.DeliveryDelivered},
}

func (s *deliveryService) UpdateStatus(ctx context.Context, requestID string, status models.DeliveryStatus) error {
	request, ok := s.store.GetDeliveryRequest(requestID)
	if !ok {
		return &NotFoundError{Resource: "delivery request", ID: requestID}
	}
	if status == request.Status {
		return nil
	}
	allowed := false
	for _, next := range deliveryTransitions[request.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return &TransitionError{Entity: "delivery request", From: string(request.Status), To: string(status)}
	}
	request.Status = status
	s.store.SaveDeliveryRequest(ctx, request)
	return nil
}

func (s *deliveryService) ListByCustomer(ctx context.Context, customerID string) []*models.DeliveryRequest {
	return s.store.ListDeliveryRequestsByCustomer(customerID)
}
