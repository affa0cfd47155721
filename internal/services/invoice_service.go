package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

// InvoiceService is the invoice side of the ledger engine. It maintains the
// accounting identity
//
//	customer.CurrentBalance == Σ(totalAmount of non-PAID invoices)
//
// and keeps inventory quantities consistent with what has been invoiced.
type InvoiceService interface {
	// CreateInvoice appends a fully-formed invoice, adds its total to the
	// customer's balance (walk-in sales excluded) and decrements inventory
	// for every line. The balance is charged even when the invoice is
	// created already PAID; only a transition into PAID settles a charge,
	// so a PAID-created invoice keeps its charge on the balance.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// UpdateInvoiceStatus moves an invoice through
	// UNPAID ⇄ PENDING_APPROVAL → PAID with PAID → UNPAID as the reversal
	// path. Transitioning into PAID settles the balance once; leaving PAID
	// re-charges it. A same-status call only updates the proof reference.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus, proofRef string) error

	GetInvoiceByID(ctx context.Context, invoiceID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context) []*models.Invoice
	ListInvoicesByCustomer(ctx context.Context, customerID string) []*models.Invoice

	// ListUnpaidByCustomer returns the customer's invoices still carrying a
	// balance, i.e. everything not PAID.
	ListUnpaidByCustomer(ctx context.Context, customerID string) []*models.Invoice

	// OutstandingBalance derives the sum of non-PAID invoice totals for a
	// customer. Modulo administrative overrides it equals the customer's
	// CurrentBalance.
	OutstandingBalance(ctx context.Context, customerID string) decimal.Decimal
}

type invoiceService struct {
	store *store.Store
}

// NewInvoiceService creates a new invoice ledger service.
func NewInvoiceService(st *store.Store) InvoiceService {
	return &invoiceService{store: st}
}

// validateNewInvoice runs every check before the first mutation. There is no
// transaction to roll back, so nothing may fail once effects start applying.
func (s *invoiceService) validateNewInvoice(invoice *models.Invoice) error {
	if len(invoice.Items) == 0 {
		return fmt.Errorf("%w: invoice needs at least one line item", ErrValidation)
	}
	if invoice.Status != models.InvoiceUnpaid && invoice.Status != models.InvoicePaid {
		return fmt.Errorf("%w: new invoices start UNPAID or PAID, got %s", ErrValidation, invoice.Status)
	}
	if invoice.TotalAmount.IsNegative() {
		return fmt.Errorf("%w: total amount cannot be negative", ErrValidation)
	}
	for _, line := range invoice.Items {
		if line.Qty <= 0 {
			return fmt.Errorf("%w: line quantity must be positive for item %s", ErrValidation, line.ItemID)
		}
		if _, ok := s.store.GetInventoryItem(line.ItemID); !ok {
			return &NotFoundError{Resource: "inventory item", ID: line.ItemID}
		}
	}
	if !invoice.IsWalkIn() {
		if _, ok := s.store.GetUser(invoice.CustomerID); !ok {
			return &NotFoundError{Resource: "customer", ID: invoice.CustomerID}
		}
	}
	return nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if err := s.validateNewInvoice(invoice); err != nil {
		return err
	}

	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if invoice.Date.IsZero() {
		invoice.Date = time.Now()
	}
	if invoice.Type == "" {
		invoice.Type = models.InvoiceSingleDay
	}

	s.store.SaveInvoice(ctx, invoice)

	// The balance is charged unconditionally, including for invoices
	// created already PAID. No stock floor: a sale that outruns the shelf
	// count drives the quantity negative.
	if !invoice.IsWalkIn() {
		if customer, ok := s.store.GetUser(invoice.CustomerID); ok {
			customer.CurrentBalance = customer.CurrentBalance.Add(invoice.TotalAmount)
			s.store.SaveUser(ctx, customer)
			if invoice.CustomerName == "" {
				invoice.CustomerName = customer.Name
				s.store.SaveInvoice(ctx, invoice)
			}
		}
	}
	for _, line := range invoice.Items {
		if item, ok := s.store.GetInventoryItem(line.ItemID); ok {
			item.Qty -= line.Qty
			s.store.SaveInventoryItem(ctx, item)
		}
	}

	return nil
}

// invoiceTransitions is the closed state machine. PENDING_APPROVAL is entered
// when a customer attaches a proof of payment; an approver resolves it to
// PAID or back to UNPAID.
var invoiceTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoiceUnpaid:          {models.InvoicePendingApproval, models.InvoicePaid},
	models.InvoicePendingApproval: {models.InvoicePaid, models.InvoiceUnpaid},
	models.InvoicePaid:            {models.InvoiceUnpaid},
}

func validInvoiceTransition(from, to models.InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status models.InvoiceStatus, proofRef string) error {
	invoice, ok := s.store.GetInvoice(invoiceID)
	if !ok {
		return &NotFoundError{Resource: "invoice", ID: invoiceID}
	}
	if !models.ValidInvoiceStatus(status) {
		return &TransitionError{Entity: "invoice", From: string(invoice.Status), To: string(status)}
	}

	// Same status: proof update only, no balance effect.
	if status == invoice.Status {
		if proofRef != "" {
			invoice.ProofRef = proofRef
			s.store.SaveInvoice(ctx, invoice)
		}
		return nil
	}

	if !validInvoiceTransition(invoice.Status, status) {
		return &TransitionError{Entity: "invoice", From: string(invoice.Status), To: string(status)}
	}

	wasPaid := invoice.Status == models.InvoicePaid
	invoice.Status = status
	if proofRef != "" {
		invoice.ProofRef = proofRef
	}
	s.store.SaveInvoice(ctx, invoice)

	// Balance moves only when the PAID boundary is crossed, exactly once
	// per crossing. The customer lookup stays lenient: the invoice is the
	// command's target, and accounts removed by an administrator should
	// not wedge its lifecycle.
	if invoice.IsWalkIn() {
		return nil
	}
	customer, ok := s.store.GetUser(invoice.CustomerID)
	if !ok {
		return nil
	}
	switch {
	case status == models.InvoicePaid && !wasPaid:
		customer.CurrentBalance = customer.CurrentBalance.Sub(invoice.TotalAmount)
		s.store.SaveUser(ctx, customer)
	case wasPaid && status != models.InvoicePaid:
		customer.CurrentBalance = customer.CurrentBalance.Add(invoice.TotalAmount)
		s.store.SaveUser(ctx, customer)
	}

	return nil
}

func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	invoice, ok := s.store.GetInvoice(invoiceID)
	if !ok {
		return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) []*models.Invoice {
	return s.store.ListInvoices()
}

func (s *invoiceService) ListInvoicesByCustomer(ctx context.Context, customerID string) []*models.Invoice {
	return s.store.ListInvoicesByCustomer(customerID)
}

func (s *invoiceService) ListUnpaidByCustomer(ctx context.Context, customerID string) []*models.Invoice {
	var out []*models.Invoice
	for _, invoice := range s.store.ListInvoicesByCustomer(customerID) {
		if invoice.Status != models.InvoicePaid {
			out = append(out, invoice)
		}
	}
	return out
}

func (s *invoiceService) OutstandingBalance(ctx context.Context, customerID string) decimal.Decimal {
	total := decimal.Zero
	for _, invoice := range s.ListUnpaidByCustomer(ctx, customerID) {
		total = total.Add(invoice.TotalAmount)
	}
	return total
}
