package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

type MockProofService struct {
	mock.Mock
}

func (m *MockProofService) UploadProof(ctx context.Context, invoiceID string, reader io.Reader, size int64) (string, error) {
	args := m.Called(ctx, invoiceID, reader, size)
	return args.String(0), args.Error(1)
}

func (m *MockProofService) ProofURL(objectName string, expiry time.Duration) (string, error) {
	args := m.Called(objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockProofService) DeleteProof(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

type EngineTestSuite struct {
	suite.Suite
	engine *Engine
	proofs *MockProofService
}

func (suite *EngineTestSuite) SetupTest() {
	st := store.New(nil, zerolog.Nop())
	suite.proofs = new(MockProofService)
	suite.engine = NewEngine(st, suite.proofs)

	ctx := context.Background()
	st.SaveUser(ctx, &models.User{
		ID:          "cust-1",
		Name:        "Ahmed Waheed",
		Username:    "ahmed",
		Role:        models.RoleCustomerInHouse,
		CreditLimit: decimal.NewFromInt(500),
		Status:      models.UserActive,
	})
	st.SaveInventoryItem(ctx, &models.InventoryItem{
		ID: "item-1", Name: "Mineral Water 1.5L", Qty: 20, Price: decimal.NewFromInt(15),
	})
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

// Customer uploads a proof image, then attaches the returned reference while
// moving the invoice to PENDING_APPROVAL.
func (suite *EngineTestSuite) TestProofUploadFlow() {
	ctx := context.Background()
	price := decimal.NewFromInt(15)
	invoice := &models.Invoice{
		CustomerID:  "cust-1",
		Items:       []models.InvoiceItem{{ItemID: "item-1", Qty: 2, Price: price, Total: price.Mul(decimal.NewFromInt(2))}},
		TotalAmount: decimal.NewFromInt(30),
		Status:      models.InvoiceUnpaid,
	}
	suite.Require().NoError(suite.engine.Invoices.CreateInvoice(ctx, invoice))

	image := bytes.NewBufferString("not really a jpeg")
	suite.proofs.On("UploadProof", ctx, invoice.ID, image, int64(image.Len())).
		Return(invoice.ID+"/1700000000", nil)

	objectName, err := suite.engine.Proofs.UploadProof(ctx, invoice.ID, image, int64(image.Len()))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.engine.Invoices.UpdateInvoiceStatus(ctx, invoice.ID, models.InvoicePendingApproval, objectName))

	got, err := suite.engine.Invoices.GetInvoiceByID(ctx, invoice.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), objectName, got.ProofRef)
	assert.Equal(suite.T(), models.InvoicePendingApproval, got.Status)
	suite.proofs.AssertExpectations(suite.T())
}

func (suite *EngineTestSuite) TestEngineWiresEveryService() {
	assert.NotNil(suite.T(), suite.engine.Invoices)
	assert.NotNil(suite.T(), suite.engine.PurchaseOrders)
	assert.NotNil(suite.T(), suite.engine.Auth)
	assert.NotNil(suite.T(), suite.engine.Notifications)
	assert.NotNil(suite.T(), suite.engine.Deliveries)
}
