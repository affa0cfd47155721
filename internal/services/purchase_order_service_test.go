package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"fridgepos/internal/common"
	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

type PurchaseOrderServiceTestSuite struct {
	suite.Suite
	store   *store.Store
	service PurchaseOrderService
}

func (suite *PurchaseOrderServiceTestSuite) SetupTest() {
	suite.store = store.New(nil, zerolog.Nop())
	suite.service = NewPurchaseOrderService(suite.store)

	ctx := context.Background()
	suite.store.SaveWholesaler(ctx, &models.Wholesaler{
		ID:      "ws-1",
		Name:    "Male' Trading Co",
		Contact: "Ibrahim",
		Status:  models.WholesalerActive,
	})
	suite.store.SaveInventoryItem(ctx, &models.InventoryItem{
		ID:       "item-1",
		Name:     "Mineral Water 1.5L",
		Qty:      3,
		MinStock: 5,
		Price:    decimal.NewFromInt(15),
	})
	suite.store.SaveInventoryItem(ctx, &models.InventoryItem{
		ID:    "item-2",
		Name:  "Canned Tuna",
		Qty:   0,
		Price: decimal.NewFromInt(30),
	})
}

func TestPurchaseOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseOrderServiceTestSuite))
}

func (suite *PurchaseOrderServiceTestSuite) qtyOf(itemID string) int {
	item, ok := suite.store.GetInventoryItem(itemID)
	suite.Require().True(ok)
	return item.Qty
}

func (suite *PurchaseOrderServiceTestSuite) reload(poID string) *models.PurchaseOrder {
	po, ok := suite.store.GetPurchaseOrder(poID)
	suite.Require().True(ok)
	return po
}

func newOrder(status models.POStatus, items ...models.POItem) *models.PurchaseOrder {
	return &models.PurchaseOrder{
		WholesalerID: "ws-1",
		Status:       status,
		Items:        items,
	}
}

func orderLine(itemID string, qty int, unitCost int64) models.POItem {
	return models.POItem{
		InventoryItemID: itemID,
		Qty:             qty,
		UnitCost:        decimal.NewFromInt(unitCost),
	}
}

// Scenario B pricing: 10 units at 5.00 → subtotal 50, 8% tax 4, total 54.
func (suite *PurchaseOrderServiceTestSuite) TestCreatePurchaseOrder_Totals() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))

	err := suite.service.CreatePurchaseOrder(ctx, po)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), po.Subtotal.Equal(decimal.NewFromInt(50)), "subtotal %s", po.Subtotal)
	assert.True(suite.T(), po.Tax.Equal(decimal.NewFromInt(4)), "tax %s", po.Tax)
	assert.True(suite.T(), po.TotalCost.Equal(decimal.NewFromInt(54)), "total %s", po.TotalCost)
	assert.NotEmpty(suite.T(), po.PONumber)
	assert.Equal(suite.T(), "Male' Trading Co", po.WholesalerName)
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePurchaseOrder_ShippingAndDiscount() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	po.Shipping = decimal.NewFromInt(7)
	po.Discount = decimal.NewFromInt(2)

	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	// 50 + 4 + 7 - 2
	assert.True(suite.T(), po.TotalCost.Equal(decimal.NewFromInt(59)), "total %s", po.TotalCost)
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePurchaseOrder_SeedsTimelineWithActor() {
	ctx := common.WithActor(context.Background(), "fathimath")
	po := newOrder(models.PODraft, orderLine("item-1", 4, 5))

	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	suite.Require().Len(po.Timeline, 1)
	assert.Equal(suite.T(), "PO Created", po.Timeline[0].Note)
	assert.Equal(suite.T(), models.PODraft, po.Timeline[0].Status)
	assert.Equal(suite.T(), "fathimath", po.Timeline[0].User)
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePurchaseOrder_Validation() {
	ctx := context.Background()

	err := suite.service.CreatePurchaseOrder(ctx, newOrder(models.PODraft))
	assert.ErrorIs(suite.T(), err, ErrValidation)

	err = suite.service.CreatePurchaseOrder(ctx, newOrder(models.POReceived, orderLine("item-1", 1, 5)))
	assert.ErrorIs(suite.T(), err, ErrValidation)

	err = suite.service.CreatePurchaseOrder(ctx, newOrder(models.PODraft, orderLine("item-1", 0, 5)))
	assert.ErrorIs(suite.T(), err, ErrValidation)

	bad := newOrder(models.PODraft, models.POItem{InventoryItemID: "item-1", Qty: 1, UnitCost: decimal.NewFromInt(-1)})
	err = suite.service.CreatePurchaseOrder(ctx, bad)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	ghost := newOrder(models.PODraft, orderLine("item-1", 1, 5))
	ghost.WholesalerID = "nope"
	err = suite.service.CreatePurchaseOrder(ctx, ghost)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

// Scenario B: receive 6 of 10, then complete. The completion delivers the
// remaining 4 and closes the order.
func (suite *PurchaseOrderServiceTestSuite) TestScenarioB_PartialThenComplete() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 6}})
	assert.NoError(suite.T(), err)

	got := suite.reload(po.ID)
	assert.Equal(suite.T(), models.POPartiallyReceived, got.Status)
	assert.Equal(suite.T(), 6, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), 9, suite.qtyOf("item-1")) // 3 + 6
	assert.False(suite.T(), got.FullyReceived())

	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil)
	assert.NoError(suite.T(), err)

	got = suite.reload(po.ID)
	assert.Equal(suite.T(), models.POReceived, got.Status)
	assert.Equal(suite.T(), 10, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), 13, suite.qtyOf("item-1")) // 9 + 4
	assert.True(suite.T(), got.FullyReceived())
	assert.True(suite.T(), got.Status.Closed())
}

// Stock conservation: across any receipt sequence, inventory grows by
// exactly the ordered quantity once the order closes.
func (suite *PurchaseOrderServiceTestSuite) TestStockConservationAcrossReceipts() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5), orderLine("item-2", 4, 30))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	before1, before2 := suite.qtyOf("item-1"), suite.qtyOf("item-2")

	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 3}, {ItemID: "item-2", Qty: 4}}))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 2}}))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil))

	assert.Equal(suite.T(), before1+10, suite.qtyOf("item-1"))
	assert.Equal(suite.T(), before2+4, suite.qtyOf("item-2"))
}

func (suite *PurchaseOrderServiceTestSuite) TestPartialReceipt_ExcessRejected() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 8}}))

	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 3}})
	assert.ErrorIs(suite.T(), err, ErrExcessReceipt)

	var excess *ExcessReceiptError
	suite.Require().True(errors.As(err, &excess))
	assert.Equal(suite.T(), 10, excess.Ordered)
	assert.Equal(suite.T(), 8, excess.Received)
	assert.Equal(suite.T(), 3, excess.Requested)

	// Nothing moved: receivedQty and stock both hold at 8.
	got := suite.reload(po.ID)
	assert.Equal(suite.T(), 8, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), 11, suite.qtyOf("item-1"))
}

func (suite *PurchaseOrderServiceTestSuite) TestPartialReceipt_RejectedBeforeAnyEffect() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5), orderLine("item-2", 4, 30))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	// A valid line paired with an excess line: the whole receipt is rejected.
	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 5}, {ItemID: "item-2", Qty: 5}})
	assert.ErrorIs(suite.T(), err, ErrExcessReceipt)

	got := suite.reload(po.ID)
	assert.Equal(suite.T(), 0, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), 3, suite.qtyOf("item-1"))
	assert.Equal(suite.T(), models.POSent, got.Status)
}

// Duplicate entries for one item count against the clamp as a sum, not one
// by one.
func (suite *PurchaseOrderServiceTestSuite) TestPartialReceipt_DuplicateEntriesAccumulate() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	// 6 + 6 overshoots the ordered 10 even though each entry alone fits.
	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 6}, {ItemID: "item-1", Qty: 6}})
	assert.ErrorIs(suite.T(), err, ErrExcessReceipt)

	var excess *ExcessReceiptError
	suite.Require().True(errors.As(err, &excess))
	assert.Equal(suite.T(), 12, excess.Requested)

	got := suite.reload(po.ID)
	assert.Equal(suite.T(), 0, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), models.POSent, got.Status)
	assert.Equal(suite.T(), 3, suite.qtyOf("item-1"))

	// Within the ordered quantity, duplicates are legitimate and sum.
	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 4}, {ItemID: "item-1", Qty: 4}})
	assert.NoError(suite.T(), err)

	got = suite.reload(po.ID)
	assert.Equal(suite.T(), 8, got.Items[0].ReceivedQty)
	assert.Equal(suite.T(), 11, suite.qtyOf("item-1"))
}

func (suite *PurchaseOrderServiceTestSuite) TestPartialReceipt_UnknownLineRejected() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-2", Qty: 1}})
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 0}})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *PurchaseOrderServiceTestSuite) TestReceipt_FromDraftRejected() {
	ctx := context.Background()
	po := newOrder(models.PODraft, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 1}})
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)

	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	assert.Equal(suite.T(), 3, suite.qtyOf("item-1"))
}

func (suite *PurchaseOrderServiceTestSuite) TestClosedOrdersAreImmutable() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-1", 2, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil))

	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POCancelled, nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
	// Even a same-status call is rejected once closed.
	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)

	cancelled := newOrder(models.POSent, orderLine("item-1", 2, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, cancelled))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, cancelled.ID, models.POCancelled, nil))
	err = suite.service.UpdatePurchaseOrderStatus(ctx, cancelled.ID, models.POSent, nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *PurchaseOrderServiceTestSuite) TestPlainTransitions() {
	ctx := context.Background()
	po := newOrder(models.PODraft, orderLine("item-1", 2, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))

	assert.NoError(suite.T(), suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POSent, nil))
	// Same status is a silent no-op: no timeline entry is added.
	timelineLen := len(suite.reload(po.ID).Timeline)
	assert.NoError(suite.T(), suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POSent, nil))
	assert.Len(suite.T(), suite.reload(po.ID).Timeline, timelineLen)

	// SENT cannot go back to DRAFT.
	err := suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.PODraft, nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)

	assert.NoError(suite.T(), suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POCancelled, nil))
	assert.Equal(suite.T(), models.POCancelled, suite.reload(po.ID).Status)
	// Cancellation never touches stock.
	assert.Equal(suite.T(), 3, suite.qtyOf("item-1"))
}

func (suite *PurchaseOrderServiceTestSuite) TestUnknownStatusAndOrderRejected() {
	ctx := context.Background()
	err := suite.service.UpdatePurchaseOrderStatus(ctx, "missing", models.POSent, nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	po := newOrder(models.POSent, orderLine("item-1", 2, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	err = suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POStatus("SHIPPED"), nil)
	assert.ErrorIs(suite.T(), err, ErrInvalidTransition)
}

func (suite *PurchaseOrderServiceTestSuite) TestTimelineIsNewestFirst() {
	ctx := common.WithActor(context.Background(), "ibrahim")
	po := newOrder(models.POSent, orderLine("item-1", 10, 5))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POPartiallyReceived,
		[]models.ReceivedItem{{ItemID: "item-1", Qty: 6}}))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil))

	timeline := suite.reload(po.ID).Timeline
	suite.Require().Len(timeline, 3)
	assert.Equal(suite.T(), models.POReceived, timeline[0].Status)
	assert.Equal(suite.T(), models.POPartiallyReceived, timeline[1].Status)
	assert.Equal(suite.T(), "PO Created", timeline[2].Note)
	assert.Equal(suite.T(), "Status changed from PARTIALLY_RECEIVED to RECEIVED", timeline[0].Note)
	assert.Equal(suite.T(), "ibrahim", timeline[0].User)
}

func (suite *PurchaseOrderServiceTestSuite) TestReceiptRefreshesCostBasis() {
	ctx := context.Background()
	po := newOrder(models.POSent, orderLine("item-2", 4, 28))
	suite.Require().NoError(suite.service.CreatePurchaseOrder(ctx, po))
	suite.Require().NoError(suite.service.UpdatePurchaseOrderStatus(ctx, po.ID, models.POReceived, nil))

	item, ok := suite.store.GetInventoryItem("item-2")
	suite.Require().True(ok)
	assert.Equal(suite.T(), "ws-1", item.LastSupplierID)
	assert.Equal(suite.T(), "Male' Trading Co", item.LastSupplierName)
	suite.Require().NotNil(item.LastPurchasePrice)
	assert.True(suite.T(), item.LastPurchasePrice.Equal(decimal.NewFromInt(28)))
	assert.NotNil(suite.T(), item.LastPurchaseDate)
}
