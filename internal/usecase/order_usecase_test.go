package usecase

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderFixture struct {
	session    *sessionStub
	tx         *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	carts      *CartRepoMock
	audit      *AuditRepoMock
	gateway    *GatewayMock
	notifier   *NotifierMock
	uc         *OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		session:    newSessionStub(),
		tx:         new(TxManagerMock),
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		carts:      new(CartRepoMock),
		audit:      new(AuditRepoMock),
		gateway:    new(GatewayMock),
		notifier:   new(NotifierMock),
	}
	f.tx.Repos = &TxReposMock{
		orders:     f.orders,
		orderItems: f.orderItems,
		carts:      f.carts,
		auditLogs:  f.audit,
	}
	f.uc = NewOrderUsecase(
		f.tx, f.session, f.gateway, f.notifier,
		&stubClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
	)
	return f
}

func pendingGatewayOrder() model.Order {
	return model.Order{
		ID:             "order-1",
		UserID:         "user-1",
		Amount:         1040,
		PaymentMethod:  model.PaymentMethodGateway,
		Payment:        false,
		Status:         model.OrderStatusPendingPayment,
		GatewayOrderID: "gw-1",
	}
}

func TestConfirmPayment_FlipsOnce(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByID", mock.Anything, "order-1").Return(pendingGatewayOrder(), nil)
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, "order-1", "gw-1", "pay-1").Return(true, nil)
	f.orders.On("UpdateStatusIfCurrent", mock.Anything, "order-1", model.OrderStatusPendingPayment, model.OrderStatusPlaced).Return(true, nil)
	f.carts.On("DeleteBySubject", mock.Anything, "user-1").Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		return a.Action == model.AuditActionConfirmPayment &&
			a.ActorUserID == "gateway" &&
			a.ResourceID == "order-1" &&
			a.BeforeJSON == `{"payment":false}` &&
			a.AfterJSON == `{"payment":true}`
	})).Return(nil)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return()
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := f.uc.ConfirmPayment(context.Background(), "order-1", "gw-1", "pay-1", "gateway")

	assert.NoError(t, err)
	assert.True(t, out.Payment)
	assert.Equal(t, "PLACED", out.Status)

	f.orders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
	f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
}

func TestConfirmPayment_SecondCall_Conflict_NoSideEffects(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	paid := pendingGatewayOrder()
	paid.Payment = true
	paid.Status = model.OrderStatusPlaced
	f.orders.On("FindByID", mock.Anything, "order-1").Return(paid, nil)

	_, err := f.uc.ConfirmPayment(context.Background(), "order-1", "gw-1", "pay-1", "gateway")

	_, ok := AsConflictError(err)
	assert.True(t, ok)

	//2回目は通知もカートクリアも走らない
	f.orders.AssertNotCalled(t, "MarkPaidIfUnpaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.carts.AssertNotCalled(t, "DeleteBySubject", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
}

func TestConfirmPayment_LostRace_Conflict(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByID", mock.Anything, "order-1").Return(pendingGatewayOrder(), nil)
	//読んだ後に同時コールバックへ先を越された
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, "order-1", "gw-1", "pay-1").Return(false, nil)

	_, err := f.uc.ConfirmPayment(context.Background(), "order-1", "gw-1", "pay-1", "gateway")

	_, ok := AsConflictError(err)
	assert.True(t, ok)
	f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
}

func TestConfirmPayment_StatusMovedByAdmin_NotOverwritten(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByID", mock.Anything, "order-1").Return(pendingGatewayOrder(), nil)
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, "order-1", "gw-1", "pay-1").Return(true, nil)
	//管理者が先にステータスを動かしていた（0行更新）
	f.orders.On("UpdateStatusIfCurrent", mock.Anything, "order-1", model.OrderStatusPendingPayment, model.OrderStatusPlaced).Return(false, nil)
	f.carts.On("DeleteBySubject", mock.Anything, "user-1").Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return()
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := f.uc.ConfirmPayment(context.Background(), "order-1", "gw-1", "pay-1", "gateway")

	assert.NoError(t, err)
	assert.True(t, out.Payment)
	//動かせなかったときにPLACEDと偽らない
	assert.Equal(t, "PENDING_PAYMENT", out.Status)
}

func TestConfirmPayment_UnknownOrder_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByID", mock.Anything, "order-x").Return(model.Order{}, repo.ErrNotFound)

	_, err := f.uc.ConfirmPayment(context.Background(), "order-x", "gw-1", "pay-1", "gateway")

	_, ok := AsNotFoundError(err)
	assert.True(t, ok)
}

func TestVerifyGatewayCallback_BadSignature(t *testing.T) {
	f := newOrderFixture()
	f.gateway.On("VerifySignature", "gw-1", "pay-1", "bad-sig").Return(false)

	_, err := f.uc.VerifyGatewayCallback(context.Background(), "pay-1", "gw-1", "bad-sig")

	_, ok := AsVerificationFailure(err)
	assert.True(t, ok)
	f.gateway.AssertNotCalled(t, "FetchIntent", mock.Anything, mock.Anything)
}

func TestVerifyGatewayCallback_UnpaidIntent(t *testing.T) {
	f := newOrderFixture()
	f.gateway.On("VerifySignature", "gw-1", "pay-1", "sig").Return(true)
	f.gateway.On("FetchIntent", mock.Anything, "gw-1").Return(PaymentIntent{
		ID:      "gw-1",
		Receipt: "order-1",
		Status:  "created",
	}, nil)

	_, err := f.uc.VerifyGatewayCallback(context.Background(), "pay-1", "gw-1", "sig")

	_, ok := AsVerificationFailure(err)
	assert.True(t, ok)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestVerifyGatewayCallback_Success_ConfirmsViaReceipt(t *testing.T) {
	f := newOrderFixture()
	f.gateway.On("VerifySignature", "gw-1", "pay-1", "sig").Return(true)
	f.gateway.On("FetchIntent", mock.Anything, "gw-1").Return(PaymentIntent{
		ID:      "gw-1",
		Receipt: "order-1", //←相関キーはローカル注文ID
		Status:  "paid",
	}, nil)

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByGatewayOrderID", mock.Anything, "gw-1").Return(pendingGatewayOrder(), nil)
	f.orders.On("FindByID", mock.Anything, "order-1").Return(pendingGatewayOrder(), nil)
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, "order-1", "gw-1", "pay-1").Return(true, nil)
	f.orders.On("UpdateStatusIfCurrent", mock.Anything, "order-1", model.OrderStatusPendingPayment, model.OrderStatusPlaced).Return(true, nil)
	f.carts.On("DeleteBySubject", mock.Anything, "user-1").Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return()
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := f.uc.VerifyGatewayCallback(context.Background(), "pay-1", "gw-1", "sig")

	assert.NoError(t, err)
	assert.True(t, out.Payment)
	f.orders.AssertCalled(t, "FindByGatewayOrderID", mock.Anything, "gw-1")
}

func TestVerifyGatewayCallback_UnknownGatewayOrder_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.gateway.On("VerifySignature", "gw-x", "pay-1", "sig").Return(true)
	f.gateway.On("FetchIntent", mock.Anything, "gw-x").Return(PaymentIntent{
		ID:      "gw-x",
		Receipt: "order-1",
		Status:  "paid",
	}, nil)

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByGatewayOrderID", mock.Anything, "gw-x").Return(model.Order{}, repo.ErrNotFound)

	_, err := f.uc.VerifyGatewayCallback(context.Background(), "pay-1", "gw-x", "sig")

	_, ok := AsNotFoundError(err)
	assert.True(t, ok)
	f.orders.AssertNotCalled(t, "MarkPaidIfUnpaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyGatewayCallback_ReceiptMismatch_Rejected(t *testing.T) {
	f := newOrderFixture()
	f.gateway.On("VerifySignature", "gw-1", "pay-1", "sig").Return(true)
	//intentのreceiptが別注文を指している
	f.gateway.On("FetchIntent", mock.Anything, "gw-1").Return(PaymentIntent{
		ID:      "gw-1",
		Receipt: "order-9",
		Status:  "paid",
	}, nil)

	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.orders.On("FindByGatewayOrderID", mock.Anything, "gw-1").Return(pendingGatewayOrder(), nil)

	_, err := f.uc.VerifyGatewayCallback(context.Background(), "pay-1", "gw-1", "sig")

	_, ok := AsVerificationFailure(err)
	assert.True(t, ok)
	f.orders.AssertNotCalled(t, "MarkPaidIfUnpaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything)
}

func TestReconcilePayment_AlreadyPaid_Conflict(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	paid := pendingGatewayOrder()
	paid.Payment = true
	f.orders.On("FindByID", mock.Anything, "order-1").Return(paid, nil)

	_, err := f.uc.ReconcilePayment(context.Background(), "admin-1", "order-1")

	_, ok := AsConflictError(err)
	assert.True(t, ok)
	f.gateway.AssertNotCalled(t, "FetchIntent", mock.Anything, mock.Anything)
}

func TestReconcilePayment_CODOrder_Rejected(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	cod := pendingGatewayOrder()
	cod.PaymentMethod = model.PaymentMethodCOD
	cod.GatewayOrderID = ""
	f.orders.On("FindByID", mock.Anything, "order-1").Return(cod, nil)

	_, err := f.uc.ReconcilePayment(context.Background(), "admin-1", "order-1")

	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Contains(t, ve.Fields, "payment_method")
}

func TestReconcilePayment_PaidIntent_ConfirmsWithAdminActor(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	f.orders.On("FindByID", mock.Anything, "order-1").Return(pendingGatewayOrder(), nil)
	f.gateway.On("FetchIntent", mock.Anything, "gw-1").Return(PaymentIntent{
		ID:      "gw-1",
		Receipt: "order-1",
		Status:  "paid",
	}, nil)
	f.orders.On("MarkPaidIfUnpaid", mock.Anything, "order-1", "gw-1", "gw-1").Return(true, nil)
	f.orders.On("UpdateStatusIfCurrent", mock.Anything, "order-1", model.OrderStatusPendingPayment, model.OrderStatusPlaced).Return(true, nil)
	f.carts.On("DeleteBySubject", mock.Anything, "user-1").Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(a model.AuditLog) bool {
		//照合経路では操作した管理者が残る
		return a.ActorUserID == "admin-1" && a.Action == model.AuditActionConfirmPayment
	})).Return(nil)
	f.notifier.On("PaymentConfirmed", mock.Anything, mock.Anything).Return()
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{}, nil)

	out, err := f.uc.ReconcilePayment(context.Background(), "admin-1", "order-1")

	assert.NoError(t, err)
	assert.True(t, out.Payment)
	f.audit.AssertExpectations(t)
}

func TestGetMyOrderDetail_OtherUsersOrder_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	other := pendingGatewayOrder()
	other.UserID = "user-2"
	f.orders.On("FindByID", mock.Anything, "order-1").Return(other, nil)

	_, err := f.uc.GetMyOrderDetail(context.Background(), "user-1", "order-1")

	//他人の注文は存在しない扱い
	_, ok := AsNotFoundError(err)
	assert.True(t, ok)
	f.orderItems.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestListMyOrders_IncludesItems(t *testing.T) {
	f := newOrderFixture()
	f.tx.On("WithinTx", mock.Anything).Return(nil)

	orders := []model.Order{
		{ID: "order-1", UserID: "user-1", Status: model.OrderStatusPlaced},
		{ID: "order-2", UserID: "user-1", Status: model.OrderStatusShipped},
	}
	f.orders.On("ListByUserID", mock.Anything, "user-1", 1, 50).Return(orders, int64(2), nil)
	f.orderItems.On("ListByOrderID", mock.Anything, "order-1").Return([]model.OrderItem{
		{ItemID: "item-a", Size: "M", UnitPriceSnapshot: 500, Quantity: 2},
	}, nil)
	f.orderItems.On("ListByOrderID", mock.Anything, "order-2").Return([]model.OrderItem{}, nil)

	outs, err := f.uc.ListMyOrders(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))
	assert.Equal(t, 1, len(outs[0].Items))
	assert.Equal(t, int64(500), outs[0].Items[0].Price)
}
