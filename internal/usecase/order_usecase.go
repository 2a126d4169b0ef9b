package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// 決済コールバック由来の操作を監査ログに残すときのactor
const actorGateway = "gateway"

// OrderUsecase は注文台帳。一覧と決済確定を持つ。
// 確定は冪等：payment=falseのときだけ副作用（カートクリア・通知）が走る。
type OrderUsecase struct {
	tx       repo.TransactionManager
	session  SessionCartStore
	gateway  PaymentGateway
	notifier Notifier
	clock    Clock
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	session SessionCartStore,
	gateway PaymentGateway,
	notifier Notifier,
	clock Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		session:  session,
		gateway:  gateway,
		notifier: notifier,
		clock:    clock,
	}
}

type OrderItemOutput struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Size     string `json:"size"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type OrderOutput struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Payment       bool              `json:"payment"`
	Amount        int64             `json:"amount"`
	Address       model.Address     `json:"address"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return err
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID string, orderID string) (OrderOutput, error) {
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return &NotFoundError{Resource: "order", ID: orderID}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// コールバック検証→確定。
// 署名不一致・未払いintentはVerificationFailure（未確定という結果）で、
// 置いた注文には触らない。確定自体の冪等性はConfirmPaymentが持つ。
func (u *OrderUsecase) VerifyGatewayCallback(ctx context.Context, paymentID string, gatewayOrderID string, signature string) (OrderOutput, error) {
	if !u.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		return OrderOutput{}, &VerificationFailure{Reason: "signature mismatch"}
	}

	intent, err := u.gateway.FetchIntent(ctx, gatewayOrderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if !intent.Paid() {
		return OrderOutput{}, &VerificationFailure{Reason: "intent not paid"}
	}

	//注文はgateway_order_idで引く。receiptの相関キー（ローカル注文ID）と
	//一致しないコールバックは未確定として弾く
	var order model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByGatewayOrderID(ctx, gatewayOrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: gatewayOrderID}
		}
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	if order.ID != intent.Receipt {
		return OrderOutput{}, &VerificationFailure{Reason: "receipt mismatch"}
	}

	return u.ConfirmPayment(ctx, order.ID, gatewayOrderID, paymentID, actorGateway)
}

// intentを取り直して支払済みなら確定する照合経路（管理者起動）。
// コールバックが落ちた注文の救済用。入口は同じConfirmPayment。
func (u *OrderUsecase) ReconcilePayment(ctx context.Context, actorAdminID string, orderID string) (OrderOutput, error) {
	var order model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if order.Payment {
		return OrderOutput{}, &ConflictError{Reason: "payment already confirmed"}
	}
	if order.PaymentMethod != model.PaymentMethodGateway || order.GatewayOrderID == "" {
		return OrderOutput{}, &ValidationError{Fields: []string{"payment_method"}}
	}

	intent, err := u.gateway.FetchIntent(ctx, order.GatewayOrderID)
	if err != nil {
		return OrderOutput{}, err
	}
	if !intent.Paid() {
		return OrderOutput{}, &VerificationFailure{Reason: "intent not paid"}
	}

	return u.ConfirmPayment(ctx, orderID, order.GatewayOrderID, intent.ID, actorAdminID)
}

// 決済確定。相関ID＝ローカル注文ID。
// payment=falseのときだけ反転する条件付き更新が冪等ガード。
// 2回目以降はConflictErrorを返し、副作用（通知・カートクリア）は走らない。
func (u *OrderUsecase) ConfirmPayment(ctx context.Context, correlationID string, gatewayOrderID string, gatewayPaymentID string, actor string) (OrderOutput, error) {
	var (
		order model.Order
		items []model.OrderItem
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, correlationID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: correlationID}
		}
		if err != nil {
			return err
		}

		if o.Payment {
			//確定済み。無視して安全
			return &ConflictError{Reason: "payment already confirmed"}
		}

		flipped, err := r.Orders().MarkPaidIfUnpaid(ctx, o.ID, gatewayOrderID, gatewayPaymentID)
		if err != nil {
			return err
		}
		if !flipped {
			//同時コールバックに先を越された
			return &ConflictError{Reason: "payment already confirmed"}
		}

		//確定待ちで置いた注文はPLACEDへ進める。
		//管理者が先に動かしていたら（0行更新）現状維持でよい
		if o.Status == model.OrderStatusPendingPayment {
			moved, err := r.Orders().UpdateStatusIfCurrent(ctx, o.ID, model.OrderStatusPendingPayment, model.OrderStatusPlaced)
			if err != nil {
				return err
			}
			if moved {
				o.Status = model.OrderStatusPlaced
			}
		}

		//決済確定まで残していたカートをここで空にする
		if err := r.Carts().DeleteBySubject(ctx, o.UserID); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor,
			Action:       model.AuditActionConfirmPayment,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   `{"payment":false}`,
			AfterJSON:    `{"payment":true}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return err
		}

		o.Payment = true
		o.GatewayOrderID = gatewayOrderID
		o.GatewayPaymentID = gatewayPaymentID
		order = o

		items, err = r.OrderItems().ListByOrderID(ctx, o.ID)
		return err
	})
	if err != nil {
		return OrderOutput{}, err
	}

	//副作用はtxがcommitできた1回だけ
	u.session.Delete(order.UserID)
	u.notifier.PaymentConfirmed(ctx, order)
	metrics.PaymentsConfirmed.Inc()

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"actor":    actor,
	}).Info("payment confirmed")

	return toOrderOutput(order, items), nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ItemID:   it.ItemID,
			Name:     it.ProductNameSnapshot,
			Size:     it.Size,
			Price:    it.UnitPriceSnapshot,
			Quantity: it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Payment:       o.Payment,
		Amount:        o.Amount,
		Address:       o.Address,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
