package usecase

import (
	"context"
	"errors"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"
	"app/internal/validator"

	log "github.com/sirupsen/logrus"
)

// 送料（小計に1回だけ足す固定額）
const ShippingFee int64 = 40

// 決済通貨
const Currency = "INR"

// CheckoutUsecase はカートを注文に変換する。
// 明細はこの瞬間のカタログ価格でスナップショットし、以後再計算しない。
type CheckoutUsecase struct {
	tx          repo.TransactionManager
	session     SessionCartStore
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	orderRepo   repo.OrderRepository
	gateway     PaymentGateway
	notifier    Notifier
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	session SessionCartStore,
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	orderRepo repo.OrderRepository,
	gateway PaymentGateway,
	notifier Notifier,
	idGen IDGenerator,
	clock Clock,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		session:     session,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		gateway:     gateway,
		notifier:    notifier,
		idGen:       idGen,
		clock:       clock,
	}
}

type PlaceOrderInput struct {
	Address       model.Address
	PaymentMethod model.PaymentMethod
}

// ゲートウェイ決済でクライアントに返すintent情報
type GatewayIntentOutput struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` //最小単位（paise）
	Currency string `json:"currency"`
}

type CheckoutOutput struct {
	Order  OrderOutput          `json:"order"`
	Intent *GatewayIntentOutput `json:"intent,omitempty"`
}

// 注文作成。
// codは即PLACEDでカートを空にする。gatewayはPENDING_PAYMENTで
// intentを作り、カートは決済確定まで残す（離脱してもリトライできる）。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (CheckoutOutput, error) {
	if !model.ValidPaymentMethod(in.PaymentMethod) {
		return CheckoutOutput{}, &ValidationError{Fields: []string{"payment_method"}}
	}

	//住所は全項目必須。欠けは全部まとめて返す
	if missing := validator.ValidateAddress(in.Address); len(missing) > 0 {
		return CheckoutOutput{}, &ValidationError{Fields: missing}
	}

	cart, err := u.currentCart(ctx, userID)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if cart.IsEmpty() {
		return CheckoutOutput{}, &EmptyCartError{}
	}

	//この瞬間の価格でスナップショット。引けない商品は0円扱いでスキップ、
	//DBエラーはfail closed（注文は一切書かない）
	items, subtotal, err := u.snapshot(ctx, cart)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if subtotal == 0 {
		return CheckoutOutput{}, &EmptyCartError{}
	}

	amount := subtotal + ShippingFee

	status := model.OrderStatusPlaced
	if in.PaymentMethod == model.PaymentMethodGateway {
		status = model.OrderStatusPendingPayment
	}

	now := u.clock.Now()
	order := model.Order{
		ID:            u.idGen.NewID(),
		UserID:        userID,
		Address:       in.Address,
		Amount:        amount,
		PaymentMethod: in.PaymentMethod,
		Payment:       false,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return err
		}
		//codはここでカートを空にする（注文と同じtxで）
		if in.PaymentMethod == model.PaymentMethodCOD {
			return r.Carts().DeleteBySubject(ctx, userID)
		}
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	out := CheckoutOutput{Order: toOrderOutput(order, items)}
	metrics.OrdersTotal.WithLabelValues(string(in.PaymentMethod)).Inc()

	if in.PaymentMethod == model.PaymentMethodCOD {
		u.session.Delete(userID)
		u.notifier.OrderPlaced(ctx, order)
		return out, nil
	}

	//gateway：注文IDを相関キーにしてintentを作る。
	//ここで失敗しても注文はPENDING_PAYMENTのまま残る（放棄扱い）
	intent, err := u.gateway.CreateIntent(ctx, order.ID, amount, Currency)
	if err != nil {
		log.WithFields(log.Fields{
			"order_id": order.ID,
		}).Warn("payment intent creation failed, order left pending")
		return CheckoutOutput{}, err
	}

	if err := u.orderRepo.SetGatewayOrderID(ctx, order.ID, intent.ID); err != nil {
		return CheckoutOutput{}, err
	}

	out.Intent = &GatewayIntentOutput{
		ID:       intent.ID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
	}
	return out, nil
}

func (u *CheckoutUsecase) currentCart(ctx context.Context, userID string) (model.Cart, error) {
	if cart, ok := u.session.Get(userID); ok {
		return cart, nil
	}
	cart, err := u.cartRepo.GetBySubject(ctx, userID)
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カートの深いコピーから注文明細を作る。以後のカート変更は明細に映らない。
func (u *CheckoutUsecase) snapshot(ctx context.Context, cart model.Cart) ([]model.OrderItem, int64, error) {
	frozen := cart.Clone()

	items := make([]model.OrderItem, 0, len(frozen.Lines))
	var subtotal int64 = 0
	now := u.clock.Now()

	for itemID, sizes := range frozen.Lines {
		p, err := u.productRepo.FindByID(ctx, itemID)
		if errors.Is(err, repo.ErrNotFound) {
			//削除済み商品は0円扱いでスキップ
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		if !p.IsActive {
			continue
		}

		for size, qty := range sizes {
			items = append(items, model.OrderItem{
				ItemID:              itemID,
				ProductNameSnapshot: p.Name,
				Size:                size,
				UnitPriceSnapshot:   p.Price,
				Quantity:            qty,
				CreatedAt:           now,
			})
			subtotal += p.Price * qty
		}
	}

	return items, subtotal, nil
}
