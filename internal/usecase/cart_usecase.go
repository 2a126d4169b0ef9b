package usecase

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	"app/internal/metrics"
	repo "app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// カートを操作した主体。ゲストはトークンだけ持つ。
type Subject struct {
	ID            string
	Authenticated bool
}

// CartUsecase は /cart の業務ロジックです。
// セッションストアが正、認証済みならDBへベストエフォートで同期する
// （楽観的書き込み：同期に失敗してもローカルの変更は巻き戻さない）。
type CartUsecase struct {
	session     SessionCartStore
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

// DI
func NewCartUsecase(
	session SessionCartStore,
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		session:     session,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

type CartLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	LineTotal int64  `json:"line_total"`
}

type CartResponse struct {
	Items      []CartLineResponse `json:"items"`
	TotalCount int64              `json:"total_count"`
	Subtotal   int64              `json:"subtotal"`

	//DB同期に失敗したときfalse。ローカルの変更自体は反映済み
	Synced bool `json:"synced"`
}

type AddCartInput struct {
	ItemID string
	Size   string
	Delta  int64 //0以下なら1
}

type UpdateCartInput struct {
	ItemID   string
	Size     string
	Quantity int64
}

// カート取得
func (u *CartUsecase) GetCart(ctx context.Context, sub Subject) (CartResponse, error) {
	cart, err := u.current(ctx, sub)
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cart, true)
}

// カートに追加（同一行は数量加算）。
// サイズ検証はmutationの前。弾いたら何も変更しない。
func (u *CartUsecase) AddItem(ctx context.Context, sub Subject, in AddCartInput) (CartResponse, error) {
	if strings.TrimSpace(in.Size) == "" {
		return CartResponse{}, &InvalidSizeError{}
	}

	p, err := u.productRepo.FindByID(ctx, in.ItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, &NotFoundError{Resource: "product", ID: in.ItemID}
	}
	if err != nil {
		return CartResponse{}, err
	}
	if !p.IsActive {
		return CartResponse{}, &NotFoundError{Resource: "product", ID: in.ItemID}
	}
	if !p.HasSize(in.Size) {
		return CartResponse{}, &InvalidSizeError{Size: in.Size}
	}

	delta := in.Delta
	if delta <= 0 {
		delta = 1
	}

	cart, err := u.current(ctx, sub)
	if err != nil {
		return CartResponse{}, err
	}
	cart.Add(in.ItemID, in.Size, delta)

	return u.applyMutation(ctx, sub, cart)
}

// 数量を上書き。0以下は削除と同じ。
func (u *CartUsecase) SetQuantity(ctx context.Context, sub Subject, in UpdateCartInput) (CartResponse, error) {
	cart, err := u.current(ctx, sub)
	if err != nil {
		return CartResponse{}, err
	}

	if in.Quantity > 0 {
		//新しく行を作る可能性があるのでaddと同じ検証を通す
		if strings.TrimSpace(in.Size) == "" {
			return CartResponse{}, &InvalidSizeError{}
		}
		p, err := u.productRepo.FindByID(ctx, in.ItemID)
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, &NotFoundError{Resource: "product", ID: in.ItemID}
		}
		if err != nil {
			return CartResponse{}, err
		}
		if !p.IsActive {
			return CartResponse{}, &NotFoundError{Resource: "product", ID: in.ItemID}
		}
		if !p.HasSize(in.Size) {
			return CartResponse{}, &InvalidSizeError{Size: in.Size}
		}
	}

	cart.SetQuantity(in.ItemID, in.Size, in.Quantity)

	return u.applyMutation(ctx, sub, cart)
}

// 行を削除。無い行の削除はエラーではなくno-op。
func (u *CartUsecase) RemoveItem(ctx context.Context, sub Subject, itemID string, size string) (CartResponse, error) {
	cart, err := u.current(ctx, sub)
	if err != nil {
		return CartResponse{}, err
	}
	cart.Remove(itemID, size)

	return u.applyMutation(ctx, sub, cart)
}

// 全行削除
func (u *CartUsecase) ClearCart(ctx context.Context, sub Subject) (CartResponse, error) {
	cart, err := u.current(ctx, sub)
	if err != nil {
		return CartResponse{}, err
	}
	cart.Clear()

	return u.applyMutation(ctx, sub, cart)
}

// 現在のカート。セッションに無ければ認証済みに限りDBから引いて温める。
func (u *CartUsecase) current(ctx context.Context, sub Subject) (model.Cart, error) {
	if cart, ok := u.session.Get(sub.ID); ok {
		return cart, nil
	}

	if sub.Authenticated {
		cart, err := u.cartRepo.GetBySubject(ctx, sub.ID)
		if err != nil {
			return model.Cart{}, err
		}
		u.session.Put(sub.ID, cart)
		return cart, nil
	}

	return model.NewCart(sub.ID), nil
}

// ローカル反映→ベストエフォートのDB同期→レスポンス。
// 同期失敗はSynced=falseで伝えるだけで変更は残す。
func (u *CartUsecase) applyMutation(ctx context.Context, sub Subject, cart model.Cart) (CartResponse, error) {
	u.session.Put(sub.ID, cart)

	synced := true
	if sub.Authenticated {
		if err := u.cartRepo.ReplaceBySubject(ctx, sub.ID, cart); err != nil {
			synced = false
			metrics.CartSyncFailures.Inc()
			log.WithFields(log.Fields{
				"subject": sub.ID,
			}).Warn("cart sync to store failed, local state kept")
		}
	}

	return u.buildCartResponse(ctx, cart, synced)
}

// 明細をまとめてCartResponseを作る。
// カタログで引けない商品（削除済みなど）は金額0扱いでスキップ。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart, synced bool) (CartResponse, error) {
	respItems := make([]CartLineResponse, 0, len(cart.Lines))
	var subtotal int64 = 0

	for itemID, sizes := range cart.Lines {
		p, err := u.productRepo.FindByID(ctx, itemID)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}

		for size, qty := range sizes {
			lineTotal := p.Price * qty
			respItems = append(respItems, CartLineResponse{
				ItemID:    itemID,
				Name:      p.Name,
				Size:      size,
				UnitPrice: p.Price,
				Quantity:  qty,
				LineTotal: lineTotal,
			})
			subtotal += lineTotal
		}
	}

	return CartResponse{
		Items:      respItems,
		TotalCount: cart.TotalCount(),
		Subtotal:   subtotal,
		Synced:     synced,
	}, nil
}
