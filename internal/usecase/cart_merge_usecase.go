package usecase

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	log "github.com/sirupsen/logrus"
)

// ゲスト→ログインの遷移で1回だけカートを合流させる。
// 同じ行は数量を加算（ログイン前に2個、アカウント側に1個なら3個）。
type CartMergeUsecase struct {
	session  SessionCartStore
	cartRepo repo.CartRepository
}

// DI
func NewCartMergeUsecase(session SessionCartStore, cartRepo repo.CartRepository) *CartMergeUsecase {
	return &CartMergeUsecase{session: session, cartRepo: cartRepo}
}

// マージ実行。冪等ガードはゲストカートの削除そのもの：
// 2回目の呼び出しはゲスト側が空なのでno-opになり、二重加算は起きない。
func (u *CartMergeUsecase) MergeOnLogin(ctx context.Context, guestToken string, userID string) (model.Cart, error) {
	local, ok := u.session.Get(guestToken)
	if !ok || local.IsEmpty() {
		//合流済み（または持ち込み無し）。リモートをそのまま正として返す
		u.session.Delete(guestToken)
		remote, err := u.currentRemote(ctx, userID)
		if err != nil {
			return model.Cart{}, err
		}
		return remote, nil
	}

	remote, err := u.cartRepo.GetBySubject(ctx, userID)
	if err != nil {
		//リモートが読めないなら合流しない（ゲストカートは残してリトライ可能に）
		return model.Cart{}, err
	}

	merged := remote.Merge(local)
	merged.SubjectID = userID

	//差分パッチではなく全置換で押し込む
	if err := u.cartRepo.ReplaceBySubject(ctx, userID, merged); err != nil {
		return model.Cart{}, err
	}

	u.session.Put(userID, merged)
	u.session.Delete(guestToken) //←ここが冪等ガード

	log.WithFields(log.Fields{
		"user":  userID,
		"lines": merged.TotalCount(),
	}).Info("guest cart merged into account cart")

	return merged, nil
}

func (u *CartMergeUsecase) currentRemote(ctx context.Context, userID string) (model.Cart, error) {
	if cart, ok := u.session.Get(userID); ok {
		return cart, nil
	}
	cart, err := u.cartRepo.GetBySubject(ctx, userID)
	if err != nil {
		return model.Cart{}, err
	}
	u.session.Put(userID, cart)
	return cart, nil
}
