package cache

import (
	"sync"

	"app/internal/domain/model"
)

// セッション中のカートを持つインプロセスストア。
// ゲストのカートはここにしか存在しない。ログイン済みユーザーの
// カートはここが正で、DBへのsyncはベストエフォート。
type CartCache struct {
	mu    sync.RWMutex
	carts map[string]model.Cart
}

func NewCartCache() *CartCache {
	return &CartCache{
		carts: make(map[string]model.Cart),
	}
}

// コピーを返す（呼び出し側のmutationが中に漏れないように）
func (s *CartCache) Get(subjectID string) (model.Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[subjectID]
	if !ok {
		return model.Cart{}, false
	}
	return cart.Clone(), true
}

func (s *CartCache) Put(subjectID string, cart model.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart.SubjectID = subjectID
	s.carts[subjectID] = cart.Clone()
}

func (s *CartCache) Delete(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, subjectID)
}
