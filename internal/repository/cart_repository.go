package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートの永続化。subjectId をキーにした get / put / delete のドキュメント型契約。
// Replaceは差分パッチではなく全置換（マージ結果をそのまま押し込む）。
type CartRepository interface {
	GetBySubject(ctx context.Context, subjectID string) (model.Cart, error)
	ReplaceBySubject(ctx context.Context, subjectID string, cart model.Cart) error
	DeleteBySubject(ctx context.Context, subjectID string) error
}
