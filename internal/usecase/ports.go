package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// セッション中のカート置き場（インプロセス）。
// ここが現在セッションの正で、DB側はベストエフォートの写し。
type SessionCartStore interface {
	Get(subjectID string) (model.Cart, bool)
	Put(subjectID string, cart model.Cart)
	Delete(subjectID string)
}

// ゲートウェイ側のintent（provider注文）
type PaymentIntent struct {
	ID       string
	Amount   int64 //最小単位（paise）
	Currency string
	Receipt  string //ローカル注文IDを入れる相関キー
	Status   string
}

// intentが支払済みを示すステータスか
func (i PaymentIntent) Paid() bool {
	return i.Status == "paid"
}

// 決済プロバイダとの契約。
// VerifySignatureの不一致はエラーではなくfalse（未確定という結果）。
type PaymentGateway interface {
	CreateIntent(ctx context.Context, orderID string, amount int64, currency string) (PaymentIntent, error)
	VerifySignature(gatewayOrderID string, paymentID string, signature string) bool
	FetchIntent(ctx context.Context, intentID string) (PaymentIntent, error)
}

// 通知コラボレーター。ベストエフォート（失敗しても注文は巻き戻さない）。
type Notifier interface {
	OrderPlaced(ctx context.Context, order model.Order)
	PaymentConfirmed(ctx context.Context, order model.Order)
}
