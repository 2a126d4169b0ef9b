package notification

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// 通知webhookへのベストエフォート送信。
// 失敗はログを残すだけで呼び出し元には返さない（注文は巻き戻さない）。
type WebhookNotifier struct {
	http *resty.Client
	url  string
}

// DI。urlが空なら送信しない（通知無効）。
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		http: resty.New().SetTimeout(3 * time.Second),
		url:  url,
	}
}

func (n *WebhookNotifier) OrderPlaced(ctx context.Context, order model.Order) {
	n.send(ctx, "order.placed", order)
}

func (n *WebhookNotifier) PaymentConfirmed(ctx context.Context, order model.Order) {
	n.send(ctx, "payment.confirmed", order)
}

func (n *WebhookNotifier) send(ctx context.Context, event string, order model.Order) {
	if n.url == "" {
		return
	}

	_, err := n.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"event":    event,
			"order_id": order.ID,
			"user_id":  order.UserID,
			"amount":   order.Amount,
			"email":    order.Address.Email,
		}).
		Post(n.url)
	if err != nil {
		log.WithFields(log.Fields{
			"event":    event,
			"order_id": order.ID,
		}).Warn("notification dispatch failed")
	}
}
