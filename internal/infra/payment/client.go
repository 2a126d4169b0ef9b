package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"app/internal/usecase"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// 決済プロバイダのHTTPクライアント。
// intent作成とintent照会はネットワーク越しなのでタイムアウト＋ブレーカーで包む。
// 署名検証は共有シークレットに対するHMACなのでローカルで完結する。
type Client struct {
	http      *resty.Client
	cb        *gobreaker.CircuitBreaker
	keyID     string
	keySecret string
}

// DI
func NewClient(baseURL string, keyID string, keySecret string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5 * time.Second).
		SetBasicAuth(keyID, keySecret)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("circuit breaker state changed")
		},
	})

	return &Client{
		http:      httpClient,
		cb:        cb,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// ローカル注文IDをreceiptに入れてプロバイダ側にintentを作る。
// 金額はプロバイダの最小単位（×100）で渡す。
func (c *Client) CreateIntent(ctx context.Context, orderID string, amount int64, currency string) (usecase.PaymentIntent, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		var out intentResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(map[string]interface{}{
				"amount":   amount * 100,
				"currency": currency,
				"receipt":  orderID,
			}).
			SetResult(&out).
			Post("/v1/orders")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("provider returned %d", resp.StatusCode())
		}
		return out, nil
	})
	if err != nil {
		return usecase.PaymentIntent{}, &usecase.NetworkError{Op: "create intent", Err: err}
	}

	out := result.(intentResponse)
	return usecase.PaymentIntent{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}

// プロバイダの署名方式: HMAC-SHA256(gatewayOrderID + "|" + paymentID, keySecret) のhex。
// 不一致はfalse（結果）であって障害ではない。
func (c *Client) VerifySignature(gatewayOrderID string, paymentID string, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// intentの現況を取り直す（照合・ポーリング経路）。
func (c *Client) FetchIntent(ctx context.Context, intentID string) (usecase.PaymentIntent, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		var out intentResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&out).
			Get("/v1/orders/" + intentID)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("provider returned %d", resp.StatusCode())
		}
		return out, nil
	})
	if err != nil {
		return usecase.PaymentIntent{}, &usecase.NetworkError{Op: "fetch intent", Err: err}
	}

	out := result.(intentResponse)
	return usecase.PaymentIntent{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Receipt:  out.Receipt,
		Status:   out.Status,
	}, nil
}
