package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error)
	ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) error

	//現在値を条件にした更新。合わなければ何も書かずfalseを返す（楽観ガード）
	UpdateStatusIfCurrent(ctx context.Context, orderID string, from model.OrderStatus, to model.OrderStatus) (bool, error)

	//payment=falseのときだけtrueへ。すでにtrueならfalseを返す（二重確定ガード）
	MarkPaidIfUnpaid(ctx context.Context, orderID string, gatewayOrderID string, gatewayPaymentID string) (bool, error)

	//ゲートウェイ注文IDの後付け（intent作成後に保存する）
	SetGatewayOrderID(ctx context.Context, orderID string, gatewayOrderID string) error

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
}
