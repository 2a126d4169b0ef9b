package model

import "time"

type OrderStatus string

const (
	//ゲートウェイ決済の確認待ち
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	//明示的な終端。ここからはどこへも動かせない
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// 前進のみの順序。CANCELEDは順序の外（終端）。
var statusRank = map[OrderStatus]int{
	OrderStatusPendingPayment: 0,
	OrderStatusPlaced:         1,
	OrderStatusProcessing:     2,
	OrderStatusShipped:        3,
	OrderStatusDelivered:      4,
}

// 既知のステータスか
func ValidOrderStatus(s OrderStatus) bool {
	if s == OrderStatusCanceled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// from → to が許される遷移か。
// 前進ならスキップも許可（PLACED→SHIPPEDはOK）。後退は不可。
// CANCELEDへは終端以外ならどこからでも入れる。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	if from == OrderStatusCanceled || from == OrderStatusDelivered {
		return false
	}
	if to == OrderStatusCanceled {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodGateway PaymentMethod = "gateway"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodCOD || m == PaymentMethodGateway
}

// 注文。作成後はstatus/payment/ゲートウェイ相関ID以外は不変。
// 住所は注文時点のスナップショットを埋め込む（住所帳への参照は持たない）。
type Order struct {
	ID      string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID  string  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Address Address `gorm:"embedded;embeddedPrefix:addr_" json:"address"`

	//注文時点の合計（小計＋送料）。以後再計算しない
	Amount        int64         `gorm:"not null" json:"amount"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Payment       bool          `gorm:"not null;default:false" json:"payment"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`

	//ゲートウェイ側の相関ID（COD注文では空）
	GatewayOrderID   string `gorm:"type:varchar(64);index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
