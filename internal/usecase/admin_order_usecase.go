package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

// DI
func NewAdminOrderUsecase(tx repo.TransactionManager, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, clock: clock}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AuditLogOutput struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	CreatedAt time.Time `json:"created_at"`
}

// 注文の監査ログを新しい順で返す（管理者）。
// ステータス更新と決済確定の両方が並ぶ。
func (u *AdminOrderUsecase) AuditTrail(ctx context.Context, orderID string) ([]AuditLogOutput, error) {
	if orderID == "" {
		return []AuditLogOutput{}, &ValidationError{Fields: []string{"order_id"}}
	}

	var outs []AuditLogOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return &NotFoundError{Resource: "order", ID: orderID}
			}
			return err
		}

		logs, err := r.AuditLogs().ListByResource(ctx, model.AuditResourceOrder, orderID)
		if err != nil {
			return err
		}

		outs = make([]AuditLogOutput, 0, len(logs))
		for _, l := range logs {
			outs = append(outs, AuditLogOutput{
				Actor:     l.ActorUserID,
				Action:    string(l.Action),
				Before:    l.BeforeJSON,
				After:     l.AfterJSON,
				CreatedAt: l.CreatedAt,
			})
		}
		return nil
	})

	if err != nil {
		return []AuditLogOutput{}, err
	}
	return outs, nil
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, &ValidationError{Fields: []string{"page"}}
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, &ValidationError{Fields: []string{"limit"}}
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return err
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return err
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// ステータス更新。前進のみ（スキップは可、後退は不可、終端からは動かせない）。
// 同時更新は現在値を条件にした更新で片方だけ通す。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminID string, orderID string, in AdminUpdateOrderStatusInput) error {
	if actorAdminID == "" {
		return &ValidationError{Fields: []string{"actor"}}
	}
	if orderID == "" {
		return &ValidationError{Fields: []string{"order_id"}}
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !model.ValidOrderStatus(newStatus) {
		return &ValidationError{Fields: []string{"status"}}
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return &NotFoundError{Resource: "order", ID: orderID}
		}
		if err != nil {
			return err
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		if !model.CanTransition(o.Status, newStatus) {
			return &InvalidTransitionError{From: string(o.Status), To: string(newStatus)}
		}

		moved, err := r.Orders().UpdateStatusIfCurrent(ctx, orderID, o.Status, newStatus)
		if err != nil {
			return err
		}
		if !moved {
			//先に他の管理者が動かした
			return &ConflictError{Reason: "order status changed concurrently"}
		}

		//監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + string(o.Status) + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		return r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    u.clock.Now(),
		})
	})
}
