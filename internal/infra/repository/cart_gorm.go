package repository

import (
	"app/internal/domain/model"
	"context"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// subjectの行を全部読んで二段マップへ組み立てる。
// 行が1件も無ければ空カートを返す（エラーにはしない）。
func (r *CartGormRepository) GetBySubject(ctx context.Context, subjectID string) (model.Cart, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Find(&lines).Error
	if err != nil {
		return model.Cart{}, err
	}

	cart := model.NewCart(subjectID)
	for _, l := range lines {
		cart.Add(l.ItemID, l.Size, l.Quantity)
	}
	return cart, nil
}

// 全置換。delete→insertを1トランザクションでやる。
func (r *CartGormRepository) ReplaceBySubject(ctx context.Context, subjectID string, cart model.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", subjectID).
			Delete(&model.CartLine{}).Error; err != nil {
			return err
		}

		if cart.IsEmpty() {
			return nil
		}

		lines := make([]model.CartLine, 0, len(cart.Lines))
		for itemID, sizes := range cart.Lines {
			for size, qty := range sizes {
				//数量0以下の行は書かない
				if qty <= 0 {
					continue
				}
				lines = append(lines, model.CartLine{
					SubjectID: subjectID,
					ItemID:    itemID,
					Size:      size,
					Quantity:  qty,
				})
			}
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *CartGormRepository) DeleteBySubject(ctx context.Context, subjectID string) error {
	return r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Delete(&model.CartLine{}).Error
}
