package model

import "time"

// カート1行の永続化フォーム。
// (subject_id, item_id, size) で一意。数量0の行はINSERTしない。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID string    `gorm:"type:varchar(64);not null;index;uniqueIndex:uq_cart_line,priority:1" json:"subject_id"`
	ItemID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_cart_line,priority:2" json:"item_id"`
	Size      string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_cart_line,priority:3" json:"size"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
