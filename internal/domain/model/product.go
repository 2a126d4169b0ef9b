package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 商品。価格は最小単位なしの整数（INR）。
type Product struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	Category    string `gorm:"type:varchar(100)" json:"category"`

	//許可するサイズのカンマ区切り（"S,M,L"）。空なら任意のサイズを許可しない
	Sizes string `gorm:"type:varchar(100);not null" json:"sizes"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// サイズがこの商品のサイズ集合に含まれるか。
// 変なサイズ文字列で新しい行が勝手に出来るのを防ぐ。
func (p Product) HasSize(size string) bool {
	size = strings.TrimSpace(size)
	if size == "" {
		return false
	}
	for _, s := range strings.Split(p.Sizes, ",") {
		if strings.TrimSpace(s) == size {
			return true
		}
	}
	return false
}

// サイズ一覧をスライスで返す
func (p Product) SizeList() []string {
	out := []string{}
	for _, s := range strings.Split(p.Sizes, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
