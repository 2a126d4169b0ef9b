package model

// 配送先住所。注文に埋め込むスナップショット（全項目必須）。
type Address struct {
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null" json:"email"`
	Street    string `gorm:"type:varchar(255);not null" json:"street"`
	City      string `gorm:"type:varchar(100);not null" json:"city"`
	State     string `gorm:"type:varchar(100);not null" json:"state"`
	Pincode   string `gorm:"type:varchar(20);not null" json:"pincode"`
	Country   string `gorm:"type:varchar(100);not null" json:"country"`
	Phone     string `gorm:"type:varchar(30);not null" json:"phone"`
}
