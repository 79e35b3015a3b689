package model

import "time"

// カートの明細。(owner, product_id) はユニーク。
// 価格は持たない。表示・確定のたびにカタログから引き直す。
type CartLine struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Owner     string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_cart_owner_product" json:"owner"`
	ProductID int64     `gorm:"not null;uniqueIndex:uq_cart_owner_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
