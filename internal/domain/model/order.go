package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 確定済みの注文。作成後は一切更新しない。
// Totalは確定時に一度だけ計算した金額（明細の合計と常に一致）。
type Order struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Owner     string          `gorm:"type:varchar(255);not null;index" json:"owner"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`

	// 明細。orders削除時はDB側でカスケード削除。
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// テーブル名は複数形のordersに固定（orderは予約語）
func (Order) TableName() string {
	return "orders"
}
