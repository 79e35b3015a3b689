package repository

import (
	"app/internal/domain/model"
	"context"
)

// 注文は追記のみ。更新・削除のメソッドは置かない。
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	// 新しい順（created_at desc, id desc）
	ListByOwner(ctx context.Context, owner string) ([]model.Order, error)
}
