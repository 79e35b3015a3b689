package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartLineRepository interface {
	ListByOwner(ctx context.Context, owner string) ([]model.CartLine, error)
	// checkout用。行ロック（FOR UPDATE）付きで取得し、同一ownerの確定を直列化する。
	ListByOwnerForUpdate(ctx context.Context, owner string) ([]model.CartLine, error)

	// 同一商品は数量加算、無ければ新規作成
	Upsert(ctx context.Context, owner string, productID int64, addQty int64) error
	// 既存行が無ければErrNotFound
	SetQuantity(ctx context.Context, owner string, productID int64, qty int64) error
	// 無ければ何もしない（エラーにしない）
	DeleteByOwnerAndProduct(ctx context.Context, owner string, productID int64) error
	DeleteByOwner(ctx context.Context, owner string) error
}
