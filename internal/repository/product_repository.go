package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// カタログの読み取りだけを約束。checkoutのtx内からも呼べる。
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 初期データ投入用
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p model.Product) (model.Product, error)
}
