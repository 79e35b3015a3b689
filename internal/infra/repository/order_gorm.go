package repository

import (
	"app/internal/domain/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文ヘッダを作成してIDを返す。CreatedAtが未指定ならここで埋める。
// 明細はOrderItemRepositoryが同じtxで入れる。
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.Items = nil

	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

// ownerの注文を新しい順に返す
func (r *OrderGormRepository) ListByOwner(ctx context.Context, owner string) ([]model.Order, error) {
	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}

	return orders, nil
}
