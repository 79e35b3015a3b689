package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// ownerの明細を一覧取得
func (r *CartLineGormRepository) ListByOwner(ctx context.Context, owner string) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// checkout用。FOR UPDATEで行をロックして取得する。
// tx外で呼んでもロックは即解放されるのでtx内で使うこと。
func (r *CartLineGormRepository) ListByOwnerForUpdate(ctx context.Context, owner string) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ?", owner).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

// 同一商品は数量加算、無ければ新規作成
func (r *CartLineGormRepository) Upsert(ctx context.Context, owner string, productID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner = ? AND product_id = ?", owner, productID).
			First(&line).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			res := tx.Model(&model.CartLine{}).
				Where("id = ?", line.ID).
				Update("quantity", line.Quantity+addQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 無い場合は新規作成。ユニーク制約と競合したら加算にフォールバック。
		now := time.Now()
		newLine := model.CartLine{
			Owner:     owner,
			ProductID: productID,
			Quantity:  addQty,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newLine).Error; err != nil {
			res := tx.Model(&model.CartLine{}).
				Where("owner = ? AND product_id = ?", owner, productID).
				Update("quantity", gorm.Expr("quantity + ?", addQty))
			if res.Error == nil && res.RowsAffected > 0 {
				return nil
			}
			return err
		}

		return nil
	})
}

// 数量を上書き。行が無ければErrNotFound。
func (r *CartLineGormRepository) SetQuantity(ctx context.Context, owner string, productID int64, qty int64) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}

	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("owner = ? AND product_id = ?", owner, productID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除。無くてもエラーにしない。
func (r *CartLineGormRepository) DeleteByOwnerAndProduct(ctx context.Context, owner string, productID int64) error {
	return r.db.WithContext(ctx).
		Where("owner = ? AND product_id = ?", owner, productID).
		Delete(&model.CartLine{}).Error
}

// ownerの明細を全削除
func (r *CartLineGormRepository) DeleteByOwner(ctx context.Context, owner string) error {
	return r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Delete(&model.CartLine{}).Error
}
