package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 公開カタログの読み取りだけ。
type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

func (u *ProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.List(ctx)
	if err != nil {
		return []model.Product{}, ErrStorage
	}
	return items, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, id int64) (model.Product, error) {
	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, ErrStorage
	}
	return p, nil
}
