package usecase

import (
	"context"
	"errors"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /api/cart の業務ロジックです。
// 価格は保存せず、毎回カタログの現在価格で組み立てる。
type CartUsecase struct {
	cartRepo    repo.CartLineRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(cartRepo repo.CartLineRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// カート1行の表示用DTO
type CartLineResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartViewResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddLineInput struct {
	ProductID int64
	Quantity  int64
}

// GetView はカートの現在価格ビューを返す。
// 商品がカタログから消えていたら行を黙って落とさずエラーにする
// （落とすと合計が嘘になる）。
func (u *CartUsecase) GetView(ctx context.Context, owner string) (CartViewResponse, error) {
	if owner == "" {
		return CartViewResponse{}, ErrUnauthorized
	}

	lines, err := u.cartRepo.ListByOwner(ctx, owner)
	if err != nil {
		return CartViewResponse{}, ErrStorage
	}

	items := make([]CartLineResponse, 0, len(lines))
	total := decimal.Zero

	for _, ln := range lines {
		p, err := u.productRepo.FindByID(ctx, ln.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return CartViewResponse{}, ErrProductNotFound
		}
		if err != nil {
			return CartViewResponse{}, ErrStorage
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(ln.Quantity))
		items = append(items, CartLineResponse{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  ln.Quantity,
			LineTotal: lineTotal,
		})

		total = total.Add(lineTotal)
	}

	return CartViewResponse{Items: items, Total: total}, nil
}

// AddOrUpdate はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddOrUpdate(ctx context.Context, owner string, in AddLineInput) error {
	if owner == "" {
		return ErrUnauthorized
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}

	// 商品チェック。存在しないIDの行をカートに入れない。
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return ErrStorage
	}

	if err := u.cartRepo.Upsert(ctx, owner, in.ProductID, in.Quantity); err != nil {
		return ErrStorage
	}
	return nil
}

// SetQuantity は既存明細の数量を上書き。明細が無ければ404。
func (u *CartUsecase) SetQuantity(ctx context.Context, owner string, productID int64, qty int64) error {
	if owner == "" {
		return ErrUnauthorized
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}

	err := u.cartRepo.SetQuantity(ctx, owner, productID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLineNotFound
	}
	if err != nil {
		return ErrStorage
	}
	return nil
}

// Remove は明細を削除。無くてもエラーにしない。
func (u *CartUsecase) Remove(ctx context.Context, owner string, productID int64) error {
	if owner == "" {
		return ErrUnauthorized
	}

	if err := u.cartRepo.DeleteByOwnerAndProduct(ctx, owner, productID); err != nil {
		return ErrStorage
	}
	return nil
}

// Clear はカートを空にする。元から空でもエラーにしない。
func (u *CartUsecase) Clear(ctx context.Context, owner string) error {
	if owner == "" {
		return ErrUnauthorized
	}

	if err := u.cartRepo.DeleteByOwner(ctx, owner); err != nil {
		return ErrStorage
	}
	return nil
}
