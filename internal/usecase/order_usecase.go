package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderUsecase はcheckoutと注文履歴。
// カートと注文の両方を書くのはここだけで、必ず1トランザクションで行う。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	Owner     string            `json:"owner"`
	Total     decimal.Decimal   `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []OrderItemOutput `json:"items"`
}

// Checkout はカートを注文に確定する。
// 行ロック→現在価格で明細を組む→注文保存→カート全削除、を1txで行う。
// 途中で失敗したら全部戻る（注文だけ・カート消しだけの状態は残らない）。
func (u *OrderUsecase) Checkout(ctx context.Context, owner string) (OrderOutput, error) {
	if owner == "" {
		return OrderOutput{}, ErrUnauthorized
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// FOR UPDATEで同一ownerのcheckoutを直列化する。
		// 後から来た方は先行がcommitした後の（空の）カートを読む。
		lines, err := r.CartLines().ListByOwnerForUpdate(ctx, owner)
		if err != nil {
			return ErrStorage
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// カタログの現在価格でスナップショットを作る。
		// 合計はdecimalで厳密に計算する（明細の合計と1円もずれない）。
		now := time.Now()
		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero

		for _, ln := range lines {
			p, err := r.Products().FindByID(ctx, ln.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProductNotFound
			}
			if err != nil {
				return ErrStorage
			}

			items = append(items, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            ln.Quantity,
				CreatedAt:           now,
			})

			total = total.Add(p.Price.Mul(decimal.NewFromInt(ln.Quantity)))
		}

		// 注文ヘッダ＋明細
		orderID, err := r.Orders().Create(ctx, model.Order{
			Owner:     owner,
			Total:     total,
			CreatedAt: now,
		})
		if err != nil {
			return ErrStorage
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return ErrStorage
		}

		// カートを空にする
		if err := r.CartLines().DeleteByOwner(ctx, owner); err != nil {
			return ErrStorage
		}

		out = toOrderOutput(model.Order{
			ID:        orderID,
			Owner:     owner,
			Total:     total,
			CreatedAt: now,
		}, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListMyOrders はownerの注文履歴を新しい順に返す。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, owner string) ([]OrderOutput, error) {
	if owner == "" {
		return []OrderOutput{}, ErrUnauthorized
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByOwner(ctx, owner)
		if err != nil {
			return ErrStorage
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return ErrStorage
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:        o.ID,
		Owner:     o.Owner,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		Items:     outItems,
	}
}
