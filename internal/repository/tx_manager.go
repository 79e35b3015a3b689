package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	CartLines() CartLineRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したら全部ロールバック。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
