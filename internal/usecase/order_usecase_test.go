package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// =====================
// インメモリのTxRepos（checkoutのロールバックを再現する）
// =====================

type memStore struct {
	products map[int64]model.Product
	lines    []model.CartLine
	orders   []model.Order
	items    []model.OrderItem

	nextLineID  int64
	nextOrderID int64
	nextItemID  int64

	// 障害注入
	failCreateItems bool
	failClearCart   bool
}

func newMemStore() *memStore {
	return &memStore{
		products:    map[int64]model.Product{},
		nextLineID:  1,
		nextOrderID: 1,
		nextItemID:  1,
	}
}

func (s *memStore) clone() *memStore {
	c := *s
	c.products = map[int64]model.Product{}
	for k, v := range s.products {
		c.products[k] = v
	}
	c.lines = append([]model.CartLine{}, s.lines...)
	c.orders = append([]model.Order{}, s.orders...)
	c.items = append([]model.OrderItem{}, s.items...)
	return &c
}

// fnが失敗したら開始時点の状態に戻す
type memTxManager struct {
	s *memStore
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	snapshot := m.s.clone()
	if err := fn(&memTxRepos{s: m.s}); err != nil {
		*m.s = *snapshot
		return err
	}
	return nil
}

type memTxRepos struct {
	s *memStore
}

func (r *memTxRepos) CartLines() repo.CartLineRepository   { return &memCartLines{s: r.s} }
func (r *memTxRepos) Orders() repo.OrderRepository         { return &memOrders{s: r.s} }
func (r *memTxRepos) OrderItems() repo.OrderItemRepository { return &memOrderItems{s: r.s} }
func (r *memTxRepos) Products() repo.ProductRepository     { return &memProducts{s: r.s} }

type memCartLines struct{ s *memStore }

func (m *memCartLines) ListByOwner(ctx context.Context, owner string) ([]model.CartLine, error) {
	out := []model.CartLine{}
	for _, ln := range m.s.lines {
		if ln.Owner == owner {
			out = append(out, ln)
		}
	}
	return out, nil
}

func (m *memCartLines) ListByOwnerForUpdate(ctx context.Context, owner string) ([]model.CartLine, error) {
	return m.ListByOwner(ctx, owner)
}

func (m *memCartLines) Upsert(ctx context.Context, owner string, productID int64, addQty int64) error {
	for i, ln := range m.s.lines {
		if ln.Owner == owner && ln.ProductID == productID {
			m.s.lines[i].Quantity += addQty
			return nil
		}
	}
	m.s.lines = append(m.s.lines, model.CartLine{
		ID:        m.s.nextLineID,
		Owner:     owner,
		ProductID: productID,
		Quantity:  addQty,
	})
	m.s.nextLineID++
	return nil
}

func (m *memCartLines) SetQuantity(ctx context.Context, owner string, productID int64, qty int64) error {
	for i, ln := range m.s.lines {
		if ln.Owner == owner && ln.ProductID == productID {
			m.s.lines[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memCartLines) DeleteByOwnerAndProduct(ctx context.Context, owner string, productID int64) error {
	kept := m.s.lines[:0]
	for _, ln := range m.s.lines {
		if !(ln.Owner == owner && ln.ProductID == productID) {
			kept = append(kept, ln)
		}
	}
	m.s.lines = kept
	return nil
}

func (m *memCartLines) DeleteByOwner(ctx context.Context, owner string) error {
	if m.s.failClearCart {
		return assert.AnError
	}
	kept := m.s.lines[:0]
	for _, ln := range m.s.lines {
		if ln.Owner != owner {
			kept = append(kept, ln)
		}
	}
	m.s.lines = kept
	return nil
}

type memOrders struct{ s *memStore }

func (m *memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	order.ID = m.s.nextOrderID
	m.s.nextOrderID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.Items = nil
	m.s.orders = append(m.s.orders, order)
	return order.ID, nil
}

func (m *memOrders) ListByOwner(ctx context.Context, owner string) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range m.s.orders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type memOrderItems struct{ s *memStore }

func (m *memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if m.s.failCreateItems {
		return assert.AnError
	}
	for _, it := range items {
		it.ID = m.s.nextItemID
		m.s.nextItemID++
		it.OrderID = orderID
		m.s.items = append(m.s.items, it)
	}
	return nil
}

func (m *memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := []model.OrderItem{}
	for _, it := range m.s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memProducts struct{ s *memStore }

func (m *memProducts) List(ctx context.Context) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range m.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := m.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Count(ctx context.Context) (int64, error) {
	return int64(len(m.s.products)), nil
}

func (m *memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	m.s.products[p.ID] = p
	return p, nil
}

// =====================
// テスト用セットアップ
// =====================

func setupCheckout() (*memStore, *OrderUsecase) {
	s := newMemStore()
	s.products[1] = model.Product{ID: 1, Name: "Coffe Beans", Price: price("11.20")}
	s.products[2] = model.Product{ID: 2, Name: "Espresso Cup", Price: price("3.21")}
	return s, NewOrderUsecase(&memTxManager{s: s})
}

func addLine(s *memStore, owner string, productID int64, qty int64) {
	s.lines = append(s.lines, model.CartLine{
		ID:        s.nextLineID,
		Owner:     owner,
		ProductID: productID,
		Quantity:  qty,
	})
	s.nextLineID++
}

// =====================
// Checkout
// =====================

// 空カートのcheckoutは失敗し、注文は作られないこと
func TestCheckout_EmptyCart(t *testing.T) {
	s, uc := setupCheckout()

	_, err := uc.Checkout(context.Background(), "alice")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, s.orders)
	assert.Empty(t, s.items)
}

// 11.20×2 + 3.21×5 = 38.45 の注文ができて、カートが空になること
func TestCheckout_SnapshotsAndClearsCart(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 2)
	addLine(s, "alice", 2, 5)

	out, err := uc.Checkout(context.Background(), "alice")

	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(price("38.45")), "total = %s", out.Total)
	assert.Len(t, out.Items, 2)

	assert.Equal(t, "Coffe Beans", out.Items[0].Name)
	assert.True(t, out.Items[0].UnitPrice.Equal(price("11.20")))
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, "Espresso Cup", out.Items[1].Name)
	assert.True(t, out.Items[1].UnitPrice.Equal(price("3.21")))
	assert.Equal(t, int64(5), out.Items[1].Quantity)

	// カートは空
	assert.Empty(t, s.lines)

	// 永続化された注文は1件で、スナップショットが残っている
	assert.Len(t, s.orders, 1)
	assert.Len(t, s.items, 2)
	assert.True(t, s.orders[0].Total.Equal(price("38.45")))
}

// 注文合計は常に明細の単価×数量の合計と一致すること
func TestCheckout_TotalMatchesItems(t *testing.T) {
	s, uc := setupCheckout()
	s.products[3] = model.Product{ID: 3, Name: "French Press", Price: price("231.60")}
	addLine(s, "alice", 1, 3)
	addLine(s, "alice", 2, 7)
	addLine(s, "alice", 3, 1)

	out, err := uc.Checkout(context.Background(), "alice")
	assert.NoError(t, err)

	sum := decimal.Zero
	for _, it := range out.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	assert.True(t, out.Total.Equal(sum), "total %s != items sum %s", out.Total, sum)
}

// カタログから商品が消えていたらcheckout全体が中断し、カートも注文も変わらないこと
func TestCheckout_ProductMissingAborts(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 2)
	addLine(s, "alice", 99, 1) // カタログに無い

	_, err := uc.Checkout(context.Background(), "alice")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, s.lines, 2)
	assert.Empty(t, s.orders)
	assert.Empty(t, s.items)
}

// 明細の書き込みに失敗したら注文ヘッダも残らず、カートも減らないこと
func TestCheckout_ItemWriteFailureRollsBack(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 2)
	s.failCreateItems = true

	_, err := uc.Checkout(context.Background(), "alice")

	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, s.orders)
	assert.Empty(t, s.items)
	assert.Len(t, s.lines, 1)
	assert.Equal(t, int64(2), s.lines[0].Quantity)
}

// カート削除に失敗したら注文ごと巻き戻ること
func TestCheckout_ClearFailureRollsBack(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 2)
	s.failClearCart = true

	_, err := uc.Checkout(context.Background(), "alice")

	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, s.orders)
	assert.Empty(t, s.items)
	assert.Len(t, s.lines, 1)
}

// 同じカートを2回checkoutしても注文は1つだけ（2回目は空カート扱い）
func TestCheckout_TwiceOnlyOneOrder(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 1)

	_, err := uc.Checkout(context.Background(), "alice")
	assert.NoError(t, err)

	_, err = uc.Checkout(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Len(t, s.orders, 1)
}

// checkoutはその時点のカタログ価格を使うこと（表示時の価格ではない）
func TestCheckout_UsesCurrentCatalogPrice(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 1)

	// 表示後に値上げされた想定
	s.products[1] = model.Product{ID: 1, Name: "Coffe Beans", Price: price("12.00")}

	out, err := uc.Checkout(context.Background(), "alice")

	assert.NoError(t, err)
	assert.True(t, out.Total.Equal(price("12.00")), "total = %s", out.Total)
	assert.True(t, out.Items[0].UnitPrice.Equal(price("12.00")))
}

// 他ownerのカートはcheckoutの影響を受けないこと
func TestCheckout_OtherOwnersUntouched(t *testing.T) {
	s, uc := setupCheckout()
	addLine(s, "alice", 1, 2)
	addLine(s, "bob", 2, 3)

	_, err := uc.Checkout(context.Background(), "alice")
	assert.NoError(t, err)

	assert.Len(t, s.lines, 1)
	assert.Equal(t, "bob", s.lines[0].Owner)
}

// =====================
// ListMyOrders
// =====================

func TestListMyOrders_NewestFirst(t *testing.T) {
	s, uc := setupCheckout()
	ctx := context.Background()

	addLine(s, "alice", 1, 1)
	first, err := uc.Checkout(ctx, "alice")
	assert.NoError(t, err)

	addLine(s, "alice", 2, 1)
	second, err := uc.Checkout(ctx, "alice")
	assert.NoError(t, err)

	outs, err := uc.ListMyOrders(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, outs, 2)
	assert.Equal(t, second.ID, outs[0].ID)
	assert.Equal(t, first.ID, outs[1].ID)
	assert.Len(t, outs[1].Items, 1)
}

func TestListMyOrders_Empty(t *testing.T) {
	_, uc := setupCheckout()

	outs, err := uc.ListMyOrders(context.Background(), "alice")

	assert.NoError(t, err)
	assert.Empty(t, outs)
}
