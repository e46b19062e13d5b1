package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. El fakeTxRunner emula la
// semántica transaccional real: el callback trabaja sobre una copia del estado
// y solo se publica en commit, bajo un lock que serializa a los escritores.
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	mu  sync.Mutex
	ops []entity.StockOperation

	getByIDCalls int
	names        map[string]string // productID -> nombre para el join simulado
}

var _ repository.StockOperationRepository = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{names: map[string]string{}}
}

func (f *fakeLedger) Append(_ context.Context, op *entity.StockOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, *op)
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*entity.StockOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getByIDCalls++
	for i := range f.ops {
		if f.ops[i].ID == id {
			op := f.ops[i]
			return &op, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) Query(_ context.Context, filter entity.OperationFilter, limit, offset int) ([]*entity.OperationWithProduct, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*entity.OperationWithProduct
	// Más recientes primero: los asientos se insertan en orden cronológico
	for i := len(f.ops) - 1; i >= 0; i-- {
		op := f.ops[i]
		if filter.StoreID != "" && op.StoreID != filter.StoreID {
			continue
		}
		if filter.ProductID != "" && op.ProductID != filter.ProductID {
			continue
		}
		if filter.OrderID != "" && op.OrderID != filter.OrderID {
			continue
		}
		if filter.Type != "" && op.Type != filter.Type {
			continue
		}
		if filter.PerformedBy != "" && op.PerformedBy != filter.PerformedBy {
			continue
		}
		matched = append(matched, &entity.OperationWithProduct{
			StockOperation: op,
			ProductName:    f.names[op.ProductID],
		})
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (f *fakeLedger) SumOutByOrder(_ context.Context, orderID string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sums := make(map[string]int64)
	for i := range f.ops {
		op := f.ops[i]
		if op.OrderID == orderID && op.Type == entity.OperationTypeOut {
			sums[op.ProductID] += op.Quantity
		}
	}
	return sums, nil
}

func (f *fakeLedger) clone() *fakeLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := newFakeLedger()
	c.ops = append(c.ops, f.ops...)
	for k, v := range f.names {
		c.names[k] = v
	}
	return c
}

func (f *fakeLedger) replace(from *fakeLedger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = from.ops
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ops)
}

func (f *fakeLedger) last() entity.StockOperation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ops[len(f.ops)-1]
}

// ──────────────────────────────────────────────────────────────────────────────

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]entity.Product
}

var _ repository.ProductRepository = (*fakeProducts)(nil)

func newFakeProducts(products ...entity.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]entity.Product{}}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	// El bloqueo real lo da el fakeTxRunner; aquí basta la lectura
	return f.GetByID(ctx, id)
}

func (f *fakeProducts) UpdateStock(_ context.Context, productID string, quantity int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[productID]
	if !ok {
		return nil
	}
	p.StockQuantity = quantity
	f.items[productID] = p
	return nil
}

func (f *fakeProducts) clone() *fakeProducts {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &fakeProducts{items: map[string]entity.Product{}}
	for k, v := range f.items {
		c.items[k] = v
	}
	return c
}

func (f *fakeProducts) replace(from *fakeProducts) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = from.items
}

func (f *fakeProducts) stock(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	mu            sync.Mutex
	orders        map[string]entity.Order
	statusUpdates int
}

var _ repository.OrderRepository = (*fakeOrders)(nil)

func newFakeOrders(orders ...entity.Order) *fakeOrders {
	f := &fakeOrders{orders: map[string]entity.Order{}}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	items := append([]entity.OrderItem(nil), o.Items...)
	o.Items = items
	return &o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[orderID]
	o.Status = status
	f.orders[orderID] = o
	f.statusUpdates++
	return nil
}

func (f *fakeOrders) status(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

// ──────────────────────────────────────────────────────────────────────────────

// fakeTxRunner serializa a los escritores (lock global en lugar del lock por
// fila de PostgreSQL) y publica los cambios solo si el callback no falla.
type fakeTxRunner struct {
	mu       sync.Mutex
	ledger   *fakeLedger
	products *fakeProducts

	// appendErr fuerza un fallo de almacenamiento del ledger dentro de la tx
	appendErr error
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	opRepo repository.StockOperationRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txLedger := r.ledger.clone()
	txProducts := r.products.clone()

	var opRepo repository.StockOperationRepository = txLedger
	if r.appendErr != nil {
		opRepo = &failingLedger{fakeLedger: txLedger, err: r.appendErr}
	}

	if err := fn(opRepo, txProducts); err != nil {
		return err
	}
	r.ledger.replace(txLedger)
	r.products.replace(txProducts)
	return nil
}

type failingLedger struct {
	*fakeLedger
	err error
}

func (f *failingLedger) Append(context.Context, *entity.StockOperation) error {
	return f.err
}

// ──────────────────────────────────────────────────────────────────────────────

// recordingActivity captura entradas del log de actividad y avisa por canal
// (el caso de uso las escribe en una goroutine).
type recordingActivity struct {
	mu      sync.Mutex
	actions []string
	done    chan struct{}
}

var _ repository.ActivityLogRepository = (*recordingActivity)(nil)

func (r *recordingActivity) Append(_ context.Context, entry *entity.ActivityEntry) error {
	r.mu.Lock()
	r.actions = append(r.actions, entry.Action)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

func (r *recordingActivity) lastAction() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return ""
	}
	return r.actions[len(r.actions)-1]
}

func timeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	mu    sync.Mutex
	items map[string]entity.StockOperation
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]entity.StockOperation{}}
}

func (f *fakeCache) Get(_ context.Context, id string) (*entity.StockOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	f.hits++
	return &op, nil
}

func (f *fakeCache) Set(_ context.Context, op *entity.StockOperation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[op.ID] = *op
	return nil
}
