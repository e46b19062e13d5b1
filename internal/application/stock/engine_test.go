package stock_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/stock"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

const (
	testStoreID  = "store-1"
	testStaffID  = "staff-1"
	testProductA = "prod-a"
	testProductB = "prod-b"
	testOrderID  = "order-1"
)

// testEnv agrupa los fakes y el caso de uso bajo prueba.
type testEnv struct {
	ledger   *fakeLedger
	products *fakeProducts
	orders   *fakeOrders
	engine   *stock.RecordOperationUseCase
}

func newTestEnv(products []entity.Product, orders []entity.Order) *testEnv {
	env := &testEnv{
		ledger:   newFakeLedger(),
		products: newFakeProducts(products...),
		orders:   newFakeOrders(orders...),
	}
	txRunner := &fakeTxRunner{ledger: env.ledger, products: env.products}
	log := logger.Nop()
	reconciler := stock.NewFulfillmentReconciler(env.orders, env.ledger, log)
	env.engine = stock.NewRecordOperationUseCase(txRunner, env.products, reconciler, nil, log)
	return env
}

func productWithStock(id string, qty int64) entity.Product {
	return entity.Product{ID: id, StoreID: testStoreID, SKU: "SKU-" + id, Name: "Producto " + id, StockQuantity: qty, IsActive: true}
}

// Entrada simple: el stock sube y el asiento registra anterior/resultante.
func TestRecordOperation_EntradaActualizaStockYLedger(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 50)}, nil)

	result, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		Type:      entity.OperationTypeIn,
		Quantity:  20,
		Reason:    "recepción de mercancía",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50), result.Operation.PreviousQuantity)
	assert.Equal(t, int64(70), result.Operation.NewQuantity)
	assert.Equal(t, int64(70), env.products.stock(testProductA), "el agregado debe quedar en 70")
	require.Equal(t, 1, env.ledger.count(), "debe existir exactamente un asiento")

	last := env.ledger.last()
	assert.Equal(t, entity.OperationTypeIn, last.Type)
	assert.Equal(t, testStaffID, last.PerformedBy)
	assert.False(t, result.OrderUpdated, "una entrada nunca toca órdenes")
}

// Salida ligada a una orden de un solo renglón: al cubrirla pasa a shipped.
func TestRecordOperation_SalidaCompletaOrdenDeUnRenglon(t *testing.T) {
	order := entity.Order{
		ID:      testOrderID,
		StoreID: testStoreID,
		Status:  entity.OrderStatusProcessing,
		Items:   []entity.OrderItem{{ProductID: testProductA, Quantity: 5}},
	}
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 5)}, []entity.Order{order})

	result, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		OrderID:   testOrderID,
		Type:      entity.OperationTypeOut,
		Quantity:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), env.products.stock(testProductA))
	assert.True(t, result.OrderUpdated)
	assert.Equal(t, entity.OrderStatusShipped, result.OrderStatus)
	assert.Equal(t, entity.OrderStatusShipped, env.orders.status(testOrderID))
}

// Orden con dos renglones y solo uno despachado: el estado no cambia.
func TestRecordOperation_OrdenParcialNoAvanza(t *testing.T) {
	order := entity.Order{
		ID:      testOrderID,
		StoreID: testStoreID,
		Status:  entity.OrderStatusProcessing,
		Items: []entity.OrderItem{
			{ProductID: testProductA, Quantity: 3},
			{ProductID: testProductB, Quantity: 2},
		},
	}
	env := newTestEnv([]entity.Product{
		productWithStock(testProductA, 10),
		productWithStock(testProductB, 10),
	}, []entity.Order{order})

	result, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		OrderID:   testOrderID,
		Type:      entity.OperationTypeOut,
		Quantity:  3,
	})
	require.NoError(t, err)

	assert.False(t, result.OrderUpdated)
	assert.Equal(t, entity.OrderStatusProcessing, result.OrderStatus)
	assert.Equal(t, entity.OrderStatusProcessing, env.orders.status(testOrderID))
	assert.Equal(t, int64(7), env.products.stock(testProductA))
}

// Cantidad no positiva: rechazo sin efectos.
func TestRecordOperation_CantidadInvalidaSinEfectos(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 50)}, nil)

	for _, qty := range []int64{0, -3} {
		_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
			StoreID:   testStoreID,
			StaffID:   testStaffID,
			ProductID: testProductA,
			Type:      entity.OperationTypeOut,
			Quantity:  qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Equal(t, 0, env.ledger.count(), "no debe haber asientos")
	assert.Equal(t, int64(50), env.products.stock(testProductA), "el stock no debe cambiar")
}

// Producto inexistente: rechazo sin efectos.
func TestRecordOperation_ProductoInexistente(t *testing.T) {
	env := newTestEnv(nil, nil)

	_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: "no-existe",
		Type:      entity.OperationTypeIn,
		Quantity:  10,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, 0, env.ledger.count())
}

// Producto de otra tienda: el principal no puede operarlo.
func TestRecordOperation_ProductoDeOtraTienda(t *testing.T) {
	foreign := productWithStock(testProductA, 10)
	foreign.StoreID = "store-ajena"
	env := newTestEnv([]entity.Product{foreign}, nil)

	_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		Type:      entity.OperationTypeIn,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Tipo desconocido o entrada ligada a orden: entrada inválida.
func TestRecordOperation_EntradasInvalidas(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 10)}, nil)

	_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID: testStoreID, StaffID: testStaffID, ProductID: testProductA,
		Type: "transfer", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID: testStoreID, StaffID: testStaffID, ProductID: testProductA,
		Type: entity.OperationTypeIn, Quantity: 1, OrderID: testOrderID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una entrada no puede ir ligada a una orden")
}

// Salida mayor al stock disponible: se rechaza (sin sobreventa).
func TestRecordOperation_StockInsuficiente(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 3)}, nil)

	_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		Type:      entity.OperationTypeOut,
		Quantity:  4,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, env.ledger.count())
	assert.Equal(t, int64(3), env.products.stock(testProductA))
}

// Fallo de almacenamiento dentro de la transacción: nada queda a medias.
func TestRecordOperation_FalloDeAlmacenamientoRevierteTodo(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 50)}, nil)
	storageErr := errors.New("connection reset")
	txRunner := &fakeTxRunner{ledger: env.ledger, products: env.products, appendErr: storageErr}
	log := logger.Nop()
	engine := stock.NewRecordOperationUseCase(
		txRunner, env.products,
		stock.NewFulfillmentReconciler(env.orders, env.ledger, log),
		nil, log,
	)

	_, err := engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID:   testStoreID,
		StaffID:   testStaffID,
		ProductID: testProductA,
		Type:      entity.OperationTypeIn,
		Quantity:  10,
	})
	require.ErrorIs(t, err, storageErr)
	assert.Equal(t, 0, env.ledger.count(), "el asiento no debe publicarse")
	assert.Equal(t, int64(50), env.products.stock(testProductA), "el agregado no debe publicarse")
}

// Secuencia mixta: el stock final es inicial + Σ(entradas) − Σ(salidas) y
// cada asiento encadena anterior -> resultante sin huecos.
func TestRecordOperation_SecuenciaConservaLaAritmetica(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 50)}, nil)

	steps := []struct {
		opType string
		qty    int64
	}{
		{entity.OperationTypeIn, 20},
		{entity.OperationTypeOut, 15},
		{entity.OperationTypeIn, 5},
		{entity.OperationTypeOut, 40},
	}
	var in, out int64
	for _, s := range steps {
		_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
			StoreID: testStoreID, StaffID: testStaffID, ProductID: testProductA,
			Type: s.opType, Quantity: s.qty,
		})
		require.NoError(t, err)
		if s.opType == entity.OperationTypeIn {
			in += s.qty
		} else {
			out += s.qty
		}
	}

	assert.Equal(t, 50+in-out, env.products.stock(testProductA))

	// El último new_quantity del ledger coincide con el agregado
	assert.Equal(t, env.products.stock(testProductA), env.ledger.last().NewQuantity)

	// Cada asiento es internamente consistente (anterior ± cantidad = resultante)
	views, _, err := env.ledger.Query(context.Background(), entity.OperationFilter{ProductID: testProductA}, 100, 0)
	require.NoError(t, err)
	for _, v := range views {
		if v.Type == entity.OperationTypeIn {
			assert.Equal(t, v.PreviousQuantity+v.Quantity, v.NewQuantity)
		} else {
			assert.Equal(t, v.PreviousQuantity-v.Quantity, v.NewQuantity)
		}
	}
}

// Dos salidas concurrentes de 1 sobre stock 1: exactamente una gana.
// Sin la serialización por producto ambas leerían anterior=1 y se perdería
// un movimiento.
func TestRecordOperation_SalidasConcurrentesSerializadas(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 1)}, nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.engine.RecordOperation(context.Background(), stock.OperationInput{
				StoreID: testStoreID, StaffID: testStaffID, ProductID: testProductA,
				Type: entity.OperationTypeOut, Quantity: 1,
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var okCount, rejectedCount int
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejectedCount++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, okCount, "exactamente una salida debe confirmarse")
	assert.Equal(t, 1, rejectedCount, "la otra debe rechazarse por stock insuficiente")
	assert.Equal(t, int64(0), env.products.stock(testProductA))
	assert.Equal(t, 1, env.ledger.count(), "un solo asiento para un solo decremento real")
}

// El log de actividad es best-effort: se escribe tras el commit.
func TestRecordOperation_RegistraActividad(t *testing.T) {
	env := newTestEnv([]entity.Product{productWithStock(testProductA, 10)}, nil)
	activity := &recordingActivity{done: make(chan struct{}, 2)}
	txRunner := &fakeTxRunner{ledger: env.ledger, products: env.products}
	log := logger.Nop()
	engine := stock.NewRecordOperationUseCase(
		txRunner, env.products,
		stock.NewFulfillmentReconciler(env.orders, env.ledger, log),
		activity, log,
	)

	_, err := engine.RecordOperation(context.Background(), stock.OperationInput{
		StoreID: testStoreID, StaffID: testStaffID, ProductID: testProductA,
		Type: entity.OperationTypeIn, Quantity: 2,
	})
	require.NoError(t, err)

	select {
	case <-activity.done:
	case <-timeout(t):
	}
	assert.Equal(t, "stock_operation.recorded", activity.lastAction())
}
