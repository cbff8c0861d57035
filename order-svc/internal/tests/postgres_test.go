package tests

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/storage"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

var orderColumns = []string{
	"id", "restaurant_id", "fulfillment_kind", "status", "customer_name", "phone",
	"table_number", "courier_id", "subtotal", "delivery_fee", "total", "notes",
	"version", "created_at", "updated_at",
}

func orderRow(id string, status domain.Status, version int64) *sqlmock.Rows {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(orderColumns).AddRow(
		id, 1, string(domain.FulfillmentTable), string(status), "Ana", "",
		nil, nil, 30.0, 0.0, 30.0, "", version, now, now)
}

func expectGetOrder(dbMock sqlmock.Sqlmock, id string, rows *sqlmock.Rows) {
	dbMock.ExpectQuery("SELECT id, restaurant_id, fulfillment_kind").
		WithArgs(id).WillReturnRows(rows)
	dbMock.ExpectQuery("SELECT id, order_id, product_name").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_name", "quantity", "observation", "size", "flavors", "unit_price",
		}))
}

func TestTransitionStatusCommits(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectExec("UPDATE orders").
		WithArgs("o-1", domain.StatusReady, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectGetOrder(dbMock, "o-1", orderRow("o-1", domain.StatusReady, 3))

	repo := storage.NewPostgresRepo(db)
	order, err := repo.TransitionStatus("o-1", domain.StatusReady, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, order.Status)
	assert.Equal(t, int64(3), order.Version)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

// Zero rows with an order that still exists means the version guard
// lost, not that the order vanished.
func TestTransitionStatusStaleVersionIsConflict(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectExec("UPDATE orders").
		WithArgs("o-1", domain.StatusReady, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectGetOrder(dbMock, "o-1", orderRow("o-1", domain.StatusReady, 3))

	repo := storage.NewPostgresRepo(db)
	_, err = repo.TransitionStatus("o-1", domain.StatusReady, 2)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTransitionStatusMissingOrderIsNotFound(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectExec("UPDATE orders").
		WithArgs("ghost", domain.StatusReady, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectQuery("SELECT id, restaurant_id, fulfillment_kind").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	repo := storage.NewPostgresRepo(db)
	_, err = repo.TransitionStatus("ghost", domain.StatusReady, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestRecordStatusAtReturnsFirstTimestamp(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	first := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Minute)

	dbMock.ExpectExec("INSERT INTO order_status_log").
		WithArgs("o-1", domain.StatusPreparing, later).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectQuery("SELECT recorded_at FROM order_status_log").
		WithArgs("o-1", domain.StatusPreparing).
		WillReturnRows(sqlmock.NewRows([]string{"recorded_at"}).AddRow(first))

	repo := storage.NewPostgresRepo(db)
	recorded, err := repo.RecordStatusAt("o-1", domain.StatusPreparing, later)
	require.NoError(t, err)
	assert.Equal(t, first, recorded)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
