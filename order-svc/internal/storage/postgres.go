package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// EnsureSchema creates the tables this service owns. Safe to run on
// every start.
func (r *PostgresRepo) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			restaurant_id INT NOT NULL,
			fulfillment_kind TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			table_number INT,
			courier_id TEXT,
			subtotal NUMERIC(10,2) NOT NULL DEFAULT 0,
			delivery_fee NUMERIC(10,2) NOT NULL DEFAULT 0,
			total NUMERIC(10,2) NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			qr_code BYTEA,
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_restaurant_status
			ON orders (restaurant_id, status)`,
		`CREATE TABLE IF NOT EXISTS order_lines (
			id SERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			product_name TEXT NOT NULL,
			quantity INT NOT NULL,
			observation TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			flavors TEXT NOT NULL DEFAULT '',
			unit_price NUMERIC(10,2) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS order_status_log (
			order_id UUID NOT NULL REFERENCES orders(id),
			status TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (order_id, status)
		)`,
		`CREATE TABLE IF NOT EXISTS couriers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			vehicle TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepo) CreateOrder(order *domain.Order) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO orders (id, restaurant_id, fulfillment_kind, status, customer_name,
			phone, table_number, subtotal, delivery_fee, total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at
	`, order.ID, order.RestaurantID, order.Kind, order.Status, order.CustomerName,
		order.Phone, order.TableNumber, order.Subtotal, order.DeliveryFee,
		order.Total, order.Notes).
		Scan(&order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		err = tx.QueryRow(`
			INSERT INTO order_lines (order_id, product_name, quantity, observation, size, flavors, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, line.OrderID, line.ProductName, line.Quantity, line.Observation,
			line.Size, line.Flavors, line.UnitPrice).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepo) GetOrder(orderID string) (*domain.Order, error) {
	order, err := r.scanOrder(r.db.QueryRow(`
		SELECT id, restaurant_id, fulfillment_kind, status, customer_name, phone,
			table_number, courier_id, subtotal, delivery_fee, total, notes,
			version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID))
	if err != nil {
		return nil, err
	}

	order.Lines, err = r.loadLines(orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListActive returns every non-terminal order of a restaurant, oldest
// first, lines included. This is the board resync query.
func (r *PostgresRepo) ListActive(restaurantID int) ([]domain.Order, error) {
	rows, err := r.db.Query(`
		SELECT id, restaurant_id, fulfillment_kind, status, customer_name, phone,
			table_number, courier_id, subtotal, delivery_fee, total, notes,
			version, created_at, updated_at
		FROM orders
		WHERE restaurant_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at ASC
	`, restaurantID, domain.StatusCompleted, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Lines, err = r.loadLines(orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// TransitionStatus commits a status change guarded by the caller's
// expected version. The WHERE clause is the whole concurrency story: a
// racing mutation bumps version first and this update matches zero
// rows.
func (r *PostgresRepo) TransitionStatus(orderID string, to domain.Status, expectedVersion int64) (*domain.Order, error) {
	result, err := r.db.Exec(`
		UPDATE orders
		SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
	`, orderID, to, expectedVersion)
	if err != nil {
		return nil, err
	}
	return r.afterGuardedUpdate(orderID, result)
}

// SetCourier assigns a courier under the same version guard as a
// status transition.
func (r *PostgresRepo) SetCourier(orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	result, err := r.db.Exec(`
		UPDATE orders
		SET courier_id = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
	`, orderID, courierID, expectedVersion)
	if err != nil {
		return nil, err
	}
	return r.afterGuardedUpdate(orderID, result)
}

func (r *PostgresRepo) afterGuardedUpdate(orderID string, result sql.Result) (*domain.Order, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// zero rows is either a missing order or a stale version
		if _, err := r.GetOrder(orderID); err != nil {
			return nil, err
		}
		return nil, domain.ErrConflict
	}
	return r.GetOrder(orderID)
}

// RecordStatusAt appends the first-observed timestamp for (order,
// status). Idempotent: a second call leaves the original row untouched
// and returns its timestamp.
func (r *PostgresRepo) RecordStatusAt(orderID string, status domain.Status, at time.Time) (time.Time, error) {
	_, err := r.db.Exec(`
		INSERT INTO order_status_log (order_id, status, recorded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id, status) DO NOTHING
	`, orderID, status, at)
	if err != nil {
		return time.Time{}, err
	}

	var recorded time.Time
	err = r.db.QueryRow(`
		SELECT recorded_at FROM order_status_log
		WHERE order_id = $1 AND status = $2
	`, orderID, status).Scan(&recorded)
	if err != nil {
		return time.Time{}, err
	}
	return recorded, nil
}

func (r *PostgresRepo) GetHistory(orderID string) ([]domain.StatusEntry, error) {
	rows, err := r.db.Query(`
		SELECT order_id, status, recorded_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY recorded_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StatusEntry
	for rows.Next() {
		var entry domain.StatusEntry
		if err := rows.Scan(&entry.OrderID, &entry.Status, &entry.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) GetCourier(courierID string) (*domain.Courier, error) {
	var courier domain.Courier
	err := r.db.QueryRow(`
		SELECT id, name, vehicle FROM couriers WHERE id = $1
	`, courierID).Scan(&courier.ID, &courier.Name, &courier.Vehicle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUnknownCourier
	}
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *PostgresRepo) SaveQRCode(orderID string, qr []byte) error {
	_, err := r.db.Exec(`UPDATE orders SET qr_code = $2 WHERE id = $1`, orderID, qr)
	return err
}

func (r *PostgresRepo) GetQRCode(orderID string) ([]byte, error) {
	var qr []byte
	err := r.db.QueryRow(`SELECT qr_code FROM orders WHERE id = $1`, orderID).Scan(&qr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return qr, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresRepo) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var tableNumber sql.NullInt64
	var courierID sql.NullString
	err := row.Scan(&order.ID, &order.RestaurantID, &order.Kind, &order.Status,
		&order.CustomerName, &order.Phone, &tableNumber, &courierID,
		&order.Subtotal, &order.DeliveryFee, &order.Total, &order.Notes,
		&order.Version, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if tableNumber.Valid {
		n := int(tableNumber.Int64)
		order.TableNumber = &n
	}
	if courierID.Valid {
		id := courierID.String
		order.CourierID = &id
	}
	return &order, nil
}

func (r *PostgresRepo) loadLines(orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, product_name, quantity, observation, size, flavors, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductName, &line.Quantity,
			&line.Observation, &line.Size, &line.Flavors, &line.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
