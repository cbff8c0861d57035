package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Store accumulates how long orders dwell in each status, per
// restaurant, and mirrors the rolling averages into redis for cheap
// dashboard reads.
type Store struct {
	db  *sql.DB
	rdb *redis.Client
	ctx context.Context
}

func NewStore(db *sql.DB, rdb *redis.Client) *Store {
	return &Store{
		db:  db,
		rdb: rdb,
		ctx: context.Background(),
	}
}

func (s *Store) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS status_dwell (
			restaurant_id INT NOT NULL,
			status TEXT NOT NULL,
			total_seconds BIGINT NOT NULL DEFAULT 0,
			samples BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (restaurant_id, status)
		)`,
		`CREATE TABLE IF NOT EXISTS status_marks (
			order_id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			entered_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure analytics schema: %w", err)
		}
	}
	return nil
}

// RecordTransition folds one audit message into the dwell aggregates.
// The mark row remembers when each order entered its current status;
// replayed messages for a status the order already left just move the
// mark forward again with the same values, so at-least-once delivery
// is safe.
func (s *Store) RecordTransition(msg domain.AuditMessage) error {
	var markStatus domain.Status
	var enteredAt time.Time
	err := s.db.QueryRow(`
		SELECT status, entered_at FROM status_marks WHERE order_id = $1
	`, msg.OrderID).Scan(&markStatus, &enteredAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if err == nil && markStatus == msg.OldStatus {
		dwell := int64(msg.Timestamp.Sub(enteredAt).Seconds())
		if dwell < 0 {
			dwell = 0
		}
		if _, err := s.db.Exec(`
			INSERT INTO status_dwell (restaurant_id, status, total_seconds, samples)
			VALUES ($1, $2, $3, 1)
			ON CONFLICT (restaurant_id, status)
			DO UPDATE SET total_seconds = status_dwell.total_seconds + $3,
				samples = status_dwell.samples + 1
		`, msg.RestaurantID, msg.OldStatus, dwell); err != nil {
			return err
		}
		s.mirrorAverage(msg.RestaurantID, msg.OldStatus)
	}

	_, err = s.db.Exec(`
		INSERT INTO status_marks (order_id, status, entered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id)
		DO UPDATE SET status = $2, entered_at = $3
	`, msg.OrderID, msg.NewStatus, msg.Timestamp)
	return err
}

func (s *Store) mirrorAverage(restaurantID int, status domain.Status) {
	avg, err := s.AverageDwell(restaurantID, status)
	if err != nil {
		return
	}
	key := fmt.Sprintf("analytics:dwell:%d", restaurantID)
	s.rdb.HSet(s.ctx, key, string(status), avg)
	s.rdb.Expire(s.ctx, key, 7*24*time.Hour)
}

// AverageDwell returns the mean seconds orders of one restaurant spent
// in the given status.
func (s *Store) AverageDwell(restaurantID int, status domain.Status) (float64, error) {
	var total, samples int64
	err := s.db.QueryRow(`
		SELECT total_seconds, samples FROM status_dwell
		WHERE restaurant_id = $1 AND status = $2
	`, restaurantID, status).Scan(&total, &samples)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if samples == 0 {
		return 0, nil
	}
	return float64(total) / float64(samples), nil
}

// DwellReport returns the full per-status average map for a restaurant.
func (s *Store) DwellReport(restaurantID int) (map[string]float64, error) {
	rows, err := s.db.Query(`
		SELECT status, total_seconds, samples FROM status_dwell
		WHERE restaurant_id = $1
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := make(map[string]float64)
	for rows.Next() {
		var status string
		var total, samples int64
		if err := rows.Scan(&status, &total, &samples); err != nil {
			return nil, err
		}
		if samples > 0 {
			report[status] = float64(total) / float64(samples)
		}
	}
	return report, rows.Err()
}
