package domain

import "time"

type Order struct {
	ID           string      `json:"id"`
	RestaurantID int         `json:"restaurant_id"`
	Kind         Fulfillment `json:"fulfillment_kind"`
	Status       Status      `json:"status"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone,omitempty"`
	TableNumber  *int        `json:"table_number,omitempty"`
	CourierID    *string     `json:"courier_id,omitempty"`
	Subtotal     float64     `json:"subtotal"`
	DeliveryFee  float64     `json:"delivery_fee"`
	Total        float64     `json:"total"`
	Notes        string      `json:"notes,omitempty"`
	Lines        []OrderLine `json:"lines"`
	Version      int64       `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderLine is immutable once the order is placed; edits and refunds
// happen in flows outside this service.
type OrderLine struct {
	ID          int     `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Observation string  `json:"observation,omitempty"`
	Size        string  `json:"size,omitempty"`
	Flavors     string  `json:"flavors,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
}

type Courier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Vehicle string `json:"vehicle"`
}

// StatusEntry is one row of the append-only status ledger: the first
// time an order was observed in a given status. Entries are never
// updated or deleted.
type StatusEntry struct {
	OrderID    string    `json:"order_id"`
	Status     Status    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ChangeEvent is published once per committed mutation and fanned out
// to every subscriber of the order's restaurant. Delivery is
// at-least-once; consumers reconcile by UpdatedAt, never by arrival
// order.
type ChangeEvent struct {
	OrderID       string    `json:"order_id"`
	RestaurantID  int       `json:"restaurant_id"`
	Status        Status    `json:"status"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int64     `json:"version"`
	CourierID     *string   `json:"courier_id,omitempty"`
	ChangedFields []string  `json:"changed_fields"`
}

// AuditMessage is the kafka record appended for every committed
// transition, keyed by order id.
type AuditMessage struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"order_id"`
	RestaurantID int       `json:"restaurant_id"`
	OldStatus    Status    `json:"old_status"`
	NewStatus    Status    `json:"new_status"`
	ChangedBy    string    `json:"changed_by"`
	Timestamp    time.Time `json:"timestamp"`
}
