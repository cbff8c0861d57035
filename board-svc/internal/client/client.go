package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Client talks to order-svc: the resync primitives plus the mutating
// calls a board performs.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) ListActive(ctx context.Context, restaurantID int) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.get(ctx, fmt.Sprintf("/api/restaurants/%d/orders", restaurantID), &orders)
	return orders, err
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := c.get(ctx, "/api/orders/"+orderID, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetHistory(ctx context.Context, orderID string) ([]domain.StatusEntry, error) {
	var entries []domain.StatusEntry
	err := c.get(ctx, "/api/orders/"+orderID+"/history", &entries)
	return entries, err
}

func (c *Client) RequestTransition(ctx context.Context, orderID string, target domain.Status, expectedVersion int64, actor domain.Role) (*domain.Order, error) {
	payload := map[string]interface{}{
		"target_status":    target,
		"expected_version": expectedVersion,
		"actor_role":       actor,
	}
	var order domain.Order
	if err := c.post(ctx, "/api/orders/"+orderID+"/status", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) AssignCourier(ctx context.Context, orderID, courierID string, expectedVersion int64) (*domain.Order, error) {
	payload := map[string]interface{}{
		"courier_id":       courierID,
		"expected_version": expectedVersion,
	}
	var order domain.Order
	if err := c.post(ctx, "/api/orders/"+orderID+"/courier", payload, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	message := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusUnprocessableEntity:
		if strings.Contains(message, "terminal") {
			return domain.ErrAlreadyTerminal
		}
		return domain.ErrIllegalTransition
	default:
		return fmt.Errorf("order-svc returned %d: %s", resp.StatusCode, message)
	}
}
