package client

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/board-svc/internal/view"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/pubsub"
)

// RedisSource dials the restaurant's redis change channel; each call
// yields an independent connection, so reconnect always starts clean.
type RedisSource struct {
	RDB          *redis.Client
	RestaurantID int
}

func (s RedisSource) Connect(ctx context.Context) (view.Stream, error) {
	return pubsub.Connect(ctx, s.RDB, s.RestaurantID)
}

var _ view.Source = RedisSource{}

// APIResyncer backs the mandatory full resync with order-svc HTTP
// calls, scoped by the board's role filter.
type APIResyncer struct {
	API          *Client
	RestaurantID int
	Filter       domain.Filter
}

func (r APIResyncer) FetchSnapshot(ctx context.Context) ([]domain.Order, error) {
	if r.Filter.Role == domain.RoleTracker {
		order, err := r.API.GetOrder(ctx, r.Filter.OrderID)
		if err != nil {
			return nil, err
		}
		return []domain.Order{*order}, nil
	}
	return r.API.ListActive(ctx, r.RestaurantID)
}

func (r APIResyncer) FetchHistory(ctx context.Context, orderID string) ([]domain.StatusEntry, error) {
	return r.API.GetHistory(ctx, orderID)
}

var _ view.Resyncer = APIResyncer{}
