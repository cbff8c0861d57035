package client

import (
	"context"
	"errors"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/board-svc/internal/view"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Controller runs the optimistic mutation cycle for a board: apply
// locally right away, send to order-svc, then either confirm with the
// authoritative result or roll back and show the actual current state.
type Controller struct {
	Board *view.Board
	API   *Client
	Actor domain.Role
}

func (ctl *Controller) Transition(ctx context.Context, orderID string, target domain.Status) (*domain.Order, error) {
	current, ok := ctl.Board.Get(orderID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	ctl.Board.ApplyOptimistic(orderID, func(order *domain.Order) {
		order.Status = target
	})

	order, err := ctl.API.RequestTransition(ctx, orderID, target, current.Version, ctl.Actor)
	if err != nil {
		ctl.Board.Rollback(orderID)
		ctl.showActualState(ctx, orderID, err)
		return nil, err
	}

	ctl.Board.ApplyAuthoritative(*order)
	return order, nil
}

// showActualState replaces the rolled-back value with whatever the
// server holds now, so a losing actor sees the real current state
// rather than their stale cache.
func (ctl *Controller) showActualState(ctx context.Context, orderID string, cause error) {
	if !errors.Is(cause, domain.ErrConflict) &&
		!errors.Is(cause, domain.ErrIllegalTransition) &&
		!errors.Is(cause, domain.ErrAlreadyTerminal) {
		return
	}
	if snapshot, err := ctl.API.GetOrder(ctx, orderID); err == nil {
		ctl.Board.ApplyAuthoritative(*snapshot)
	}
}
