package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/board-svc/internal/client"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/board-svc/internal/view"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/config"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

func main() {
	restaurantID, err := strconv.Atoi(config.Getenv("RESTAURANT_ID", "1"))
	if err != nil {
		log.Fatal("Invalid RESTAURANT_ID:", err)
	}

	filter := domain.Filter{
		Role:    domain.Role(config.Getenv("BOARD_ROLE", string(domain.RoleAdmin))),
		OrderID: os.Getenv("TRACK_ORDER_ID"),
	}
	if filter.Role == domain.RoleTracker && filter.OrderID == "" {
		log.Fatal("tracker board requires TRACK_ORDER_ID")
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	api := client.New(config.Getenv("ORDER_SVC_URL", "http://localhost:8080"))
	board := view.NewBoard(filter)
	subscriber := view.NewSubscriber(board,
		client.RedisSource{RDB: rdb, RestaurantID: restaurantID},
		client.APIResyncer{API: api, RestaurantID: restaurantID, Filter: filter},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return subscriber.Run(ctx)
	})
	group.Go(func() error {
		return renderLoop(ctx, board, filter)
	})

	log.Printf("Board (%s) watching restaurant %d", filter.Role, restaurantID)
	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

// renderLoop redraws once per second so urgency escalates on the local
// clock even when no event arrives.
func renderLoop(ctx context.Context, board *view.Board, filter domain.Filter) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			render(board, filter, now)
		}
	}
}

func render(board *view.Board, filter domain.Filter, now time.Time) {
	orders := board.Visible()
	tiers := board.Urgencies(now)

	fmt.Printf("\n=== %s board - %s (%d orders) ===\n",
		filter.Role, now.Format("15:04:05"), len(orders))
	for _, order := range orders {
		marker := ""
		if board.Pending(order.ID) {
			marker = " (pending)"
		}
		courier := ""
		if order.CourierID != nil {
			courier = " courier=" + *order.CourierID
		}
		fmt.Printf("  [%s] %s - %s %s%s%s\n",
			tiers[order.ID], order.ID[:8], order.CustomerName, order.Status, courier, marker)
	}
}
