package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/config"
	httpapi "github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/api/http"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/fanout"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/pubsub"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/service"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/storage"
)

// teePublisher feeds the in-process fan-out manager (SSE clients) and
// the redis channel (external boards) from the same committed event.
type teePublisher struct {
	redis  *pubsub.Publisher
	fanout *fanout.Manager
}

func (t *teePublisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	t.fanout.Ingest(event)
	return t.redis.Publish(ctx, event)
}

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	rdb := config.MustInitRedis()
	defer rdb.Close()

	repo := storage.NewPostgresRepo(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	auditWriter := storage.NewAuditWriter(config.NewKafkaWriter("order-status-log"))
	defer auditWriter.Close()

	registry := prometheus.NewRegistry()
	fanoutMgr := fanout.NewManager(repo, fanout.NewMetrics(registry))

	publisher := &teePublisher{
		redis:  pubsub.NewPublisher(rdb),
		fanout: fanoutMgr,
	}

	qr := service.TrackerQRGenerator{
		BaseURL: config.Getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}

	orderSvc := service.NewOrderService(repo, publisher, auditWriter, qr)
	handler := httpapi.NewHandler(orderSvc, fanoutMgr)
	router := httpapi.NewRouter(handler, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return httpapi.StartServer(":"+config.Getenv("ORDER_SVC_PORT", "8080"), router)
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
