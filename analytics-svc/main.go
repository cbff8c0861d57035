package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/analytics-svc/internal/service"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/analytics-svc/internal/storage"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/config"
)

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	rdb := config.MustInitRedis()
	defer rdb.Close()

	store := storage.NewStore(db, rdb)
	if err := store.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	reader := config.NewKafkaReader("order-status-log", "analytics-svc")
	defer reader.Close()

	consumer := service.NewConsumer(reader, store)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"service":   "analytics-svc",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/analytics/dwell", func(w http.ResponseWriter, req *http.Request) {
		restaurantID, err := strconv.Atoi(mux.Vars(req)["restaurantId"])
		if err != nil {
			http.Error(w, "invalid restaurant id", http.StatusBadRequest)
			return
		}
		report, err := store.DwellReport(restaurantID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}).Methods("GET")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		consumer.Start(ctx)
		return ctx.Err()
	})
	group.Go(func() error {
		addr := ":" + config.Getenv("ANALYTICS_SVC_PORT", "8083")
		log.Printf("Analytics Service starting on %s", addr)
		return http.ListenAndServe(addr, cors.Default().Handler(r))
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
