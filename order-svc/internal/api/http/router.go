package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func NewRouter(handler *Handler, registry *prometheus.Registry) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return cors.Default().Handler(r)
}

func StartServer(addr string, handler http.Handler) error {
	log.Printf("Order Service starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}
