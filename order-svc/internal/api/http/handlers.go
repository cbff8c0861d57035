package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/fanout"
	"github.com/luizfilipelima/app-restaurante-sistema-sub001/order-svc/internal/service"
)

type Handler struct {
	Orders service.OrderServiceInterface
	Fanout *fanout.Manager
}

func NewHandler(orderSvc service.OrderServiceInterface, fanoutMgr *fanout.Manager) *Handler {
	return &Handler{
		Orders: orderSvc,
		Fanout: fanoutMgr,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/restaurants/{restaurantId}/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/restaurants/{restaurantId}/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/orders/events", h.streamEvents).Methods("GET")

	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/history", h.getHistory).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", h.requestTransition).Methods("POST")
	r.HandleFunc("/api/orders/{id}/courier", h.assignCourier).Methods("POST")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getQRCode).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(mux.Vars(r)["restaurantId"])
	if err != nil {
		http.Error(w, "invalid restaurant id", http.StatusBadRequest)
		return
	}

	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order.RestaurantID = restaurantID

	created, err := h.Orders.Create(&order)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(mux.Vars(r)["restaurantId"])
	if err != nil {
		http.Error(w, "invalid restaurant id", http.StatusBadRequest)
		return
	}

	orders, err := h.Orders.ListActive(restaurantID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Snapshot(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Orders.History(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.StatusEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

type transitionRequest struct {
	TargetStatus    domain.Status `json:"target_status"`
	ExpectedVersion int64         `json:"expected_version"`
	ActorRole       domain.Role   `json:"actor_role"`
}

func (h *Handler) requestTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Orders.RequestTransition(mux.Vars(r)["id"], req.TargetStatus, req.ExpectedVersion, req.ActorRole)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

type courierRequest struct {
	CourierID       string `json:"courier_id"`
	ExpectedVersion int64  `json:"expected_version"`
}

func (h *Handler) assignCourier(w http.ResponseWriter, r *http.Request) {
	var req courierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.Orders.AssignCourier(mux.Vars(r)["id"], req.CourierID, req.ExpectedVersion)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) getQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Orders.QRCode(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if len(qr) == 0 {
		http.Error(w, "qr code not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(qr)
}

// streamEvents is the SSE subscription endpoint: one initial snapshot
// set, then change events until the client goes away. A client that
// reconnects gets a fresh snapshot, which is exactly the forced resync
// the reconcilers rely on.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.Atoi(mux.Vars(r)["restaurantId"])
	if err != nil {
		http.Error(w, "invalid restaurant id", http.StatusBadRequest)
		return
	}

	filter := domain.Filter{
		Role:    domain.Role(r.URL.Query().Get("role")),
		OrderID: r.URL.Query().Get("order_id"),
	}
	if filter.Role == "" {
		filter.Role = domain.RoleAdmin
	}
	if filter.Role == domain.RoleTracker && filter.OrderID == "" {
		http.Error(w, "tracker role requires order_id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, snapshot, err := h.Fanout.Subscribe(restaurantID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	defer h.Fanout.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if snapshot == nil {
		snapshot = []domain.Order{}
	}
	payload, _ := json.Marshal(snapshot)
	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				// subscription was dropped; client must reconnect
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Warning: failed to marshal change event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrAlreadyTerminal):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrUnknownCourier):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
