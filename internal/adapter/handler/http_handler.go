package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/service"
)

type HTTPHandler struct {
	cartService *service.CartService
}

type ActionHTTPResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	State   *domain.Snapshot `json:"state,omitempty"`
}

func NewHTTPHandler(cartService *service.CartService) *HTTPHandler {
	return &HTTPHandler{cartService: cartService}
}

// Register mounts the action triggers of the storefront view on r.
func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/state", h.State).Methods(http.MethodGet)
	r.HandleFunc("/api/inventory/{id:[0-9]+}/increment", h.Increment).Methods(http.MethodPost)
	r.HandleFunc("/api/inventory/{id:[0-9]+}/decrement", h.Decrement).Methods(http.MethodPost)
	r.HandleFunc("/api/inventory/{id:[0-9]+}/add-to-cart", h.AddToCart).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/{id:[0-9]+}", h.DeleteFromCart).Methods(http.MethodDelete)
	r.HandleFunc("/api/checkout", h.Checkout).Methods(http.MethodPost)
}

func (h *HTTPHandler) Increment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	h.cartService.Increment(id)
	h.writeState(w, "quantity updated")
}

func (h *HTTPHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	h.cartService.Decrement(id)
	h.writeState(w, "quantity updated")
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	if err := h.cartService.AddToCart(detach(r), id); err != nil {
		h.writeActionError(w, err)
		return
	}
	h.writeState(w, "cart updated")
}

func (h *HTTPHandler) DeleteFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}
	if err := h.cartService.DeleteFromCart(detach(r), id); err != nil {
		h.writeActionError(w, err)
		return
	}
	h.writeState(w, "item removed")
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Checkout(detach(r)); err != nil {
		h.writeActionError(w, err)
		return
	}
	h.writeState(w, "checkout complete")
}

func (h *HTTPHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, "ok")
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeState(w http.ResponseWriter, message string) {
	snap := h.cartService.Snapshot()
	writeJSON(w, http.StatusOK, ActionHTTPResponse{
		Success: true,
		Message: message,
		State:   &snap,
	})
}

func (h *HTTPHandler) writeActionError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	message := "remote store request failed"

	if errors.Is(err, service.ErrCheckoutIncomplete) {
		message = "checkout incomplete, retry checkout"
	} else if domain.IsTransportError(err) {
		message = "remote store unreachable"
	}

	writeJSON(w, status, ActionHTTPResponse{
		Success: false,
		Message: message,
	})
}

// detach keeps a gateway call running after the view disconnects: once issued,
// its settlement is always processed.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ActionHTTPResponse{
			Success: false,
			Message: "invalid item id",
		})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
