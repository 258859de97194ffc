package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/adapter/gateway"
	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/service"
)

// StoreHandler serves the remote store's record API consumed by the gateway.
type StoreHandler struct {
	storeService *service.StoreService
	logger       *zap.Logger
}

type CreateCartHTTPRequest struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Amount  int    `json:"amount"`
}

type AmendCartHTTPRequest struct {
	Amount *int `json:"amount"`
}

type ErrorHTTPResponse struct {
	Error string `json:"error"`
}

func NewStoreHandler(storeService *service.StoreService, logger *zap.Logger) *StoreHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreHandler{storeService: storeService, logger: logger}
}

func (h *StoreHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/inventory", h.ListInventory).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.ListCart).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.CreateCartItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/{id:[0-9]+}", h.GetCartItem).Methods(http.MethodGet)
	r.HandleFunc("/cart/{id:[0-9]+}", h.AmendCartItem).Methods(http.MethodPatch)
	r.HandleFunc("/cart/{id:[0-9]+}", h.DeleteCartItem).Methods(http.MethodDelete)
}

func (h *StoreHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.storeService.ListInventory(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StoreHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.storeService.ListCart(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *StoreHandler) GetCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeStoreError(w, r, service.ErrInvalidRecord)
		return
	}

	item, err := h.storeService.GetCartItem(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *StoreHandler) CreateCartItem(w http.ResponseWriter, r *http.Request) {
	var req CreateCartHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeStoreError(w, r, service.ErrInvalidRecord)
		return
	}

	item, err := h.storeService.CreateCartItem(r.Context(), domain.CartItem{
		ID:      req.ID,
		Content: req.Content,
		Amount:  req.Amount,
	})
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.logger.Info("cart record created",
		zap.Int("item_id", item.ID),
		zap.Int("amount", item.Amount),
		zap.String("request_id", r.Header.Get(gateway.RequestIDHeader)))
	writeJSON(w, http.StatusCreated, item)
}

func (h *StoreHandler) AmendCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeStoreError(w, r, service.ErrInvalidRecord)
		return
	}

	var req AmendCartHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		h.writeStoreError(w, r, service.ErrInvalidRecord)
		return
	}

	item, err := h.storeService.UpdateCartAmount(r.Context(), id, *req.Amount)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.logger.Info("cart record amended",
		zap.Int("item_id", item.ID),
		zap.Int("amount", item.Amount),
		zap.String("request_id", r.Header.Get(gateway.RequestIDHeader)))
	writeJSON(w, http.StatusOK, item)
}

func (h *StoreHandler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeStoreError(w, r, service.ErrInvalidRecord)
		return
	}

	if err := h.storeService.DeleteCartItem(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.logger.Info("cart record deleted",
		zap.Int("item_id", id),
		zap.String("request_id", r.Header.Get(gateway.RequestIDHeader)))
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *StoreHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StoreHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrInvalidRecord):
		status = http.StatusBadRequest
		message = "invalid record"
	case errors.Is(err, service.ErrRecordNotFound):
		status = http.StatusNotFound
		message = "record not found"
	case errors.Is(err, service.ErrRecordExists):
		status = http.StatusConflict
		message = "record already exists"
	default:
		h.logger.Error("store request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get(gateway.RequestIDHeader)),
			zap.Error(err))
	}

	writeJSON(w, status, ErrorHTTPResponse{Error: message})
}
