package store

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storenetdev/storenet-backend/internal/apperr"
)

// Handler exposes one store node's RPC surface over HTTP.
type Handler struct{ node Service }

func NewHandler(node Service) *Handler { return &Handler{node: node} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores/"+h.node.StoreCode(), func(r chi.Router) {
		// Manager operations
		r.Post("/items", h.addItem)
		r.Post("/items/{item_id}/remove", h.removeItem)
		r.Get("/items", h.listItemAvailability)

		// Customer operations
		r.Post("/purchases", h.purchaseItem)
		r.Get("/items/search", h.findItem)
		r.Post("/returns", h.returnItem)

		// Store-to-store operations
		r.Post("/remote/purchases", h.requestRemotePurchase)
		r.Get("/remote/items/search", h.requestRemoteItemLookup)
		r.Post("/remote/returns", h.requestRemoteReturn)
	})
}

type statusResponse struct {
	Status string `json:"status"`
}

type reportResponse struct {
	Report string `json:"report"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ManagerID string  `json:"manager_id"`
		ItemID    string  `json:"item_id"`
		ItemName  string  `json:"item_name"`
		Quantity  int     `json:"quantity"`
		Price     float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status, err := h.node.AddItem(r.Context(), req.ManagerID, req.ItemID, req.ItemName, req.Quantity, req.Price)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, statusResponse{Status: status})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	var req struct {
		ManagerID string `json:"manager_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status, err := h.node.RemoveItem(r.Context(), req.ManagerID, itemID, req.Quantity)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, statusResponse{Status: status})
}

func (h *Handler) listItemAvailability(w http.ResponseWriter, r *http.Request) {
	managerID := r.URL.Query().Get("manager_id")
	report, err := h.node.ListItemAvailability(r.Context(), managerID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, reportResponse{Report: report})
}

func (h *Handler) purchaseItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
		ItemID     string `json:"item_id"`
		Date       string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.node.PurchaseItem(r.Context(), req.CustomerID, req.ItemID, req.Date)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) findItem(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	itemName := r.URL.Query().Get("name")
	report, err := h.node.FindItem(r.Context(), customerID, itemName)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, reportResponse{Report: report})
}

func (h *Handler) returnItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
		ItemID     string `json:"item_id"`
		Date       string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	status, err := h.node.ReturnItem(r.Context(), req.CustomerID, req.ItemID, req.Date)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, statusResponse{Status: status})
}

func (h *Handler) requestRemotePurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID      string  `json:"customer_id"`
		ItemID          string  `json:"item_id"`
		Date            string  `json:"date"`
		BudgetRemaining float64 `json:"budget_remaining"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.node.RequestRemotePurchase(r.Context(), req.CustomerID, req.ItemID, req.Date, req.BudgetRemaining)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) requestRemoteItemLookup(w http.ResponseWriter, r *http.Request) {
	itemName := r.URL.Query().Get("name")
	report, err := h.node.RequestRemoteItemLookup(r.Context(), itemName)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, reportResponse{Report: report})
}

func (h *Handler) requestRemoteReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID string `json:"customer_id"`
		ItemID     string `json:"item_id"`
		Date       string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	accepted, err := h.node.RequestRemoteReturn(r.Context(), req.CustomerID, req.ItemID, req.Date)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

func respondErr(w http.ResponseWriter, err error) {
	respond(w, errStatus(err), map[string]string{"error": err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrPolicyDenied):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
