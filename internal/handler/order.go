package handler

import (
	"net/http"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
	"github.com/ikram-javatech/product-order-service/internal/domain/order"
)

// OrderRequest is the payload for POST /api/orders.
type OrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	// The policy table guarantees an identity here.
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}

	var req OrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.PlaceOrder(r.Context(), ident.Username, items)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListOrders(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
