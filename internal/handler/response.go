package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ikram-javatech/product-order-service/internal/domain/order"
	"github.com/ikram-javatech/product-order-service/internal/domain/product"
	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// ErrorResponse is the envelope shared by every error response.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// writeDomainError maps a domain error to its status code. Unclassified
// errors become a generic 500 and are logged server-side only.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr *order.InsufficientStockError
		qtyErr   *order.InvalidQuantityError
	)
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, r, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &qtyErr):
		writeError(w, r, http.StatusBadRequest, qtyErr.Error())
	case errors.Is(err, order.ErrAccessDenied):
		writeError(w, r, http.StatusForbidden, "Access denied")
	default:
		zctx.From(r.Context()).Error("Unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "Something went wrong")
	}
}

// decodeAndValidate binds a JSON body into v and runs struct validation,
// responding with a 400 envelope (field-level messages) on failure. It
// reports whether the request may proceed.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, len(vErrs))
			for i, fe := range vErrs {
				msgs[i] = fe.Field() + ": failed on " + fe.Tag()
			}
			writeError(w, r, http.StatusBadRequest, strings.Join(msgs, ", "))
		} else {
			writeError(w, r, http.StatusBadRequest, err.Error())
		}
		return false
	}
	return true
}
