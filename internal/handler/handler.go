// Package handler exposes the REST surface: routing, request binding and
// validation, response serialization, and domain-error-to-status mapping.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
	"github.com/ikram-javatech/product-order-service/internal/domain/order"
	"github.com/ikram-javatech/product-order-service/internal/domain/product"
	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// Handler serves the REST API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	auth     *auth.Service
	tokens   *auth.TokenIssuer
	products product.Repository
	orders   *order.Service
	validate *validator.Validate
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authSvc *auth.Service,
	tokens *auth.TokenIssuer,
	products product.Repository,
	orders *order.Service,
) *Handler {
	return &Handler{
		auth:     authSvc,
		tokens:   tokens,
		products: products,
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// routePolicy maps one (method, route) pair to its allowed role set. A nil
// role set admits any authenticated caller.
type routePolicy struct {
	method  string
	pattern string
	roles   []string
	handler http.HandlerFunc
}

// policies is the single authorization table for the protected surface,
// evaluated once at the boundary. Role checks never happen inside handlers.
func (h *Handler) policies() []routePolicy {
	anyRole := []string{user.RoleUser, user.RolePremium, user.RoleAdmin}
	adminOnly := []string{user.RoleAdmin}

	return []routePolicy{
		{http.MethodGet, "/api/products", anyRole, h.searchProducts},
		{http.MethodPost, "/api/products/create", adminOnly, h.createProduct},
		{http.MethodGet, "/api/products/{id}", nil, h.getProduct},
		{http.MethodPut, "/api/products/{id}", adminOnly, h.updateProduct},
		{http.MethodDelete, "/api/products/{id}", adminOnly, h.deleteProduct},
		{http.MethodPost, "/api/orders", []string{user.RoleUser, user.RolePremium}, h.placeOrder},
		{http.MethodGet, "/api/orders", adminOnly, h.listOrders},
		{http.MethodGet, "/api/orders/{id}", nil, h.getOrder},
	}
}

// Routes builds the API router: a public login route plus the protected
// surface wired through the authenticator and the policy table.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authenticate)
		for _, p := range h.policies() {
			pr.With(h.requireRoles(p.roles...)).Method(p.method, p.pattern, p.handler)
		}
	})

	return r
}
