package handler

import (
	"net/http"

	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
)

// PageHandler backs the few server routes the session middleware
// gates. Real page rendering lives in the frontend; these endpoints
// exist so protected-path and login-redirect semantics are exercised
// against routes that actually respond.
type PageHandler struct {
	carts cartAPI
}

func NewPageHandler(carts cartAPI) *PageHandler {
	return &PageHandler{carts: carts}
}

// CartPage serves the cart view data. The route sits in the protected
// set, so the middleware has already redirected anonymous callers.
func (h *PageHandler) CartPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	cart, err := h.carts.GetCart(r.Context(), cartRef(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{
		"page": "login",
		"from": r.URL.Query().Get("from"),
	})
}

func (h *PageHandler) SignupPage(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"page": "signup"})
}
