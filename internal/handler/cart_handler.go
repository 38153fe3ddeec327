package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/internal/service"
	"go-storefront/pkg/apierror"
)

// GuestCartCookie holds the remote cart id for anonymous shoppers.
const GuestCartCookie = "cart_id"

// Guest carts outlive the browser session; a week matches the refresh
// token horizon.
const guestCartCookieMaxAge = 7 * 24 * 60 * 60

type cartAPI interface {
	GetCart(ctx context.Context, ref service.CartRef) (*model.Cart, error)
	AddItem(ctx context.Context, ref service.CartRef, merchandiseID string, quantity int) (*model.Cart, string, error)
	SetLineQuantity(ctx context.Context, ref service.CartRef, lineID string, quantity int) (*model.Cart, error)
	RemoveLine(ctx context.Context, ref service.CartRef, lineID string) (*model.Cart, error)
	CheckoutURL(ctx context.Context, ref service.CartRef) (string, error)
}

type CartHandler struct {
	carts         cartAPI
	secureCookies bool
}

func NewCartHandler(carts cartAPI, secureCookies bool) *CartHandler {
	return &CartHandler{carts: carts, secureCookies: secureCookies}
}

// cartRef assembles the request's cart resolution inputs: identity from
// the session middleware, guest cart id from the cookie. Client headers
// are never consulted directly.
func cartRef(r *http.Request) service.CartRef {
	ref := service.CartRef{}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		ref.UserID = userID
	}
	if cookie, err := r.Cookie(GuestCartCookie); err == nil {
		ref.GuestCartID = strings.TrimSpace(cookie.Value)
	}
	return ref
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), cartRef(r))
	if err != nil {
		writeError(w, err)
		return
	}

	// A nil cart is a valid state: nothing resolved, nothing bought.
	writeSuccess(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}
	if payload.MerchandiseID == "" || payload.Quantity <= 0 {
		writeError(w, apierror.BadRequest("merchandiseId and quantity are required", ""))
		return
	}

	ref := cartRef(r)
	cart, createdCartID, err := h.carts.AddItem(r.Context(), ref, payload.MerchandiseID, payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	// Authenticated callers had the new cart id persisted to their
	// user record; anonymous ones carry it in the cookie.
	if createdCartID != "" && !ref.Authenticated() {
		http.SetCookie(w, &http.Cookie{
			Name:     GuestCartCookie,
			Value:    createdCartID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   guestCartCookieMaxAge,
		})
	}

	writeSuccess(w, http.StatusOK, cart)
}

func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}
	if payload.LineID == "" || payload.Quantity == nil {
		writeError(w, apierror.BadRequest("lineId and quantity are required", ""))
		return
	}

	cart, err := h.carts.SetLineQuantity(r.Context(), cartRef(r), payload.LineID, *payload.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RemoveLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}
	if payload.LineID == "" {
		writeError(w, apierror.BadRequest("lineId is required", ""))
		return
	}

	cart, err := h.carts.RemoveLine(r.Context(), cartRef(r), payload.LineID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cart)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	url, err := h.carts.CheckoutURL(r.Context(), cartRef(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{"checkout_url": url})
}
