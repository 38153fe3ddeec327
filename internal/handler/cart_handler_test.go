package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/internal/service"
	"go-storefront/pkg/apierror"
)

type stubCartAPI struct {
	lastRef service.CartRef

	getCartFn     func(ref service.CartRef) (*model.Cart, error)
	addItemFn     func(ref service.CartRef, merchandiseID string, quantity int) (*model.Cart, string, error)
	setQuantityFn func(ref service.CartRef, lineID string, quantity int) (*model.Cart, error)
	removeLineFn  func(ref service.CartRef, lineID string) (*model.Cart, error)
	checkoutFn    func(ref service.CartRef) (string, error)
}

func (s *stubCartAPI) GetCart(_ context.Context, ref service.CartRef) (*model.Cart, error) {
	s.lastRef = ref
	return s.getCartFn(ref)
}

func (s *stubCartAPI) AddItem(_ context.Context, ref service.CartRef, merchandiseID string, quantity int) (*model.Cart, string, error) {
	s.lastRef = ref
	return s.addItemFn(ref, merchandiseID, quantity)
}

func (s *stubCartAPI) SetLineQuantity(_ context.Context, ref service.CartRef, lineID string, quantity int) (*model.Cart, error) {
	s.lastRef = ref
	return s.setQuantityFn(ref, lineID, quantity)
}

func (s *stubCartAPI) RemoveLine(_ context.Context, ref service.CartRef, lineID string) (*model.Cart, error) {
	s.lastRef = ref
	return s.removeLineFn(ref, lineID)
}

func (s *stubCartAPI) CheckoutURL(_ context.Context, ref service.CartRef) (string, error) {
	s.lastRef = ref
	return s.checkoutFn(ref)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func findSetCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCartHandler_GetEmptyCartIsNullData(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{getCartFn: func(service.CartRef) (*model.Cart, error) { return nil, nil }}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	require.True(t, body.Success)
	require.Nil(t, body.Data)
}

func TestCartHandler_GetForwardsGuestCookie(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{getCartFn: func(service.CartRef) (*model.Cart, error) {
		return &model.Cart{ID: "gid://shop/Cart/1"}, nil
	}}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: GuestCartCookie, Value: "gid://shop/Cart/1"})
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gid://shop/Cart/1", api.lastRef.GuestCartID)
	require.Empty(t, api.lastRef.UserID)
}

func TestCartHandler_AddItemValidation(t *testing.T) {
	t.Parallel()

	h := NewCartHandler(&stubCartAPI{}, false)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing merchandise id", `{"quantity":1}`},
		{"zero quantity", `{"merchandiseId":"gid://shop/ProductVariant/V1","quantity":0}`},
		{"negative quantity", `{"merchandiseId":"gid://shop/ProductVariant/V1","quantity":-2}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.AddItem(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeEnvelope(t, rec)
			require.False(t, body.Success)
			require.Equal(t, "BAD_REQUEST", body.Error.Code)
		})
	}
}

func TestCartHandler_GuestAddItemSetsCartCookie(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{addItemFn: func(_ service.CartRef, merchandiseID string, quantity int) (*model.Cart, string, error) {
		return &model.Cart{ID: "gid://shop/Cart/9"}, "gid://shop/Cart/9", nil
	}}
	h := NewCartHandler(api, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart",
		strings.NewReader(`{"merchandiseId":"gid://shop/ProductVariant/V1","quantity":1}`))
	rec := httptest.NewRecorder()
	h.AddItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findSetCookie(t, rec, GuestCartCookie)
	require.NotNil(t, cookie)
	require.Equal(t, "gid://shop/Cart/9", cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, guestCartCookieMaxAge, cookie.MaxAge)
}

func TestCartHandler_AuthenticatedAddItemSetsNoCookie(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{addItemFn: func(_ service.CartRef, merchandiseID string, quantity int) (*model.Cart, string, error) {
		return &model.Cart{ID: "gid://shop/Cart/9"}, "gid://shop/Cart/9", nil
	}}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart",
		strings.NewReader(`{"merchandiseId":"gid://shop/ProductVariant/V1","quantity":1}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	h.AddItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", api.lastRef.UserID)
	require.Nil(t, findSetCookie(t, rec, GuestCartCookie), "user record carries the cart id instead")
}

func TestCartHandler_UpdateLineAcceptsZeroQuantity(t *testing.T) {
	t.Parallel()

	var gotQuantity int
	api := &stubCartAPI{setQuantityFn: func(_ service.CartRef, lineID string, quantity int) (*model.Cart, error) {
		gotQuantity = quantity
		return &model.Cart{ID: "gid://shop/Cart/1"}, nil
	}}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart",
		strings.NewReader(`{"lineId":"line-1","quantity":0}`))
	rec := httptest.NewRecorder()
	h.UpdateLine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, gotQuantity)
}

func TestCartHandler_UpdateLineRequiresQuantity(t *testing.T) {
	t.Parallel()

	h := NewCartHandler(&stubCartAPI{}, false)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart",
		strings.NewReader(`{"lineId":"line-1"}`))
	rec := httptest.NewRecorder()
	h.UpdateLine(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_RemoveLineWithoutCartIsNotFound(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{removeLineFn: func(service.CartRef, string) (*model.Cart, error) {
		return nil, model.ErrCartNotFound
	}}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart",
		strings.NewReader(`{"lineId":"line-1"}`))
	rec := httptest.NewRecorder()
	h.RemoveLine(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestCartHandler_BackendFailureIsUpstream(t *testing.T) {
	t.Parallel()

	api := &stubCartAPI{checkoutFn: func(service.CartRef) (string, error) {
		return "", apierror.Upstream("commerce backend request failed", "boom")
	}}
	h := NewCartHandler(api, false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/checkout", nil)
	rec := httptest.NewRecorder()
	h.Checkout(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "UPSTREAM_ERROR", body.Error.Code)
}
