package service

import (
	"context"
	"errors"

	"go-storefront/internal/model"
	"go-storefront/pkg/apierror"
)

// commerceGateway is the slice of the commerce backend adapter the cart
// service drives. The backend owns all cart state; this service only
// tracks which remote cart a request belongs to.
type commerceGateway interface {
	CreateCart(ctx context.Context, merchandiseID string, quantity int) (string, error)
	AddLines(ctx context.Context, cartID string, merchandiseID string, quantity int) error
	UpdateLine(ctx context.Context, cartID string, lineID string, quantity int) error
	RemoveLine(ctx context.Context, cartID string, lineID string) error
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
	CheckoutURL(ctx context.Context, cartID string) (string, error)
}

type cartUserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	UpdateCartID(ctx context.Context, userID string, cartID string) error
}

// CartRef carries the two signals a request can present: a resolved
// identity and a guest cart cookie. Either or both may be empty.
type CartRef struct {
	UserID      string
	GuestCartID string
}

func (r CartRef) Authenticated() bool {
	return r.UserID != ""
}

type CartService struct {
	commerce commerceGateway
	users    cartUserStore
}

func NewCartService(commerce commerceGateway, users cartUserStore) *CartService {
	return &CartService{commerce: commerce, users: users}
}

// ResolveCartID picks the remote cart for a request: the authenticated
// user's stored reference wins over the guest cookie. An authenticated
// user without a stored reference resolves to none; their pre-login
// guest cookie is deliberately not consulted.
func (s *CartService) ResolveCartID(ctx context.Context, ref CartRef) (string, error) {
	if ref.Authenticated() {
		user, err := s.users.FindByID(ctx, ref.UserID)
		if errors.Is(err, model.ErrUserNotFound) {
			return "", nil
		}
		if err != nil {
			return "", apierror.Upstream("failed to resolve cart owner", err.Error())
		}
		if user.CartID == nil {
			return "", nil
		}
		return *user.CartID, nil
	}

	return ref.GuestCartID, nil
}

// GetCart returns the remote cart, or nil when nothing resolves.
// Empty-cart semantics, not an error.
func (s *CartService) GetCart(ctx context.Context, ref CartRef) (*model.Cart, error) {
	cartID, err := s.ResolveCartID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		return nil, nil
	}

	cart, err := s.commerce.GetCart(ctx, cartID)
	if err != nil {
		return nil, apierror.Upstream("failed to retrieve cart", err.Error())
	}
	return cart, nil
}

// AddItem appends a line to the resolved cart, creating the remote cart
// lazily on first add. When a cart is created the new id is persisted
// to the user record for authenticated callers and returned either way
// so the handler can set the guest cookie for anonymous ones. The
// returned cart is always a fresh backend fetch.
func (s *CartService) AddItem(ctx context.Context, ref CartRef, merchandiseID string, quantity int) (*model.Cart, string, error) {
	if merchandiseID == "" || quantity <= 0 {
		return nil, "", apierror.BadRequest("merchandiseId and quantity are required", "")
	}

	cartID, err := s.ResolveCartID(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	createdCartID := ""
	if cartID == "" {
		newCartID, err := s.commerce.CreateCart(ctx, merchandiseID, quantity)
		if err != nil {
			return nil, "", apierror.Upstream("failed to create cart", err.Error())
		}

		if ref.Authenticated() {
			if err := s.users.UpdateCartID(ctx, ref.UserID, newCartID); err != nil {
				return nil, "", apierror.Upstream("failed to store cart reference", err.Error())
			}
		}

		cartID = newCartID
		createdCartID = newCartID
	} else {
		if err := s.commerce.AddLines(ctx, cartID, merchandiseID, quantity); err != nil {
			return nil, "", apierror.Upstream("failed to add item to cart", err.Error())
		}
	}

	cart, err := s.commerce.GetCart(ctx, cartID)
	if err != nil {
		return nil, "", apierror.Upstream("failed to retrieve cart", err.Error())
	}
	return cart, createdCartID, nil
}

// SetLineQuantity updates a line on the resolved cart. Quantity zero is
// equivalent to removing the line.
func (s *CartService) SetLineQuantity(ctx context.Context, ref CartRef, lineID string, quantity int) (*model.Cart, error) {
	if lineID == "" || quantity < 0 {
		return nil, apierror.BadRequest("lineId and quantity are required", "")
	}

	if quantity == 0 {
		return s.RemoveLine(ctx, ref, lineID)
	}

	cartID, err := s.ResolveCartID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		return nil, model.ErrCartNotFound
	}

	if err := s.commerce.UpdateLine(ctx, cartID, lineID, quantity); err != nil {
		return nil, apierror.Upstream("failed to update cart", err.Error())
	}

	cart, err := s.commerce.GetCart(ctx, cartID)
	if err != nil {
		return nil, apierror.Upstream("failed to retrieve cart", err.Error())
	}
	return cart, nil
}

func (s *CartService) RemoveLine(ctx context.Context, ref CartRef, lineID string) (*model.Cart, error) {
	if lineID == "" {
		return nil, apierror.BadRequest("lineId is required", "")
	}

	cartID, err := s.ResolveCartID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if cartID == "" {
		return nil, model.ErrCartNotFound
	}

	if err := s.commerce.RemoveLine(ctx, cartID, lineID); err != nil {
		return nil, apierror.Upstream("failed to remove item from cart", err.Error())
	}

	cart, err := s.commerce.GetCart(ctx, cartID)
	if err != nil {
		return nil, apierror.Upstream("failed to retrieve cart", err.Error())
	}
	return cart, nil
}

// CheckoutURL fetches the backend-generated checkout URL for the
// resolved cart.
func (s *CartService) CheckoutURL(ctx context.Context, ref CartRef) (string, error) {
	cartID, err := s.ResolveCartID(ctx, ref)
	if err != nil {
		return "", err
	}
	if cartID == "" {
		return "", model.ErrCartNotFound
	}

	url, err := s.commerce.CheckoutURL(ctx, cartID)
	if err != nil {
		return "", apierror.Upstream("failed to retrieve checkout URL", err.Error())
	}
	return url, nil
}
