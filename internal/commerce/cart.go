package commerce

import (
	"context"
	"fmt"

	"github.com/machinebox/graphql"

	"go-storefront/internal/model"
)

const createCartMutation = `
mutation createCart($cartInput: CartInput) {
  cartCreate(input: $cartInput) {
    cart {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

const addLinesMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

const updateLineMutation = `
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

const removeLineMutation = `
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

const cartQuery = `
query cartQuery($cartId: ID!) {
  cart(id: $cartId) {
    id
    checkoutUrl
    lines(first: 50) {
      edges {
        node {
          id
          quantity
          merchandise {
            ... on ProductVariant {
              id
            }
          }
          cost {
            totalAmount {
              amount
              currencyCode
            }
          }
        }
      }
    }
    estimatedCost {
      totalAmount {
        amount
        currencyCode
      }
    }
  }
}`

const checkoutURLQuery = `
query checkoutURL($cartId: ID!) {
  cart(id: $cartId) {
    checkoutUrl
  }
}`

type cartMutationResult struct {
	Cart struct {
		ID string `json:"id"`
	} `json:"cart"`
	UserErrors []userError `json:"userErrors"`
}

type cartLineInput struct {
	Quantity      int    `json:"quantity"`
	MerchandiseID string `json:"merchandiseId"`
}

type cartLineUpdateInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type cartPayload struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
	Lines       struct {
		Edges []struct {
			Node struct {
				ID          string `json:"id"`
				Quantity    int    `json:"quantity"`
				Merchandise struct {
					ID string `json:"id"`
				} `json:"merchandise"`
				Cost struct {
					TotalAmount moneyPayload `json:"totalAmount"`
				} `json:"cost"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
	EstimatedCost struct {
		TotalAmount moneyPayload `json:"totalAmount"`
	} `json:"estimatedCost"`
}

// CreateCart creates a remote cart seeded with a single line and
// returns the new cart id.
func (c *Client) CreateCart(ctx context.Context, merchandiseID string, quantity int) (string, error) {
	req := graphql.NewRequest(createCartMutation)
	req.Var("cartInput", map[string]any{
		"lines": []cartLineInput{{Quantity: quantity, MerchandiseID: merchandiseID}},
	})

	var resp struct {
		CartCreate cartMutationResult `json:"cartCreate"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return "", err
	}
	if err := userErrorsToError("cartCreate", resp.CartCreate.UserErrors); err != nil {
		return "", err
	}
	if resp.CartCreate.Cart.ID == "" {
		return "", fmt.Errorf("cartCreate returned no cart id")
	}

	return resp.CartCreate.Cart.ID, nil
}

func (c *Client) AddLines(ctx context.Context, cartID string, merchandiseID string, quantity int) error {
	req := graphql.NewRequest(addLinesMutation)
	req.Var("cartId", cartID)
	req.Var("lines", []cartLineInput{{Quantity: quantity, MerchandiseID: merchandiseID}})

	var resp struct {
		CartLinesAdd cartMutationResult `json:"cartLinesAdd"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return err
	}
	return userErrorsToError("cartLinesAdd", resp.CartLinesAdd.UserErrors)
}

func (c *Client) UpdateLine(ctx context.Context, cartID string, lineID string, quantity int) error {
	req := graphql.NewRequest(updateLineMutation)
	req.Var("cartId", cartID)
	req.Var("lines", []cartLineUpdateInput{{ID: lineID, Quantity: quantity}})

	var resp struct {
		CartLinesUpdate cartMutationResult `json:"cartLinesUpdate"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return err
	}
	return userErrorsToError("cartLinesUpdate", resp.CartLinesUpdate.UserErrors)
}

func (c *Client) RemoveLine(ctx context.Context, cartID string, lineID string) error {
	req := graphql.NewRequest(removeLineMutation)
	req.Var("cartId", cartID)
	req.Var("lineIds", []string{lineID})

	var resp struct {
		CartLinesRemove cartMutationResult `json:"cartLinesRemove"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return err
	}
	return userErrorsToError("cartLinesRemove", resp.CartLinesRemove.UserErrors)
}

// GetCart fetches the authoritative cart state. The backend answering
// with a null cart for a known id is treated as an upstream fault, not
// an empty cart.
func (c *Client) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	req := graphql.NewRequest(cartQuery)
	req.Var("cartId", cartID)

	var resp struct {
		Cart *cartPayload `json:"cart"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil || resp.Cart.ID == "" {
		return nil, fmt.Errorf("cart query returned no cart for id %s", cartID)
	}

	cart := &model.Cart{
		ID:          resp.Cart.ID,
		CheckoutURL: resp.Cart.CheckoutURL,
		Lines:       make([]model.CartLine, 0, len(resp.Cart.Lines.Edges)),
		Cost: model.CartCost{
			TotalAmount: model.Money{
				Amount:       resp.Cart.EstimatedCost.TotalAmount.Amount,
				CurrencyCode: resp.Cart.EstimatedCost.TotalAmount.CurrencyCode,
			},
		},
	}

	for _, edge := range resp.Cart.Lines.Edges {
		cart.Lines = append(cart.Lines, model.CartLine{
			ID:            edge.Node.ID,
			MerchandiseID: edge.Node.Merchandise.ID,
			Quantity:      edge.Node.Quantity,
			Cost: model.Money{
				Amount:       edge.Node.Cost.TotalAmount.Amount,
				CurrencyCode: edge.Node.Cost.TotalAmount.CurrencyCode,
			},
		})
	}

	return cart, nil
}

func (c *Client) CheckoutURL(ctx context.Context, cartID string) (string, error) {
	req := graphql.NewRequest(checkoutURLQuery)
	req.Var("cartId", cartID)

	var resp struct {
		Cart *struct {
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"cart"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Cart == nil || resp.Cart.CheckoutURL == "" {
		return "", fmt.Errorf("checkout URL query returned no url for cart %s", cartID)
	}

	return resp.Cart.CheckoutURL, nil
}
