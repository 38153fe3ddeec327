// Package commerce adapts cart and product operations onto the remote
// commerce backend's GraphQL storefront API. Responses are parsed into
// explicit types at this boundary; anything malformed is rejected here
// instead of leaking partially-decoded state upward.
package commerce

import (
	"context"
	"fmt"
	"strings"

	"github.com/machinebox/graphql"
)

const accessTokenHeader = "X-Shopify-Storefront-Access-Token"

type Client struct {
	gql         *graphql.Client
	accessToken string
}

// NewClient validates configuration eagerly so a misconfigured backend
// fails at startup, not on the first cart mutation.
func NewClient(endpoint string, accessToken string) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("commerce endpoint is required")
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("commerce access token is required")
	}

	return &Client{
		gql:         graphql.NewClient(endpoint),
		accessToken: accessToken,
	}, nil
}

func (c *Client) run(ctx context.Context, req *graphql.Request, out any) error {
	req.Header.Set(accessTokenHeader, c.accessToken)
	if err := c.gql.Run(ctx, req, out); err != nil {
		return fmt.Errorf("commerce backend request failed: %w", err)
	}
	return nil
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func userErrorsToError(op string, errs []userError) error {
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return fmt.Errorf("%s rejected by commerce backend: %s", op, strings.Join(messages, "; "))
}

type moneyPayload struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}
