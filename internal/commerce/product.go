package commerce

import (
	"context"
	"fmt"
	"strings"

	"github.com/machinebox/graphql"

	"go-storefront/internal/model"
)

const productsQuery = `
query getProducts($first: Int!, $query: String, $sortKey: ProductSortKeys, $reverse: Boolean) {
  products(first: $first, query: $query, sortKey: $sortKey, reverse: $reverse) {
    edges {
      node {
        id
        handle
        title
        description
        priceRange {
          minVariantPrice {
            amount
            currencyCode
          }
          maxVariantPrice {
            amount
            currencyCode
          }
        }
        featuredImage {
          url
          altText
        }
      }
    }
  }
}`

const productByHandleQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) {
    id
    handle
    title
    description
    priceRange {
      minVariantPrice {
        amount
        currencyCode
      }
      maxVariantPrice {
        amount
        currencyCode
      }
    }
    featuredImage {
      url
      altText
    }
    variants(first: 10) {
      edges {
        node {
          id
          title
          availableForSale
          price {
            amount
            currencyCode
          }
        }
      }
    }
  }
}`

type imagePayload struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type productPayload struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceRange  struct {
		MinVariantPrice moneyPayload `json:"minVariantPrice"`
		MaxVariantPrice moneyPayload `json:"maxVariantPrice"`
	} `json:"priceRange"`
	FeaturedImage *imagePayload `json:"featuredImage"`
	Variants      struct {
		Edges []struct {
			Node struct {
				ID               string       `json:"id"`
				Title            string       `json:"title"`
				AvailableForSale bool         `json:"availableForSale"`
				Price            moneyPayload `json:"price"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

// searchQuery builds the backend's search expression from the filter.
// The syntax is the storefront API's, not this service's.
func searchQuery(filter model.ProductFilter) string {
	var parts []string
	if filter.Query != "" {
		parts = append(parts, fmt.Sprintf("title:*%s*", filter.Query))
	}
	if filter.HasMin {
		parts = append(parts, fmt.Sprintf("variants.price:>=%g", filter.MinPrice))
	}
	if filter.HasMax {
		parts = append(parts, fmt.Sprintf("variants.price:<=%g", filter.MaxPrice))
	}
	return strings.Join(parts, " ")
}

func (c *Client) ListProducts(ctx context.Context, limit int, filter model.ProductFilter, sortKey model.ProductSortKey, reverse bool) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if sortKey == "" {
		sortKey = model.SortByCreatedAt
	}

	req := graphql.NewRequest(productsQuery)
	req.Var("first", limit)
	req.Var("query", searchQuery(filter))
	req.Var("sortKey", string(sortKey))
	req.Var("reverse", reverse)

	var resp struct {
		Products struct {
			Edges []struct {
				Node productPayload `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(resp.Products.Edges))
	for _, edge := range resp.Products.Edges {
		product, err := toProduct(edge.Node)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, nil
}

func (c *Client) GetProductByHandle(ctx context.Context, handle string) (*model.Product, error) {
	req := graphql.NewRequest(productByHandleQuery)
	req.Var("handle", handle)

	var resp struct {
		Product *productPayload `json:"product"`
	}
	if err := c.run(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, model.ErrProductNotFound
	}

	product, err := toProduct(*resp.Product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func toProduct(p productPayload) (model.Product, error) {
	if p.ID == "" || p.Handle == "" {
		return model.Product{}, fmt.Errorf("product payload missing id or handle")
	}

	product := model.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		MinPrice: model.Money{
			Amount:       p.PriceRange.MinVariantPrice.Amount,
			CurrencyCode: p.PriceRange.MinVariantPrice.CurrencyCode,
		},
		MaxPrice: model.Money{
			Amount:       p.PriceRange.MaxVariantPrice.Amount,
			CurrencyCode: p.PriceRange.MaxVariantPrice.CurrencyCode,
		},
	}

	if p.FeaturedImage != nil {
		product.FeaturedImage = &model.ProductImage{
			URL:     p.FeaturedImage.URL,
			AltText: p.FeaturedImage.AltText,
		}
	}

	for _, edge := range p.Variants.Edges {
		product.Variants = append(product.Variants, model.ProductVariant{
			ID:               edge.Node.ID,
			Title:            edge.Node.Title,
			AvailableForSale: edge.Node.AvailableForSale,
			Price: model.Money{
				Amount:       edge.Node.Price.Amount,
				CurrencyCode: edge.Node.Price.CurrencyCode,
			},
		})
	}

	return product, nil
}
