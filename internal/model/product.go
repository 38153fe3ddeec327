package model

type Product struct {
	ID            string         `json:"id"`
	Handle        string         `json:"handle"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	MinPrice      Money          `json:"min_price"`
	MaxPrice      Money          `json:"max_price,omitempty"`
	FeaturedImage *ProductImage  `json:"featured_image,omitempty"`
	Variants      []ProductVariant `json:"variants,omitempty"`
}

type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

type ProductVariant struct {
	ID               string `json:"id"`
	Title            string `json:"title,omitempty"`
	AvailableForSale bool   `json:"available_for_sale"`
	Price            Money  `json:"price"`
}

// ProductFilter narrows a catalog listing. Zero values mean "no
// constraint".
type ProductFilter struct {
	Query    string
	MinPrice float64
	MaxPrice float64
	HasMin   bool
	HasMax   bool
}

type ProductSortKey string

const (
	SortByTitle     ProductSortKey = "TITLE"
	SortByPrice     ProductSortKey = "PRICE"
	SortByCreatedAt ProductSortKey = "CREATED_AT"
)
