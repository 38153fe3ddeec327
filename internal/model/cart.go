package model

// Cart mirrors the commerce backend's cart entity. This service never
// computes totals or line costs itself; every field here is populated
// from a backend fetch.
type Cart struct {
	ID          string     `json:"id"`
	CheckoutURL string     `json:"checkout_url,omitempty"`
	Lines       []CartLine `json:"lines"`
	Cost        CartCost   `json:"cost"`
}

type CartLine struct {
	ID            string `json:"id"`
	MerchandiseID string `json:"merchandise_id"`
	Quantity      int    `json:"quantity"`
	Cost          Money  `json:"cost"`
}

type CartCost struct {
	TotalAmount Money `json:"total_amount"`
}

// Money keeps the backend's decimal string untouched; parsing amounts
// locally would invite rounding drift.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code,omitempty"`
}
