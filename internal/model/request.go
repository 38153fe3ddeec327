package model

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddItemRequest struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

type UpdateLineRequest struct {
	LineID   string `json:"lineId"`
	Quantity *int   `json:"quantity"`
}

type RemoveLineRequest struct {
	LineID string `json:"lineId"`
}
