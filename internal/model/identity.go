package model

// Identity is the authenticated requester resolved from a bearer token
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
