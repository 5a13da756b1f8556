package user

import "marketsync/internal/domain/user"

type registerInput struct {
	Body user.RegisterRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID         int    `json:"user_id"`
	BusinessID int    `json:"business_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type loginInput struct {
	Body user.BaseRequest
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
