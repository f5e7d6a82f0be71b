package dto

import "anoa.com/practiceforum/internal/entity"

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
	Role        *entity.Role `json:"role"`
}

type UpdateTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}
