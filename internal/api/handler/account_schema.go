package handler

import "time"

type registerRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Roles    []string `json:"roles,omitempty"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active deleted"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loginResponse struct {
	Token    string   `json:"token"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
	Total    int               `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}
