package user

import (
	"context"
	"time"

	"github.com/doimih/mini-crm/internal/contextx"
	"github.com/doimih/mini-crm/internal/httpx"
	"github.com/doimih/mini-crm/internal/validation"
)

// --- DTOs ---

// RegisterRequest defines the structure for the user registration request body.
type RegisterRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
}

// RegisterResponse carries the generic registration message. No session is
// issued until the email is verified and the user logs in.
type RegisterResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// LoginRequest defines the structure for the user login request body.
type LoginRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
}

// UserInfo is the public projection of a user returned by login and the
// admin endpoints. Password hashes and token hashes never leave the server.
type UserInfo struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	Status        Status     `json:"status"`
	EmailVerified bool       `json:"emailVerified"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// LoginResponse defines the structure for a successful login response.
type LoginResponse struct {
	Body struct {
		Token string   `json:"token"`
		User  UserInfo `json:"user"`
	}
}

// LogoutResponse is an empty 204 response.
type LogoutResponse struct{}

func toUserInfo(u *User) UserInfo {
	return UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.Verified(),
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

// --- Handlers ---

// RegisterHandler handles the user registration endpoint.
func (h *Handler) RegisterHandler(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.Register(ctx, input.Body.Email, input.Body.Password); err != nil {
		h.logger.Warn("registration failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &RegisterResponse{}
	resp.Body.Message = "Verification email sent. Please check your inbox."
	return resp, nil
}

// LoginHandler handles the user login endpoint.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	token, u, err := h.service.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		h.logger.Warn("login attempt failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &LoginResponse{}
	resp.Body.Token = token
	resp.Body.User = toUserInfo(u)
	return resp, nil
}

// LogoutHandler records the logout and leaves discarding the token to the
// client.
func (h *Handler) LogoutHandler(ctx context.Context, _ *struct{}) (*LogoutResponse, error) {
	userID, ok := ctx.Value(contextx.UserIDKey).(string)
	if !ok || userID == "" {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	if err := h.service.Logout(ctx, userID); err != nil {
		h.logger.Error("logout failed", "user_id", userID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &LogoutResponse{}, nil
}
