package user

import (
	"context"

	"github.com/doimih/mini-crm/internal/contextx"
	"github.com/doimih/mini-crm/internal/httpx"
	"github.com/doimih/mini-crm/internal/validation"
)

// --- DTOs ---

// ListUsersResponse returns the public projection of every user.
type ListUsersResponse struct {
	Body []UserInfo
}

// CreateUserRequest defines the superadmin user-creation body.
type CreateUserRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN SUPERADMIN"`
		Status   Status `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
	}
}

// CreateUserResponse returns the created user.
type CreateUserResponse struct {
	Body UserInfo
}

// UpdateUserRequest defines the superadmin user-update body. Omitted fields
// are left untouched.
type UpdateUserRequest struct {
	ID   string `path:"id"`
	Body struct {
		Email    *string `json:"email,omitempty" validate:"omitempty,email"`
		Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
		Role     *Role   `json:"role,omitempty" validate:"omitempty,oneof=USER ADMIN SUPERADMIN"`
		Status   *Status `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
	}
}

// UpdateUserResponse returns the updated user.
type UpdateUserResponse struct {
	Body UserInfo
}

// UpdateUserStatusRequest suspends or reactivates a user.
type UpdateUserStatusRequest struct {
	ID   string `path:"id"`
	Body struct {
		Status Status `json:"status" validate:"required,oneof=ACTIVE SUSPENDED"`
	}
}

// UpdateUserVerificationRequest manually sets the verification state.
type UpdateUserVerificationRequest struct {
	ID   string `path:"id"`
	Body struct {
		Verified bool `json:"verified"`
	}
}

// DeleteUserRequest identifies the user to delete.
type DeleteUserRequest struct {
	ID string `path:"id"`
}

// DeleteUserResponse is an empty 204 response.
type DeleteUserResponse struct{}

// --- Handlers ---

func actorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextx.UserIDKey).(string)
	return id, ok && id != ""
}

// ListUsersHandler returns all users without their secret material.
func (h *Handler) ListUsersHandler(ctx context.Context, _ *struct{}) (*ListUsersResponse, error) {
	users, err := h.service.ListUsers(ctx)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ListUsersResponse{Body: make([]UserInfo, 0, len(users))}
	for i := range users {
		resp.Body = append(resp.Body, toUserInfo(&users[i]))
	}
	return resp, nil
}

// CreateUserHandler creates an account on behalf of a superadmin.
func (h *Handler) CreateUserHandler(ctx context.Context, input *CreateUserRequest) (*CreateUserResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	actor, ok := actorID(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	u, err := h.service.CreateUser(ctx, actor, CreateUserInput{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Role:     input.Body.Role,
		Status:   input.Body.Status,
	})
	if err != nil {
		h.logger.Warn("admin user creation failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	return &CreateUserResponse{Body: toUserInfo(u)}, nil
}

// UpdateUserHandler applies an administrative update to a user.
func (h *Handler) UpdateUserHandler(ctx context.Context, input *UpdateUserRequest) (*UpdateUserResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	actor, ok := actorID(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	u, err := h.service.UpdateUser(ctx, actor, input.ID, UpdateUserInput{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Role:     input.Body.Role,
		Status:   input.Body.Status,
	})
	if err != nil {
		h.logger.Warn("admin user update failed", "user_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	return &UpdateUserResponse{Body: toUserInfo(u)}, nil
}

// UpdateUserStatusHandler suspends or reactivates a user.
func (h *Handler) UpdateUserStatusHandler(ctx context.Context, input *UpdateUserStatusRequest) (*UpdateUserResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	actor, ok := actorID(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	u, err := h.service.SetUserStatus(ctx, actor, input.ID, input.Body.Status)
	if err != nil {
		h.logger.Warn("admin status change failed", "user_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	return &UpdateUserResponse{Body: toUserInfo(u)}, nil
}

// UpdateUserVerificationHandler manually flips a user's verification state.
func (h *Handler) UpdateUserVerificationHandler(ctx context.Context, input *UpdateUserVerificationRequest) (*UpdateUserResponse, error) {
	actor, ok := actorID(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	u, err := h.service.SetUserVerification(ctx, actor, input.ID, input.Body.Verified)
	if err != nil {
		h.logger.Warn("admin verification change failed", "user_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	return &UpdateUserResponse{Body: toUserInfo(u)}, nil
}

// DeleteUserHandler removes a user account.
func (h *Handler) DeleteUserHandler(ctx context.Context, input *DeleteUserRequest) (*DeleteUserResponse, error) {
	actor, ok := actorID(ctx)
	if !ok {
		return nil, httpx.ToProblem(ctx, ErrUnauthenticated)
	}

	if err := h.service.DeleteUser(ctx, actor, input.ID); err != nil {
		h.logger.Warn("admin user delete failed", "user_id", input.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &DeleteUserResponse{}, nil
}
