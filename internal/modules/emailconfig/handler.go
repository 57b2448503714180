package emailconfig

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/doimih/mini-crm/internal/httpx"
	"github.com/doimih/mini-crm/internal/validation"
)

// Handler exposes the email configuration row to superadmins.
type Handler struct {
	repo   Repository
	logger *slog.Logger
}

// NewHandler creates a new email config handler.
func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// --- DTOs ---

// ConfigBody is the client-facing shape of the configuration. The stored
// password is write-only: it is accepted on PUT and never echoed back.
type ConfigBody struct {
	Host     string  `json:"host" validate:"required"`
	Port     int     `json:"port" validate:"required,min=1,max=65535"`
	Secure   bool    `json:"secure"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	From     *string `json:"from,omitempty" validate:"omitempty,email"`
}

// GetConfigResponse returns the stored configuration without the password.
type GetConfigResponse struct {
	Body struct {
		Host     string  `json:"host"`
		Port     int     `json:"port"`
		Secure   bool    `json:"secure"`
		Username *string `json:"username,omitempty"`
		From     *string `json:"from,omitempty"`
	}
}

// PutConfigRequest replaces the configuration row.
type PutConfigRequest struct {
	Body ConfigBody
}

// PutConfigResponse mirrors GetConfigResponse after the write.
type PutConfigResponse = GetConfigResponse

// --- Routes ---

// RegisterRoutes wires the email-config endpoints behind the provided
// superadmin middleware chain.
func (h *Handler) RegisterRoutes(api huma.API, superadmin huma.Middlewares) {
	huma.Register(api, huma.Operation{
		OperationID: "email-config-get",
		Method:      http.MethodGet,
		Path:        "/email-config",
		Summary:     "Get the stored SMTP configuration",
		Middlewares: superadmin,
	}, h.GetHandler)

	huma.Register(api, huma.Operation{
		OperationID: "email-config-put",
		Method:      http.MethodPut,
		Path:        "/email-config",
		Summary:     "Replace the stored SMTP configuration",
		Middlewares: superadmin,
	}, h.PutHandler)
}

// GetHandler returns the stored configuration, 404 when unset.
func (h *Handler) GetHandler(ctx context.Context, _ *struct{}) (*GetConfigResponse, error) {
	cfg, err := h.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, huma.Error404NotFound("email configuration is not set")
		}
		h.logger.Error("failed to load email config", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}

	return configResponse(cfg), nil
}

// PutHandler upserts the configuration row.
func (h *Handler) PutHandler(ctx context.Context, input *PutConfigRequest) (*PutConfigResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	cfg, err := h.repo.Upsert(ctx, &Config{
		Host:     input.Body.Host,
		Port:     input.Body.Port,
		Secure:   input.Body.Secure,
		Username: input.Body.Username,
		Password: input.Body.Password,
		From:     input.Body.From,
	})
	if err != nil {
		h.logger.Error("failed to store email config", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}

	return configResponse(cfg), nil
}

func configResponse(cfg *Config) *GetConfigResponse {
	resp := &GetConfigResponse{}
	resp.Body.Host = cfg.Host
	resp.Body.Port = cfg.Port
	resp.Body.Secure = cfg.Secure
	resp.Body.Username = cfg.Username
	resp.Body.From = cfg.From
	return resp
}
