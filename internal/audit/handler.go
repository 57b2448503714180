package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/doimih/mini-crm/internal/httpx"
)

// Handler exposes the audit trail to superadmins.
type Handler struct {
	repo   Repository
	logger *slog.Logger
}

// NewHandler creates a new audit log handler.
func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// --- DTOs ---

// ListLogsRequest pages and filters the audit trail.
type ListLogsRequest struct {
	Page   int    `query:"page" minimum:"1" default:"1"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"20"`
	UserID string `query:"userId"`
	Action string `query:"action"`
}

// LogInfo is the client-facing shape of one audit entry.
type LogInfo struct {
	ID        int64           `json:"id"`
	UserID    *string         `json:"userId,omitempty"`
	Action    string          `json:"action"`
	Entity    *string         `json:"entity,omitempty"`
	EntityID  *string         `json:"entityId,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Pagination describes the returned page.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListLogsResponse returns one page of the audit trail.
type ListLogsResponse struct {
	Body struct {
		Logs       []LogInfo  `json:"logs"`
		Pagination Pagination `json:"pagination"`
	}
}

// --- Routes ---

// RegisterRoutes wires the audit endpoints behind the provided superadmin
// middleware chain.
func (h *Handler) RegisterRoutes(api huma.API, superadmin huma.Middlewares) {
	huma.Register(api, huma.Operation{
		OperationID: "audit-logs-list",
		Method:      http.MethodGet,
		Path:        "/audit-logs",
		Summary:     "List audit log entries",
		Middlewares: superadmin,
	}, h.ListHandler)
}

// ListHandler returns a page of audit entries, newest first.
func (h *Handler) ListHandler(ctx context.Context, input *ListLogsRequest) (*ListLogsResponse, error) {
	logs, total, err := h.repo.List(ctx, ListFilter{
		UserID: input.UserID,
		Action: input.Action,
		Page:   input.Page,
		Limit:  input.Limit,
	})
	if err != nil {
		h.logger.Error("failed to list audit logs", "error", err)
		return nil, httpx.InternalProblem(ctx, "")
	}

	resp := &ListLogsResponse{}
	resp.Body.Logs = make([]LogInfo, 0, len(logs))
	for i := range logs {
		resp.Body.Logs = append(resp.Body.Logs, toLogInfo(&logs[i]))
	}
	resp.Body.Pagination = Pagination{
		Page:  input.Page,
		Limit: input.Limit,
		Total: total,
		Pages: pages(total, input.Limit),
	}
	return resp, nil
}

func toLogInfo(l *Log) LogInfo {
	info := LogInfo{
		ID:        l.ID,
		UserID:    l.UserID,
		Action:    l.Action,
		Entity:    l.Entity,
		EntityID:  l.EntityID,
		CreatedAt: l.CreatedAt,
	}
	if len(l.Details) > 0 {
		info.Details = json.RawMessage(l.Details)
	}
	return info
}

func pages(total int64, limit int) int64 {
	if limit < 1 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
