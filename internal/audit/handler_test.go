package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepository returns a canned page and remembers the filter it was
// asked for.
type stubRepository struct {
	logs      []Log
	total     int64
	err       error
	gotFilter ListFilter
}

func (s *stubRepository) Record(context.Context, Entry) {}

func (s *stubRepository) List(_ context.Context, f ListFilter) ([]Log, int64, error) {
	s.gotFilter = f
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.logs, s.total, nil
}

func newAuditRouter(repo *stubRepository) chi.Router {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("audit test", "0.0.1"))

	handler := NewHandler(repo, slog.New(slog.DiscardHandler))
	handler.RegisterRoutes(api, nil)
	return router
}

func get(router chi.Router, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListAuditLogs(t *testing.T) {
	t.Run("returns logs with pagination metadata", func(t *testing.T) {
		actor := "u1"
		repo := &stubRepository{
			logs: []Log{
				{ID: 2, UserID: &actor, Action: ActionLogin, Details: []byte(`{"ip":"10.0.0.1"}`), CreatedAt: time.Now()},
				{ID: 1, UserID: &actor, Action: ActionLogout, CreatedAt: time.Now().Add(-time.Hour)},
			},
			total: 42,
		}
		router := newAuditRouter(repo)

		rec := get(router, "/audit-logs")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Logs []struct {
				ID      int64           `json:"id"`
				UserID  string          `json:"userId"`
				Action  string          `json:"action"`
				Details json.RawMessage `json:"details"`
			} `json:"logs"`
			Pagination Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Logs, 2)
		assert.Equal(t, int64(2), body.Logs[0].ID)
		assert.Equal(t, ActionLogin, body.Logs[0].Action)
		assert.JSONEq(t, `{"ip":"10.0.0.1"}`, string(body.Logs[0].Details))
		assert.Equal(t, Pagination{Page: 1, Limit: 20, Total: 42, Pages: 3}, body.Pagination)
	})

	t.Run("defaults to page 1 with 20 per page", func(t *testing.T) {
		repo := &stubRepository{}
		router := newAuditRouter(repo)

		require.Equal(t, http.StatusOK, get(router, "/audit-logs").Code)
		assert.Equal(t, 1, repo.gotFilter.Page)
		assert.Equal(t, 20, repo.gotFilter.Limit)
	})

	t.Run("forwards paging and filters", func(t *testing.T) {
		repo := &stubRepository{}
		router := newAuditRouter(repo)

		rec := get(router, "/audit-logs?page=3&limit=50&userId=u1&action=LOGIN")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ListFilter{UserID: "u1", Action: "LOGIN", Page: 3, Limit: 50}, repo.gotFilter)
	})

	t.Run("rejects an out-of-range limit", func(t *testing.T) {
		router := newAuditRouter(&stubRepository{})

		assert.Equal(t, http.StatusUnprocessableEntity, get(router, "/audit-logs?limit=500").Code)
	})

	t.Run("hides storage failures behind a generic problem", func(t *testing.T) {
		repo := &stubRepository{err: assert.AnError}
		router := newAuditRouter(repo)

		rec := get(router, "/audit-logs")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "ErrInternal")
	})
}
