package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-deletion-service/internal/blob"
	"user-deletion-service/internal/identity"
	"user-deletion-service/internal/manifest"
	"user-deletion-service/internal/repository"
	"user-deletion-service/internal/store"
	"user-deletion-service/internal/usecase"
)

func newTestHandler(t *testing.T) (*DeletionHandler, *store.MemStore) {
	t.Helper()

	docs := store.NewMemStore()
	m := manifest.New([]manifest.Entry{
		{Table: "tasks", Fields: []manifest.FieldRule{{Name: "owner_id", Strategy: manifest.DispositionDelete}}},
	})
	uc := usecase.NewCascadeUsecase(docs, blob.NewMemStore(), identity.NewMemRegistry(), m, 5*time.Minute, nil, zap.NewNop())
	return NewDeletionHandler(uc, zap.NewNop()), docs
}

func seedUser(t *testing.T, docs *store.MemStore, id string) {
	t.Helper()
	_, err := docs.Insert(context.Background(), repository.UsersTable, map[string]any{
		"id": id, "email": id + "@example.com", "account_status": "active",
	})
	require.NoError(t, err)
}

func newRouter(h *DeletionHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(WithUserID)
	r.Delete("/account", h.HandleSelfDelete)
	r.Delete("/admin/users/{userID}", h.HandleAdminDelete)
	r.Get("/admin/users/{userID}/deletion-log", h.HandleDeletionLog)
	return r
}

func TestHandleSelfDelete(t *testing.T) {
	h, docs := newTestHandler(t)
	seedUser(t, docs, "42")
	srv := newRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/account", nil)
	req.Header.Set("X-User-ID", "42")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err := docs.Get(context.Background(), repository.UsersTable, "42")
	assert.Error(t, err, "user row should be gone")
}

func TestHandleSelfDelete_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := newRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/account", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleAdminDelete_RequiresReason(t *testing.T) {
	h, docs := newTestHandler(t)
	seedUser(t, docs, "42")
	srv := newRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/42", strings.NewReader(`{}`))
	req.Header.Set("X-User-ID", "admin-1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Target untouched.
	_, err := docs.Get(context.Background(), repository.UsersTable, "42")
	assert.NoError(t, err)
}

func TestHandleAdminDelete(t *testing.T) {
	h, docs := newTestHandler(t)
	seedUser(t, docs, "42")
	srv := newRouter(h)

	body := `{"reason":"policy violation","new_owner_id":"7"}`
	req := httptest.NewRequest(http.MethodDelete, "/admin/users/42", strings.NewReader(body))
	req.Header.Set("X-User-ID", "admin-1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Journal entry is visible through the log endpoint.
	logReq := httptest.NewRequest(http.MethodGet, "/admin/users/42/deletion-log", nil)
	logReq.Header.Set("X-User-ID", "admin-1")
	logRec := httptest.NewRecorder()
	srv.ServeHTTP(logRec, logReq)
	require.Equal(t, http.StatusOK, logRec.Code)

	var envelope struct {
		Data struct {
			Entries []struct {
				Status        string `json:"status"`
				InitiatorID   string `json:"initiator_id"`
				InitiatorRole string `json:"initiator_role"`
				Reason        string `json:"reason"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(logRec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Entries, 1)
	entry := envelope.Data.Entries[0]
	assert.Equal(t, "completed", entry.Status)
	assert.Equal(t, "admin-1", entry.InitiatorID)
	assert.Equal(t, "admin", entry.InitiatorRole)
	assert.Equal(t, "policy violation", entry.Reason)
}

func TestHandleDelete_GuardConflict(t *testing.T) {
	h, docs := newTestHandler(t)
	seedUser(t, docs, "42")
	require.NoError(t, docs.Patch(context.Background(), repository.UsersTable, "42", map[string]any{
		"deletion_status": "pending",
		"deleted_at":      time.Now().UTC().Format(time.RFC3339Nano),
	}))
	srv := newRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/account", nil)
	req.Header.Set("X-User-ID", "42")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
