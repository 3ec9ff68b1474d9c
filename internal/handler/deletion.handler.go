package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/usecase"
	"user-deletion-service/pkg/response"
)

type contextKey string

// ContextUserID carries the authenticated caller's internal user id, resolved
// upstream by the gateway. The engine records it; it does not authorize.
const ContextUserID contextKey = "user_id"

// WithUserID copies the gateway-resolved user id header into the request
// context, mirroring what the shared auth middleware does in front of other
// services.
func WithUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid := r.Header.Get("X-User-ID"); uid != "" {
			r = r.WithContext(context.WithValue(r.Context(), ContextUserID, uid))
		}
		next.ServeHTTP(w, r)
	})
}

type DeletionHandler struct {
	uc  *usecase.CascadeUsecase
	log *zap.Logger
}

func NewDeletionHandler(uc *usecase.CascadeUsecase, log *zap.Logger) *DeletionHandler {
	return &DeletionHandler{uc: uc, log: log}
}

func (h *DeletionHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSelfDelete removes the authenticated caller's own account.
func (h *DeletionHandler) HandleSelfDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(ContextUserID).(string)
	if !ok || userID == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SelfDeleteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body optional
	}

	res := h.uc.ExecuteUserDeletionCascade(r.Context(), userID, userID, domain.CascadeOptions{
		Reason:             req.Reason,
		DeleteStorageFiles: req.DeleteStorageFiles,
		InitiatorRole:      domain.InitiatorSelf,
	})
	h.writeResult(w, res)
}

// HandleAdminDelete removes another user's account on behalf of an admin.
// Permission checks happen upstream; this handler only enforces the audit
// requirements (a non-empty reason) and records who initiated.
func (h *DeletionHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	initiatorID, ok := r.Context().Value(ContextUserID).(string)
	if !ok || initiatorID == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		response.Error(w, http.StatusBadRequest, "user ID required")
		return
	}

	var req AdminDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		response.Error(w, http.StatusBadRequest, "reason is required")
		return
	}

	res := h.uc.ExecuteUserDeletionCascade(r.Context(), targetID, initiatorID, domain.CascadeOptions{
		Reason:                       req.Reason,
		NewOwnerID:                   req.NewOwnerID,
		DeleteStorageFiles:           req.DeleteStorageFiles,
		SkipExternalIdentityDeletion: req.SkipExternalIdentityDeletion,
		InitiatorRole:                domain.InitiatorAdmin,
	})
	h.writeResult(w, res)
}

// HandleDeletionLog returns the audit journal entries for a subject.
func (h *DeletionHandler) HandleDeletionLog(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		response.Error(w, http.StatusBadRequest, "user ID required")
		return
	}

	entries, err := h.uc.JournalEntries(r.Context(), targetID)
	if err != nil {
		h.log.Error("failed to list deletion audit entries",
			zap.String("user_id", targetID),
			zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to load deletion log")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *DeletionHandler) writeResult(w http.ResponseWriter, res domain.CascadeResult) {
	if res.Success {
		response.JSON(w, http.StatusOK, res)
		return
	}
	// Guard rejections and fatal failures both surface as a structured result;
	// callers treat them as retry-later.
	response.JSON(w, http.StatusConflict, res)
}
