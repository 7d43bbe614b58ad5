package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/api/shared"
	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/service"
)

// CompletionHandler handles completion tracking endpoints.
type CompletionHandler struct {
	service service.RecurringTaskService
	logger  *slog.Logger
}

// NewCompletionHandler creates a new completion handler.
func NewCompletionHandler(taskService service.RecurringTaskService, log *slog.Logger) *CompletionHandler {
	if taskService == nil {
		panic("taskService cannot be nil") // ALLOW-PANIC: constructor enforces required dependency
	}
	if log == nil {
		log = slog.Default()
	}
	return &CompletionHandler{
		service: taskService,
		logger:  log.With(slog.String("component", "completion_handler")),
	}
}

// CompletionUpdatePayload is one entry in a bulk completion save.
type CompletionUpdatePayload struct {
	ClientID    string `json:"client_id"  validate:"required,uuid"`
	PeriodKey   string `json:"period_key" validate:"required"`
	IsCompleted bool   `json:"is_completed"`
}

// BulkSaveCompletionsRequest is the request body for saving completion
// states in bulk.
type BulkSaveCompletionsRequest struct {
	Updates []CompletionUpdatePayload `json:"updates" validate:"required,min=1,dive"`
}

// GetCompletions handles GET /tasks/{id}/completions.
func (h *CompletionHandler) GetCompletions(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	completions, err := h.service.LoadCompletions(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := CompletionsResponse{
		TaskID:      taskID.String(),
		Completions: make(map[string][]string, len(completions)),
	}
	for clientID, periodKeys := range completions {
		response.Completions[clientID.String()] = periodKeys
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// BulkSaveCompletions handles PUT /tasks/{id}/completions. The batch is
// written atomically; one invalid entry rejects the whole request.
func (h *CompletionHandler) BulkSaveCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	actorID, ok := viewerFromContext(w, r)
	if !ok {
		return
	}

	var req BulkSaveCompletionsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updates := make([]service.CompletionUpdate, 0, len(req.Updates))
	for _, payload := range req.Updates {
		clientID, err := uuid.Parse(payload.ClientID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		updates = append(updates, service.CompletionUpdate{
			ClientID:    clientID,
			PeriodKey:   payload.PeriodKey,
			IsCompleted: payload.IsCompleted,
		})
	}

	if err := h.service.BulkSaveCompletions(ctx, taskID, updates, actorID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("completion batch saved",
		slog.String("task_id", taskID.String()),
		slog.Int("update_count", len(updates)))
	w.WriteHeader(http.StatusNoContent)
}

// GetProgress handles GET /tasks/{id}/progress. Statistics cover only
// the clients visible to the authenticated viewer.
func (h *CompletionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	viewerID, ok := viewerFromContext(w, r)
	if !ok {
		return
	}
	privileged, _ := r.Context().Value(shared.PrivilegedContextKey).(bool)

	progress, err := h.service.ClientProgress(r.Context(), taskID, viewerID, privileged)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := ProgressResponse{
		TaskID:   taskID.String(),
		Progress: make(map[string]domain.Progress, len(progress)),
	}
	for clientID, stats := range progress {
		response.Progress[clientID.String()] = stats
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// viewerFromContext extracts the authenticated viewer's ID, writing a
// 401 response itself when the middleware did not set one.
func viewerFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	viewerID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || viewerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return viewerID, true
}
