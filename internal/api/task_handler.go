package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/api/shared"
	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/domain/recurrence"
	"github.com/HillyAttic/cadence-api/internal/platform/logger"
	"github.com/HillyAttic/cadence-api/internal/service"
)

// TaskHandler handles recurring task endpoints.
type TaskHandler struct {
	service service.RecurringTaskService
	logger  *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.RecurringTaskService, log *slog.Logger) *TaskHandler {
	if taskService == nil {
		panic("taskService cannot be nil") // ALLOW-PANIC: constructor enforces required dependency
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{
		service: taskService,
		logger:  log.With(slog.String("component", "task_handler")),
	}
}

// CreateTaskRequest is the request body for creating a recurring task.
type CreateTaskRequest struct {
	Title              string                     `json:"title"              validate:"required,max=200"`
	Description        string                     `json:"description"        validate:"max=2000"`
	Priority           string                     `json:"priority"           validate:"required,oneof=low medium high urgent"`
	RecurrencePattern  string                     `json:"recurrence_pattern" validate:"required,oneof=monthly quarterly half-yearly yearly"`
	StartDate          string                     `json:"start_date"         validate:"required"`
	DueDate            *string                    `json:"due_date,omitempty"`
	ContactIDs         []string                   `json:"contact_ids"        validate:"required,min=1,dive,uuid"`
	TeamID             *string                    `json:"team_id,omitempty"  validate:"omitempty,uuid"`
	TeamMemberMappings []TeamMemberMappingPayload `json:"team_member_mappings,omitempty" validate:"omitempty,dive"`
	RequiresARN        bool                       `json:"requires_arn"`
}

// UpdateTaskRequest is the request body for a partial task update. All
// fields are optional; absent fields leave the stored value untouched.
type UpdateTaskRequest struct {
	Title              *string                    `json:"title,omitempty"              validate:"omitempty,min=1,max=200"`
	Description        *string                    `json:"description,omitempty"        validate:"omitempty,max=2000"`
	Priority           *string                    `json:"priority,omitempty"           validate:"omitempty,oneof=low medium high urgent"`
	RecurrencePattern  *string                    `json:"recurrence_pattern,omitempty" validate:"omitempty,oneof=monthly quarterly half-yearly yearly"`
	StartDate          *string                    `json:"start_date,omitempty"`
	DueDate            *string                    `json:"due_date,omitempty"`
	ContactIDs         []string                   `json:"contact_ids,omitempty"        validate:"omitempty,min=1,dive,uuid"`
	TeamMemberMappings []TeamMemberMappingPayload `json:"team_member_mappings,omitempty" validate:"omitempty,dive"`
	RequiresARN        *bool                      `json:"requires_arn,omitempty"`
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	params, err := createParamsFromRequest(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.CreateTask(ctx, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("recurring task created",
		slog.String("task_id", task.ID.String()),
		slog.String("pattern", string(task.Pattern)))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// List handles GET /tasks. Status defaults to active; limit and offset
// are optional query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.TaskStatusActive
	if value := r.URL.Query().Get("status"); value != "" {
		status = domain.TaskStatus(value)
		if !status.Valid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	limit := parseQueryInt(r, "limit", 20)
	offset := parseQueryInt(r, "offset", 0)

	tasks, err := h.service.ListTasks(r.Context(), status, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	params, err := updateParamsFromRequest(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.UpdateTask(r.Context(), id, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// Pause handles POST /tasks/{id}/pause.
func (h *TaskHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.PauseTask)
}

// Resume handles POST /tasks/{id}/resume.
func (h *TaskHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ResumeTask)
}

// Delete handles DELETE /tasks/{id}. The caller must say what deletion
// means via the option query parameter: "stop" retains history, "all"
// purges the task and its completion rows.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	option := service.DeleteOption(r.URL.Query().Get("option"))
	if option == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing option query parameter: must be 'stop' or 'all'")
		return
	}

	if err := h.service.DeleteTask(r.Context(), id, option); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// transition runs a lifecycle operation shared by pause and resume.
func (h *TaskHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*domain.RecurringTask, error),
) {
	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	task, err := op(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// taskIDFromRequest extracts and parses the id path parameter, writing
// a 400 response itself when parsing fails.
func taskIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryInt reads a non-negative integer query parameter, falling
// back to the default on absence or garbage.
func parseQueryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// createParamsFromRequest parses the wire types of a create request
// into service parameters.
func createParamsFromRequest(req CreateTaskRequest) (service.CreateTaskParams, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return service.CreateTaskParams{}, domain.NewValidationError("start_date", "must be formatted as YYYY-MM-DD", domain.ErrValidation)
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		due, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return service.CreateTaskParams{}, domain.NewValidationError("due_date", "must be formatted as YYYY-MM-DD", domain.ErrValidation)
		}
		dueDate = &due
	}

	contactIDs, err := parseUUIDs(req.ContactIDs)
	if err != nil {
		return service.CreateTaskParams{}, domain.NewValidationError("contact_ids", err.Error(), domain.ErrValidation)
	}

	var teamID *uuid.UUID
	if req.TeamID != nil {
		team, err := uuid.Parse(*req.TeamID)
		if err != nil {
			return service.CreateTaskParams{}, domain.NewValidationError("team_id", "must be a valid UUID", domain.ErrValidation)
		}
		teamID = &team
	}

	mappings, err := mappingsFromPayload(req.TeamMemberMappings)
	if err != nil {
		return service.CreateTaskParams{}, domain.NewValidationError("team_member_mappings", err.Error(), domain.ErrValidation)
	}

	return service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Pattern:     recurrence.Pattern(req.RecurrencePattern),
		StartDate:   startDate,
		DueDate:     dueDate,
		ContactIDs:  contactIDs,
		TeamID:      teamID,
		Mappings:    mappings,
		RequiresARN: req.RequiresARN,
	}, nil
}

// updateParamsFromRequest parses the wire types of an update request
// into service parameters.
func updateParamsFromRequest(req UpdateTaskRequest) (service.UpdateTaskParams, error) {
	params := service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		RequiresARN: req.RequiresARN,
	}

	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		params.Priority = &priority
	}
	if req.RecurrencePattern != nil {
		pattern := recurrence.Pattern(*req.RecurrencePattern)
		params.Pattern = &pattern
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			return service.UpdateTaskParams{}, domain.NewValidationError("start_date", "must be formatted as YYYY-MM-DD", domain.ErrValidation)
		}
		params.StartDate = &startDate
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return service.UpdateTaskParams{}, domain.NewValidationError("due_date", "must be formatted as YYYY-MM-DD", domain.ErrValidation)
		}
		params.DueDate = &dueDate
	}
	if req.ContactIDs != nil {
		contactIDs, err := parseUUIDs(req.ContactIDs)
		if err != nil {
			return service.UpdateTaskParams{}, domain.NewValidationError("contact_ids", err.Error(), domain.ErrValidation)
		}
		params.ContactIDs = contactIDs
	}
	if req.TeamMemberMappings != nil {
		mappings, err := mappingsFromPayload(req.TeamMemberMappings)
		if err != nil {
			return service.UpdateTaskParams{}, domain.NewValidationError("team_member_mappings", err.Error(), domain.ErrValidation)
		}
		params.Mappings = mappings
	}

	return params, nil
}
