package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillyAttic/cadence-api/internal/api/shared"
	"github.com/HillyAttic/cadence-api/internal/domain"
	"github.com/HillyAttic/cadence-api/internal/service"
	"github.com/HillyAttic/cadence-api/internal/store"
)

// withViewer injects an authenticated viewer into the request context
// the way the auth middleware does.
func withViewer(r *http.Request, viewerID uuid.UUID, privileged bool) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, viewerID)
	ctx = context.WithValue(ctx, shared.PrivilegedContextKey, privileged)
	return r.WithContext(ctx)
}

func TestCompletionHandlerGetCompletions(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	clientID := uuid.New()
	svc := &mockTaskService{
		LoadCompletionsFn: func(ctx context.Context, id uuid.UUID) (map[uuid.UUID][]string, error) {
			assert.Equal(t, taskID, id)
			return map[uuid.UUID][]string{
				clientID: {"2025-04", "2025-07"},
			}, nil
		},
	}
	handler := NewCompletionHandler(svc, nil)

	req := withURLParam(
		httptest.NewRequest(http.MethodGet, "/api/tasks/"+taskID.String()+"/completions", nil),
		"id", taskID.String())
	rec := httptest.NewRecorder()
	handler.GetCompletions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response CompletionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, taskID.String(), response.TaskID)
	assert.Equal(t, []string{"2025-04", "2025-07"}, response.Completions[clientID.String()])
}

func TestCompletionHandlerGetCompletionsNotFound(t *testing.T) {
	t.Parallel()

	svc := &mockTaskService{
		LoadCompletionsFn: func(ctx context.Context, id uuid.UUID) (map[uuid.UUID][]string, error) {
			return nil, store.ErrTaskNotFound
		},
	}
	handler := NewCompletionHandler(svc, nil)

	id := uuid.NewString()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tasks/"+id+"/completions", nil), "id", id)
	rec := httptest.NewRecorder()
	handler.GetCompletions(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompletionHandlerBulkSave(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	clientID := uuid.New()
	actorID := uuid.New()

	var capturedUpdates []service.CompletionUpdate
	var capturedActor uuid.UUID
	svc := &mockTaskService{
		BulkSaveCompletionsFn: func(ctx context.Context, id uuid.UUID, updates []service.CompletionUpdate, actor uuid.UUID) error {
			capturedUpdates = updates
			capturedActor = actor
			return nil
		},
	}
	handler := NewCompletionHandler(svc, nil)

	body := map[string]interface{}{
		"updates": []map[string]interface{}{
			{"client_id": clientID.String(), "period_key": "2025-07", "is_completed": true},
			{"client_id": clientID.String(), "period_key": "2025-08", "is_completed": false},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := withViewer(
		withURLParam(
			httptest.NewRequest(http.MethodPut, "/api/tasks/"+taskID.String()+"/completions", bytes.NewReader(payload)),
			"id", taskID.String()),
		actorID, false)
	rec := httptest.NewRecorder()
	handler.BulkSaveCompletions(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, actorID, capturedActor)
	require.Len(t, capturedUpdates, 2)
	assert.Equal(t, clientID, capturedUpdates[0].ClientID)
	assert.True(t, capturedUpdates[0].IsCompleted)
	assert.False(t, capturedUpdates[1].IsCompleted)
}

func TestCompletionHandlerBulkSaveRequiresViewer(t *testing.T) {
	t.Parallel()

	handler := NewCompletionHandler(&mockTaskService{}, nil)

	id := uuid.NewString()
	req := withURLParam(
		httptest.NewRequest(http.MethodPut, "/api/tasks/"+id+"/completions",
			bytes.NewBufferString(`{"updates":[{"client_id":"`+uuid.NewString()+`","period_key":"2025-07","is_completed":true}]}`)),
		"id", id)
	rec := httptest.NewRecorder()
	handler.BulkSaveCompletions(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompletionHandlerBulkSaveValidation(t *testing.T) {
	t.Parallel()

	handler := NewCompletionHandler(&mockTaskService{}, nil)
	id := uuid.NewString()

	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"updates": [`},
		{name: "empty batch", body: `{"updates": []}`},
		{name: "missing client ID", body: `{"updates":[{"period_key":"2025-07","is_completed":true}]}`},
		{name: "garbage client ID", body: `{"updates":[{"client_id":"nope","period_key":"2025-07","is_completed":true}]}`},
		{name: "missing period key", body: `{"updates":[{"client_id":"` + uuid.NewString() + `","is_completed":true}]}`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := withViewer(
				withURLParam(
					httptest.NewRequest(http.MethodPut, "/api/tasks/"+id+"/completions", bytes.NewBufferString(tc.body)),
					"id", id),
				uuid.New(), false)
			rec := httptest.NewRecorder()
			handler.BulkSaveCompletions(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCompletionHandlerBulkSaveStoppedTask(t *testing.T) {
	t.Parallel()

	svc := &mockTaskService{
		BulkSaveCompletionsFn: func(ctx context.Context, id uuid.UUID, updates []service.CompletionUpdate, actor uuid.UUID) error {
			return service.ErrTaskStopped
		},
	}
	handler := NewCompletionHandler(svc, nil)

	id := uuid.NewString()
	req := withViewer(
		withURLParam(
			httptest.NewRequest(http.MethodPut, "/api/tasks/"+id+"/completions",
				bytes.NewBufferString(`{"updates":[{"client_id":"`+uuid.NewString()+`","period_key":"2025-07","is_completed":true}]}`)),
			"id", id),
		uuid.New(), false)
	rec := httptest.NewRecorder()
	handler.BulkSaveCompletions(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompletionHandlerGetProgress(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	viewerID := uuid.New()
	clientID := uuid.New()

	svc := &mockTaskService{
		ClientProgressFn: func(ctx context.Context, task, viewer uuid.UUID, privileged bool) (map[uuid.UUID]domain.Progress, error) {
			assert.Equal(t, taskID, task)
			assert.Equal(t, viewerID, viewer)
			assert.True(t, privileged)
			return map[uuid.UUID]domain.Progress{
				clientID: {Completed: 3, Total: 4, Percentage: 75},
			}, nil
		},
	}
	handler := NewCompletionHandler(svc, nil)

	req := withViewer(
		withURLParam(
			httptest.NewRequest(http.MethodGet, "/api/tasks/"+taskID.String()+"/progress", nil),
			"id", taskID.String()),
		viewerID, true)
	rec := httptest.NewRecorder()
	handler.GetProgress(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response ProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 75, response.Progress[clientID.String()].Percentage)
}

func TestCompletionHandlerGetProgressRequiresViewer(t *testing.T) {
	t.Parallel()

	handler := NewCompletionHandler(&mockTaskService{}, nil)

	id := uuid.NewString()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tasks/"+id+"/progress", nil), "id", id)
	rec := httptest.NewRecorder()
	handler.GetProgress(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
