package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/cadence-api/internal/domain"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// TeamMemberMappingPayload is the wire representation of one team
// member assignment.
type TeamMemberMappingPayload struct {
	UserID    string   `json:"user_id"    validate:"required,uuid"`
	UserName  string   `json:"user_name"`
	ClientIDs []string `json:"client_ids" validate:"required,dive,uuid"`
}

// TaskResponse represents the response data for a recurring task.
type TaskResponse struct {
	ID                 string                     `json:"id"`
	Title              string                     `json:"title"`
	Description        string                     `json:"description"`
	Priority           string                     `json:"priority"`
	RecurrencePattern  string                     `json:"recurrence_pattern"`
	StartDate          string                     `json:"start_date"`
	DueDate            *string                    `json:"due_date,omitempty"`
	NextOccurrence     string                     `json:"next_occurrence"`
	Status             string                     `json:"status"`
	ContactIDs         []string                   `json:"contact_ids"`
	TeamID             *string                    `json:"team_id,omitempty"`
	TeamMemberMappings []TeamMemberMappingPayload `json:"team_member_mappings,omitempty"`
	RequiresARN        bool                       `json:"requires_arn"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

// CompletionsResponse maps each client to its completed period keys.
type CompletionsResponse struct {
	TaskID      string              `json:"task_id"`
	Completions map[string][]string `json:"completions"`
}

// ProgressResponse carries per-client completion statistics.
type ProgressResponse struct {
	TaskID   string                     `json:"task_id"`
	Progress map[string]domain.Progress `json:"progress"`
}

// taskToResponse transforms a domain task into its wire representation.
func taskToResponse(task *domain.RecurringTask) TaskResponse {
	response := TaskResponse{
		ID:                task.ID.String(),
		Title:             task.Title,
		Description:       task.Description,
		Priority:          string(task.Priority),
		RecurrencePattern: string(task.Pattern),
		StartDate:         task.StartDate.Format(dateLayout),
		NextOccurrence:    task.NextOccurrence.Format(dateLayout),
		Status:            string(task.Status),
		ContactIDs:        uuidsToStrings(task.ContactIDs),
		RequiresARN:       task.RequiresARN,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		response.DueDate = &due
	}
	if task.TeamID != nil {
		team := task.TeamID.String()
		response.TeamID = &team
	}
	for _, mapping := range task.TeamMemberMappings {
		response.TeamMemberMappings = append(response.TeamMemberMappings, TeamMemberMappingPayload{
			UserID:    mapping.UserID.String(),
			UserName:  mapping.UserName,
			ClientIDs: uuidsToStrings(mapping.ClientIDs),
		})
	}

	return response
}

// mappingsFromPayload parses wire mappings into domain mappings.
func mappingsFromPayload(payloads []TeamMemberMappingPayload) ([]domain.TeamMemberMapping, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	mappings := make([]domain.TeamMemberMapping, 0, len(payloads))
	for _, payload := range payloads {
		userID, err := uuid.Parse(payload.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: %w", payload.UserID, err)
		}
		clientIDs, err := parseUUIDs(payload.ClientIDs)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, domain.TeamMemberMapping{
			UserID:    userID,
			UserName:  payload.UserName,
			ClientIDs: clientIDs,
		})
	}
	return mappings, nil
}

// parseUUIDs parses a slice of UUID strings, failing on the first bad one.
func parseUUIDs(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, value := range values {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q: %w", value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// uuidsToStrings renders UUIDs for the wire.
func uuidsToStrings(ids []uuid.UUID) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}
