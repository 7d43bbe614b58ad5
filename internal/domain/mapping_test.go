package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestVisibleClients(t *testing.T) {
	t.Parallel()

	clientA := uuid.New()
	clientB := uuid.New()
	clientC := uuid.New()
	mappedUser := uuid.New()
	otherUser := uuid.New()
	teamID := uuid.New()

	contacts := []uuid.UUID{clientA, clientB, clientC}
	mappings := []TeamMemberMapping{
		{UserID: mappedUser, UserName: "Priya", ClientIDs: []uuid.UUID{clientA, clientB}},
	}

	testCases := []struct {
		name       string
		task       RecurringTask
		viewerID   uuid.UUID
		privileged bool
		expected   []uuid.UUID
	}{
		{
			name:     "mapped viewer sees exactly their clients",
			task:     RecurringTask{ContactIDs: contacts, TeamID: &teamID, TeamMemberMappings: mappings},
			viewerID: mappedUser,
			expected: []uuid.UUID{clientA, clientB},
		},
		{
			name:     "unscoped task shows everyone the full list",
			task:     RecurringTask{ContactIDs: contacts},
			viewerID: otherUser,
			expected: contacts,
		},
		{
			name:       "privileged viewer sees all on team-scoped task",
			task:       RecurringTask{ContactIDs: contacts, TeamID: &teamID, TeamMemberMappings: mappings},
			viewerID:   otherUser,
			privileged: true,
			expected:   contacts,
		},
		{
			name:     "unmapped viewer on team-scoped task sees nothing",
			task:     RecurringTask{ContactIDs: contacts, TeamID: &teamID, TeamMemberMappings: mappings},
			viewerID: otherUser,
			expected: []uuid.UUID{},
		},
		{
			name:     "mappings without team still gate unmapped viewers",
			task:     RecurringTask{ContactIDs: contacts, TeamMemberMappings: mappings},
			viewerID: otherUser,
			expected: []uuid.UUID{},
		},
		{
			name:       "mapping entry wins over privileged full view",
			task:       RecurringTask{ContactIDs: contacts, TeamID: &teamID, TeamMemberMappings: mappings},
			viewerID:   mappedUser,
			privileged: true,
			expected:   []uuid.UUID{clientA, clientB},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.task.VisibleClients(tc.viewerID, tc.privileged)
			if len(got) != len(tc.expected) {
				t.Fatalf("got %d clients, want %d", len(got), len(tc.expected))
			}
			for i, id := range tc.expected {
				if got[i] != id {
					t.Errorf("client[%d] = %s, want %s", i, got[i], id)
				}
			}
		})
	}
}

func TestValidateMappings(t *testing.T) {
	t.Parallel()

	clientA := uuid.New()
	clientB := uuid.New()
	stranger := uuid.New()
	userID := uuid.New()
	contacts := []uuid.UUID{clientA, clientB}

	t.Run("empty mappings are fine", func(t *testing.T) {
		t.Parallel()
		if err := ValidateMappings(nil, contacts); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("mapping within contacts passes", func(t *testing.T) {
		t.Parallel()
		mappings := []TeamMemberMapping{
			{UserID: userID, ClientIDs: []uuid.UUID{clientA}},
		}
		if err := ValidateMappings(mappings, contacts); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("overlapping assignments are permitted", func(t *testing.T) {
		t.Parallel()
		mappings := []TeamMemberMapping{
			{UserID: userID, ClientIDs: []uuid.UUID{clientA, clientB}},
			{UserID: uuid.New(), ClientIDs: []uuid.UUID{clientA}},
		}
		if err := ValidateMappings(mappings, contacts); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("client outside contacts is rejected", func(t *testing.T) {
		t.Parallel()
		mappings := []TeamMemberMapping{
			{UserID: userID, ClientIDs: []uuid.UUID{clientA, stranger}},
		}
		err := ValidateMappings(mappings, contacts)
		if !errors.Is(err, ErrClientNotInContacts) {
			t.Errorf("got error %v, want ErrClientNotInContacts", err)
		}
	})

	t.Run("nil user ID is rejected", func(t *testing.T) {
		t.Parallel()
		mappings := []TeamMemberMapping{
			{UserID: uuid.Nil, ClientIDs: []uuid.UUID{clientA}},
		}
		if err := ValidateMappings(mappings, contacts); err == nil {
			t.Error("expected error for nil user ID")
		}
	})
}
