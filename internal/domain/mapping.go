package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// VisibleClients answers which clients the given viewer may act on for
// this task:
//
//   - a viewer with a mapping entry sees exactly that entry's clients;
//   - a task with no mappings and no team is unscoped, so every viewer
//     sees the full contact list;
//   - a privileged viewer on a team-scoped task sees the full contact
//     list even without a mapping entry;
//   - an unmapped, non-privileged viewer on a team-scoped task sees
//     nothing.
func (t *RecurringTask) VisibleClients(viewerID uuid.UUID, privileged bool) []uuid.UUID {
	for _, mapping := range t.TeamMemberMappings {
		if mapping.UserID == viewerID {
			return mapping.ClientIDs
		}
	}

	if len(t.TeamMemberMappings) == 0 && t.TeamID == nil {
		return t.ContactIDs
	}

	if t.TeamID != nil && privileged {
		return t.ContactIDs
	}

	return []uuid.UUID{}
}

// ValidateMappings checks that every client referenced by every mapping
// entry is a member of the task's contact list, and names the offending
// client on violation. Overlap across users is permitted and not
// deduplicated; only a client absent from contactIDs is a hard failure.
func ValidateMappings(mappings []TeamMemberMapping, contactIDs []uuid.UUID) error {
	if len(mappings) == 0 {
		return nil
	}

	contacts := make(map[uuid.UUID]struct{}, len(contactIDs))
	for _, id := range contactIDs {
		contacts[id] = struct{}{}
	}

	for _, mapping := range mappings {
		if mapping.UserID == uuid.Nil {
			return NewValidationError("team_member_mappings",
				"mapping entry has no user ID", ErrValidation)
		}
		for _, clientID := range mapping.ClientIDs {
			if _, ok := contacts[clientID]; !ok {
				return NewValidationError("team_member_mappings",
					fmt.Sprintf("client %s mapped to %s is not a task contact",
						clientID, mapping.UserID),
					ErrClientNotInContacts)
			}
		}
	}

	return nil
}
