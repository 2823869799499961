package services

import (
	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

// AssignRole overwrites the target's role. Admin-only; there is no demotion
// protection, an admin may demote anyone including itself.
func (m *Marketplace) AssignRole(caller, target models.Principal, role models.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("assign_role", err) }()

	if m.roleOf(caller) != models.RoleAdmin {
		err = status.ErrNotAuthorized
		return false, err
	}
	switch role {
	case models.RoleAdmin, models.RoleOrganizer, models.RoleUser:
	default:
		err = status.ErrInvalidOperation
		return false, err
	}

	m.roles[target] = role

	return true, nil
}

// GetUserRole returns the stored role, defaulting to user when unset.
func (m *Marketplace) GetUserRole(p models.Principal) models.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roleOf(p)
}
