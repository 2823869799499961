package services

import (
	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

// State is a full copy of the marketplace, suitable for atomic snapshot and
// restore between calls. It carries everything: entities, counters, roles and
// both reverse indexes.
type State struct {
	NextEventID     uint64                           `json:"next_event_id"`
	NextTicketID    uint64                           `json:"next_ticket_id"`
	Events          map[uint64]*models.Event         `json:"events"`
	Tickets         map[uint64]*models.Ticket        `json:"tickets"`
	Roles           map[models.Principal]models.Role `json:"roles"`
	UserTickets     map[models.Principal][]uint64    `json:"user_tickets"`
	OrganizerEvents map[models.Principal][]uint64    `json:"organizer_events"`
	PlatformOwner   models.Principal                 `json:"platform_owner"`
}

// ExportState deep-copies the whole store.
func (m *Marketplace) ExportState() *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &State{
		NextEventID:     m.nextEventID,
		NextTicketID:    m.nextTicketID,
		Events:          make(map[uint64]*models.Event, len(m.events)),
		Tickets:         make(map[uint64]*models.Ticket, len(m.tickets)),
		Roles:           make(map[models.Principal]models.Role, len(m.roles)),
		UserTickets:     make(map[models.Principal][]uint64, len(m.userTickets)),
		OrganizerEvents: make(map[models.Principal][]uint64, len(m.organizerEvents)),
		PlatformOwner:   m.platformOwner,
	}
	for id, event := range m.events {
		s.Events[id] = event.Clone()
	}
	for id, ticket := range m.tickets {
		s.Tickets[id] = ticket.Clone()
	}
	for p, role := range m.roles {
		s.Roles[p] = role
	}
	for p, tokens := range m.userTickets {
		s.UserTickets[p] = append([]uint64(nil), tokens...)
	}
	for p, events := range m.organizerEvents {
		s.OrganizerEvents[p] = append([]uint64(nil), events...)
	}
	return s
}

// RestoreState replaces the whole store with a previously exported state.
// The incoming state is deep-copied so the caller's copy stays detached.
func (m *Marketplace) RestoreState(s *State) error {
	if s == nil || s.NextEventID == 0 || s.NextTicketID == 0 {
		return status.ErrInvalidOperation
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextEventID = s.NextEventID
	m.nextTicketID = s.NextTicketID
	m.platformOwner = s.PlatformOwner

	m.events = make(map[uint64]*models.Event, len(s.Events))
	for id, event := range s.Events {
		m.events[id] = event.Clone()
	}
	m.tickets = make(map[uint64]*models.Ticket, len(s.Tickets))
	for id, ticket := range s.Tickets {
		m.tickets[id] = ticket.Clone()
	}
	m.roles = make(map[models.Principal]models.Role, len(s.Roles))
	for p, role := range s.Roles {
		m.roles[p] = role
	}
	m.userTickets = make(map[models.Principal][]uint64, len(s.UserTickets))
	for p, tokens := range s.UserTickets {
		m.userTickets[p] = append([]uint64(nil), tokens...)
	}
	m.organizerEvents = make(map[models.Principal][]uint64, len(s.OrganizerEvents))
	for p, events := range s.OrganizerEvents {
		m.organizerEvents[p] = append([]uint64(nil), events...)
	}

	return nil
}
