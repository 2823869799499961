package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

// EventUpdate carries a partial event update. Nil fields are left untouched.
// RemoveImage clears the image URL regardless of ImageURL.
type EventUpdate struct {
	Name         *string
	Date         *int64
	Venue        *string
	Price        *decimal.Decimal
	TotalTickets *int
	IsActive     *bool
	Description  *string
	ImageURL     *string
	RemoveImage  bool
}

// CreateEvent registers a new event owned by the caller. Tickets start fully
// available and the event starts active.
func (m *Marketplace) CreateEvent(caller models.Principal, name string, date int64, venue string, price decimal.Decimal, totalTickets int, description string, imageURL *string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("create_event", err) }()

	if name == "" || totalTickets <= 0 || price.IsNegative() {
		err = status.ErrInvalidOperation
		return nil, err
	}
	if date < m.currentTime() {
		err = status.ErrInvalidOperation
		return nil, err
	}

	event := &models.Event{
		EventID:          m.nextEventID,
		Name:             name,
		Date:             date,
		Venue:            venue,
		Price:            price,
		TotalTickets:     totalTickets,
		AvailableTickets: totalTickets,
		Organizer:        caller,
		Status:           models.EventStatusActive,
		Description:      description,
	}
	if imageURL != nil {
		url := *imageURL
		event.ImageURL = &url
	}
	m.nextEventID++

	m.events[event.EventID] = event
	m.organizerEvents[caller] = append(m.organizerEvents[caller], event.EventID)

	return event.Clone(), nil
}

// UpdateEvent applies a partial update. Only the organizer or an admin may
// update; each present field is validated before anything is written, so a
// rejected update leaves the event untouched.
func (m *Marketplace) UpdateEvent(caller models.Principal, eventID uint64, update EventUpdate) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("update_event", err) }()

	event, ok := m.events[eventID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if !m.isEventOwnerOrAdmin(caller, event) {
		err = status.ErrNotAuthorized
		return nil, err
	}

	if update.Name != nil && *update.Name == "" {
		err = status.ErrInvalidOperation
		return nil, err
	}
	if update.Date != nil && *update.Date < m.currentTime() {
		err = status.ErrInvalidOperation
		return nil, err
	}
	if update.Price != nil && update.Price.IsNegative() {
		err = status.ErrInvalidOperation
		return nil, err
	}
	// total_tickets may only grow; already-sold tickets make a shrink
	// ambiguous at best.
	if update.TotalTickets != nil && *update.TotalTickets < event.TotalTickets {
		err = status.ErrInvalidOperation
		return nil, err
	}

	if update.Name != nil {
		event.Name = *update.Name
	}
	if update.Date != nil {
		event.Date = *update.Date
	}
	if update.Venue != nil {
		event.Venue = *update.Venue
	}
	if update.Price != nil {
		event.Price = *update.Price
	}
	if update.TotalTickets != nil {
		added := *update.TotalTickets - event.TotalTickets
		event.AvailableTickets += added
		event.TotalTickets = *update.TotalTickets
	}
	if update.IsActive != nil {
		if *update.IsActive {
			event.Status = models.EventStatusActive
		} else {
			event.Status = models.EventStatusCancelled
		}
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.RemoveImage {
		event.ImageURL = nil
	} else if update.ImageURL != nil {
		url := *update.ImageURL
		event.ImageURL = &url
	}

	return event.Clone(), nil
}

// CancelEvent marks an event cancelled. Issued tickets stay valid and
// availability is untouched.
// TODO: refund purchased tickets once a payment collaborator exists.
func (m *Marketplace) CancelEvent(caller models.Principal, eventID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("cancel_event", err) }()

	event, ok := m.events[eventID]
	if !ok {
		err = status.ErrNotFound
		return false, err
	}
	if !m.isEventOwnerOrAdmin(caller, event) {
		err = status.ErrNotAuthorized
		return false, err
	}

	event.Status = models.EventStatusCancelled

	return true, nil
}

func (m *Marketplace) GetEvent(eventID uint64) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, status.ErrNotFound
	}
	return event.Clone(), nil
}

// GetAllEvents lists every event ordered by id.
func (m *Marketplace) GetAllEvents() []*models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Event, 0, len(m.events))
	for _, event := range m.events {
		out = append(out, event.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

// GetActiveEvents lists events that have not been cancelled, ordered by id.
func (m *Marketplace) GetActiveEvents() []*models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Event, 0)
	for _, event := range m.events {
		if event.IsActive() {
			out = append(out, event.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}
