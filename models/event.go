package models

import (
	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

type Event struct {
	EventID          uint64          `json:"event_id"`
	Name             string          `json:"name"`
	Date             int64           `json:"date"` // unix seconds
	Venue            string          `json:"venue"`
	Price            decimal.Decimal `json:"price"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	Organizer        Principal       `json:"organizer"`
	Status           EventStatus     `json:"status"`
	Description      string          `json:"description"`
	ImageURL         *string         `json:"image_url,omitempty"`
}

func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// Clone returns a copy safe to hand outside the store.
func (e *Event) Clone() *Event {
	out := *e
	if e.ImageURL != nil {
		url := *e.ImageURL
		out.ImageURL = &url
	}
	return &out
}
