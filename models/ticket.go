package models

import (
	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusValid       TicketStatus = "valid"
	TicketStatusInvalidated TicketStatus = "invalidated"
)

// TicketTransfer is one immutable provenance record. The first entry of a
// ticket's history is always the initial sale (organizer to first buyer).
type TicketTransfer struct {
	From      Principal       `json:"from"`
	To        Principal       `json:"to"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

type TicketMetadata struct {
	EventName    string  `json:"event_name"`
	TicketClass  string  `json:"ticket_class"`
	SeatInfo     *string `json:"seat_info,omitempty"`
	PurchaseDate int64   `json:"purchase_date"`
}

type Ticket struct {
	TokenID         uint64           `json:"token_id"`
	EventID         uint64           `json:"event_id"`
	Owner           Principal        `json:"owner"`
	OriginalPrice   decimal.Decimal  `json:"original_price"`
	CurrentPrice    decimal.Decimal  `json:"current_price"`
	PurchaseHistory []TicketTransfer `json:"purchase_history"`
	Status          TicketStatus     `json:"status"`
	Metadata        *TicketMetadata  `json:"metadata,omitempty"`
}

func (t *Ticket) IsValid() bool {
	return t.Status == TicketStatusValid
}

// Clone returns a copy safe to hand outside the store. The history slice is
// copied so callers cannot append into store state.
func (t *Ticket) Clone() *Ticket {
	out := *t
	out.PurchaseHistory = make([]TicketTransfer, len(t.PurchaseHistory))
	copy(out.PurchaseHistory, t.PurchaseHistory)
	if t.Metadata != nil {
		md := *t.Metadata
		out.Metadata = &md
	}
	return &out
}
