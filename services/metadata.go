package services

import (
	"strconv"

	"github.com/shopspring/decimal"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

// GetTokenMetadata synthesizes the NFT-style projection of a ticket.
func (m *Marketplace) GetTokenMetadata(tokenID uint64) (*models.TokenMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		return nil, status.ErrNotFound
	}

	return &models.TokenMetadata{
		TokenID: tokenID,
		Owner:   ticket.Owner,
		Properties: []models.TokenProperty{
			{Key: "eventId", Value: strconv.FormatUint(ticket.EventID, 10)},
			{Key: "isValid", Value: strconv.FormatBool(ticket.IsValid())},
		},
		IsApproved: false,
	}, nil
}

// TotalSupply is the number of tokens ever minted; invalidated tickets still
// count, nothing is ever burned.
func (m *Marketplace) TotalSupply() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextTicketID - 1
}

func (m *Marketplace) BalanceOf(owner models.Principal) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.userTickets[owner])
}

func (m *Marketplace) OwnerOf(tokenID uint64) (models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		return "", status.ErrNotFound
	}
	return ticket.Owner, nil
}

// TokensOf lists the token ids held by a principal, in purchase order.
func (m *Marketplace) TokensOf(owner models.Principal) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := m.userTickets[owner]
	out := make([]uint64, len(tokens))
	copy(out, tokens)
	return out
}

// GetOrganizerEvents lists the events a principal organizes, in creation
// order.
func (m *Marketplace) GetOrganizerEvents(organizer models.Principal) []*models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	eventIDs := m.organizerEvents[organizer]
	out := make([]*models.Event, 0, len(eventIDs))
	for _, id := range eventIDs {
		if event, ok := m.events[id]; ok {
			out = append(out, event.Clone())
		}
	}
	return out
}

// GetEventStats aggregates sales for one event by scanning all tickets.
// Organizer or admin only; revenue counts each ticket at its original sale
// price.
func (m *Marketplace) GetEventStats(caller models.Principal, eventID uint64) (*models.EventStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[eventID]
	if !ok {
		return nil, status.ErrNotFound
	}
	if !m.isEventOwnerOrAdmin(caller, event) {
		return nil, status.ErrNotAuthorized
	}

	stats := &models.EventStats{}
	for _, ticket := range m.tickets {
		if ticket.EventID != eventID {
			continue
		}
		stats.TotalSold++
		stats.TotalRevenue = stats.TotalRevenue.Add(ticket.OriginalPrice)
		if ticket.IsValid() {
			stats.ValidTickets++
		}
	}
	stats.PlatformFees = stats.TotalRevenue.Mul(decimal.NewFromInt(platformFeePercent)).Div(decimal.NewFromInt(100))

	return stats, nil
}
