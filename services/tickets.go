package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

const defaultTicketClass = "Standard"

// PurchaseTicket mints a ticket for the caller at the event's current price.
// Payment settlement happens in an external collaborator and is treated as
// already succeeded.
func (m *Marketplace) PurchaseTicket(caller models.Principal, eventID uint64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("purchase_ticket", err) }()

	event, ok := m.events[eventID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if !event.IsActive() {
		err = status.ErrInvalidOperation
		return nil, err
	}
	if event.AvailableTickets == 0 {
		err = status.ErrSoldOut
		return nil, err
	}
	if event.Date < m.currentTime() {
		err = status.ErrInvalidOperation
		return nil, err
	}

	now := m.currentTime()
	ticket := &models.Ticket{
		TokenID:       m.nextTicketID,
		EventID:       eventID,
		Owner:         caller,
		OriginalPrice: event.Price,
		CurrentPrice:  event.Price,
		PurchaseHistory: []models.TicketTransfer{{
			From:      event.Organizer,
			To:        caller,
			Price:     event.Price,
			Timestamp: now,
		}},
		Status: models.TicketStatusValid,
		Metadata: &models.TicketMetadata{
			EventName:    event.Name,
			TicketClass:  defaultTicketClass,
			PurchaseDate: now,
		},
	}
	m.nextTicketID++

	m.tickets[ticket.TokenID] = ticket
	event.AvailableTickets--
	m.userTickets[caller] = append(m.userTickets[caller], ticket.TokenID)

	m.publish(TicketActivity{
		Action:    "purchased",
		TokenID:   ticket.TokenID,
		EventID:   eventID,
		From:      event.Organizer,
		To:        caller,
		Price:     event.Price,
		Timestamp: now,
	})

	return ticket.Clone(), nil
}

// ListTicketForResale sets the asking price of a ticket the caller owns.
// Ownership does not change; the price is capped at 1.2x the original.
func (m *Marketplace) ListTicketForResale(caller models.Principal, tokenID uint64, price decimal.Decimal) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("list_ticket_for_resale", err) }()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if ticket.Owner != caller {
		err = status.ErrNotAuthorized
		return nil, err
	}
	if price.IsNegative() {
		err = status.ErrInvalidOperation
		return nil, err
	}

	maxPrice := ticket.OriginalPrice.Mul(maxResaleMultiplier).Floor()
	if price.GreaterThan(maxPrice) {
		err = status.ErrLimitExceeded
		return nil, err
	}

	ticket.CurrentPrice = price

	m.publish(TicketActivity{
		Action:    "listed",
		TokenID:   tokenID,
		EventID:   ticket.EventID,
		From:      caller,
		Price:     price,
		Timestamp: m.currentTime(),
	})

	return ticket.Clone(), nil
}

// BuyResaleTicket transfers a listed ticket to the caller at its current
// price. Payment settlement is out of scope, as with PurchaseTicket.
func (m *Marketplace) BuyResaleTicket(caller models.Principal, tokenID uint64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("buy_resale_ticket", err) }()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if ticket.Owner == caller {
		err = status.ErrInvalidOperation
		return nil, err
	}
	event, ok := m.events[ticket.EventID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if !event.IsActive() || event.Date < m.currentTime() {
		err = status.ErrInvalidOperation
		return nil, err
	}

	// Capture the seller before history grows; indexing the history from the
	// tail after appending invites an off-by-one.
	seller := ticket.Owner
	price := ticket.CurrentPrice
	m.reassignTicket(ticket, seller, caller, price)

	m.publish(TicketActivity{
		Action:    "resold",
		TokenID:   tokenID,
		EventID:   ticket.EventID,
		From:      seller,
		To:        caller,
		Price:     price,
		Timestamp: m.currentTime(),
	})

	return ticket.Clone(), nil
}

// TransferTicket gifts a ticket to another principal at zero price.
func (m *Marketplace) TransferTicket(caller models.Principal, tokenID uint64, recipient models.Principal) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("transfer_ticket", err) }()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if ticket.Owner != caller {
		err = status.ErrNotAuthorized
		return nil, err
	}
	if recipient == caller {
		err = status.ErrInvalidOperation
		return nil, err
	}

	m.reassignTicket(ticket, caller, recipient, decimal.Zero)

	m.publish(TicketActivity{
		Action:    "transferred",
		TokenID:   tokenID,
		EventID:   ticket.EventID,
		From:      caller,
		To:        recipient,
		Price:     decimal.Zero,
		Timestamp: m.currentTime(),
	})

	return ticket.Clone(), nil
}

// InvalidateTicket marks a ticket invalid, terminally. Only the event's
// organizer or the platform owner may do this; the admin role deliberately
// does not grant it.
func (m *Marketplace) InvalidateTicket(caller models.Principal, tokenID uint64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	defer func() { m.track("invalidate_ticket", err) }()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	event, ok := m.events[ticket.EventID]
	if !ok {
		err = status.ErrNotFound
		return nil, err
	}
	if caller != event.Organizer && caller != m.platformOwner {
		err = status.ErrNotAuthorized
		return nil, err
	}

	ticket.Status = models.TicketStatusInvalidated

	m.publish(TicketActivity{
		Action:    "invalidated",
		TokenID:   tokenID,
		EventID:   ticket.EventID,
		From:      caller,
		Price:     decimal.Zero,
		Timestamp: m.currentTime(),
	})

	return ticket.Clone(), nil
}

// VerifyTicket reports whether a ticket is valid and held by the claimed
// owner. Used at the gate; never mutates anything.
func (m *Marketplace) VerifyTicket(tokenID uint64, owner models.Principal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		return false, status.ErrNotFound
	}
	return ticket.IsValid() && ticket.Owner == owner, nil
}

func (m *Marketplace) GetTicket(tokenID uint64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[tokenID]
	if !ok {
		return nil, status.ErrNotFound
	}
	return ticket.Clone(), nil
}

// GetEventTickets lists every ticket minted for an event, ordered by token id.
func (m *Marketplace) GetEventTickets(eventID uint64) []*models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Ticket, 0)
	for _, ticket := range m.tickets {
		if ticket.EventID == eventID {
			out = append(out, ticket.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

// GetUserTickets lists a principal's tickets in purchase order.
func (m *Marketplace) GetUserTickets(user models.Principal) []*models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokenIDs := m.userTickets[user]
	out := make([]*models.Ticket, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		if ticket, ok := m.tickets[id]; ok {
			out = append(out, ticket.Clone())
		}
	}
	return out
}
