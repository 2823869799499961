package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/status"
	"ticket-marketplace/models"
)

func TestPurchaseTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	buyer := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, organizer, 10, 50)

	ticket, err := m.PurchaseTicket(buyer, event.EventID)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), ticket.TokenID)
	assert.Equal(t, event.EventID, ticket.EventID)
	assert.Equal(t, buyer, ticket.Owner)
	assert.Equal(t, models.TicketStatusValid, ticket.Status)
	assert.True(t, ticket.OriginalPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, ticket.CurrentPrice.Equal(decimal.NewFromInt(50)))

	// The initial sale seeds the history: organizer -> first buyer.
	require.Len(t, ticket.PurchaseHistory, 1)
	assert.Equal(t, organizer, ticket.PurchaseHistory[0].From)
	assert.Equal(t, buyer, ticket.PurchaseHistory[0].To)
	assert.True(t, ticket.PurchaseHistory[0].Price.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, ticket.Metadata)
	assert.Equal(t, "Test Concert", ticket.Metadata.EventName)
	assert.Equal(t, "Standard", ticket.Metadata.TicketClass)
	assert.Nil(t, ticket.Metadata.SeatInfo)

	got, err := m.GetEvent(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.AvailableTickets)

	assert.Equal(t, []uint64{1}, m.TokensOf(buyer))
	requireIndexConsistent(t, m)
}

func TestPurchaseTicket_NotFound(t *testing.T) {
	m, _ := newTestMarketplace()

	_, err := m.PurchaseTicket(models.Principal("buyer-1"), 7)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestPurchaseTicket_InactiveEvent(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	event := mustCreateEvent(t, m, clock, organizer, 1, 50)

	_, err := m.CancelEvent(organizer, event.EventID)
	require.NoError(t, err)

	_, err = m.PurchaseTicket(models.Principal("buyer-1"), event.EventID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestPurchaseTicket_InactiveBeatsSoldOut(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	event := mustCreateEvent(t, m, clock, organizer, 1, 50)

	_, err := m.PurchaseTicket(models.Principal("buyer-1"), event.EventID)
	require.NoError(t, err)
	_, err = m.CancelEvent(organizer, event.EventID)
	require.NoError(t, err)

	// Inactive and sold out at once: the inactive check wins.
	_, err = m.PurchaseTicket(models.Principal("buyer-2"), event.EventID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestPurchaseTicket_PastEvent(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	event := mustCreateEvent(t, m, clock, organizer, 10, 50)

	clock.Advance(48 * time.Hour)

	_, err := m.PurchaseTicket(models.Principal("buyer-1"), event.EventID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestPurchaseTicket_SoldOut(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	event := mustCreateEvent(t, m, clock, organizer, 2, 50)

	_, err := m.PurchaseTicket(models.Principal("buyer-1"), event.EventID)
	require.NoError(t, err)
	_, err = m.PurchaseTicket(models.Principal("buyer-2"), event.EventID)
	require.NoError(t, err)

	_, err = m.PurchaseTicket(models.Principal("buyer-3"), event.EventID)
	assert.ErrorIs(t, err, status.ErrSoldOut)

	got, err := m.GetEvent(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableTickets)
	assert.Equal(t, 2, got.TotalTickets)
}

func TestListTicketForResale(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, organizer, 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.ListTicketForResale(owner, 99, decimal.NewFromInt(110))
	assert.ErrorIs(t, err, status.ErrNotFound)

	_, err = m.ListTicketForResale(models.Principal("stranger"), ticket.TokenID, decimal.NewFromInt(110))
	assert.ErrorIs(t, err, status.ErrNotAuthorized)

	// Cap is floor(100 * 1.2) = 120.
	_, err = m.ListTicketForResale(owner, ticket.TokenID, decimal.NewFromInt(121))
	assert.ErrorIs(t, err, status.ErrLimitExceeded)

	listed, err := m.ListTicketForResale(owner, ticket.TokenID, decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.True(t, listed.CurrentPrice.Equal(decimal.NewFromInt(120)))
	assert.True(t, listed.OriginalPrice.Equal(decimal.NewFromInt(100)))
	// Listing never moves ownership.
	assert.Equal(t, owner, listed.Owner)
	require.Len(t, listed.PurchaseHistory, 1)
}

func TestListTicketForResale_NegativePrice(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.ListTicketForResale(owner, ticket.TokenID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestBuyResaleTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	seller := models.Principal("buyer-1")
	buyer := models.Principal("buyer-2")
	event := mustCreateEvent(t, m, clock, organizer, 10, 100)

	ticket, err := m.PurchaseTicket(seller, event.EventID)
	require.NoError(t, err)
	_, err = m.ListTicketForResale(seller, ticket.TokenID, decimal.NewFromInt(115))
	require.NoError(t, err)

	resold, err := m.BuyResaleTicket(buyer, ticket.TokenID)
	require.NoError(t, err)

	assert.Equal(t, buyer, resold.Owner)
	require.Len(t, resold.PurchaseHistory, 2)
	assert.Equal(t, seller, resold.PurchaseHistory[1].From)
	assert.Equal(t, buyer, resold.PurchaseHistory[1].To)
	assert.True(t, resold.PurchaseHistory[1].Price.Equal(decimal.NewFromInt(115)))
	requireOwnerMatchesHistory(t, resold)

	assert.Empty(t, m.TokensOf(seller))
	assert.Equal(t, []uint64{ticket.TokenID}, m.TokensOf(buyer))
	requireIndexConsistent(t, m)
}

func TestBuyResaleTicket_OwnTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.BuyResaleTicket(owner, ticket.TokenID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestBuyResaleTicket_EventClosed(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	seller := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, organizer, 10, 100)

	ticket, err := m.PurchaseTicket(seller, event.EventID)
	require.NoError(t, err)

	_, err = m.CancelEvent(organizer, event.EventID)
	require.NoError(t, err)

	_, err = m.BuyResaleTicket(models.Principal("buyer-2"), ticket.TokenID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestBuyResaleTicket_PastEvent(t *testing.T) {
	m, clock := newTestMarketplace()
	seller := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(seller, event.EventID)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)

	_, err = m.BuyResaleTicket(models.Principal("buyer-2"), ticket.TokenID)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestBuyResaleTicket_NotFound(t *testing.T) {
	m, _ := newTestMarketplace()

	_, err := m.BuyResaleTicket(models.Principal("buyer-1"), 5)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestTransferTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	recipient := models.Principal("friend-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	transferred, err := m.TransferTicket(owner, ticket.TokenID, recipient)
	require.NoError(t, err)

	assert.Equal(t, recipient, transferred.Owner)
	require.Len(t, transferred.PurchaseHistory, 2)
	assert.Equal(t, owner, transferred.PurchaseHistory[1].From)
	assert.Equal(t, recipient, transferred.PurchaseHistory[1].To)
	assert.True(t, transferred.PurchaseHistory[1].Price.IsZero())
	requireOwnerMatchesHistory(t, transferred)

	assert.Empty(t, m.TokensOf(owner))
	assert.Equal(t, []uint64{ticket.TokenID}, m.TokensOf(recipient))
	requireIndexConsistent(t, m)
}

func TestTransferTicket_ToSelf(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.TransferTicket(owner, ticket.TokenID, owner)
	assert.ErrorIs(t, err, status.ErrInvalidOperation)
}

func TestTransferTicket_NotOwner(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.TransferTicket(models.Principal("stranger"), ticket.TokenID, models.Principal("friend-1"))
	assert.ErrorIs(t, err, status.ErrNotAuthorized)
}

func TestInvalidateTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, organizer, 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	invalidated, err := m.InvalidateTicket(organizer, ticket.TokenID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInvalidated, invalidated.Status)

	// Ownership and history survive invalidation for audit.
	assert.Equal(t, owner, invalidated.Owner)
	require.Len(t, invalidated.PurchaseHistory, 1)

	ok, err := m.VerifyTicket(ticket.TokenID, owner)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidateTicket_PlatformOwner(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	_, err = m.InvalidateTicket(platformOwner, ticket.TokenID)
	require.NoError(t, err)
}

func TestInvalidateTicket_AdminRoleNotEnough(t *testing.T) {
	m, clock := newTestMarketplace()
	admin := models.Principal("admin-1")
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	_, err := m.AssignRole(platformOwner, admin, models.RoleAdmin)
	require.NoError(t, err)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	// Invalidation is gated on the platform owner principal, not the admin
	// role.
	_, err = m.InvalidateTicket(admin, ticket.TokenID)
	assert.ErrorIs(t, err, status.ErrNotAuthorized)
}

func TestVerifyTicket(t *testing.T) {
	m, clock := newTestMarketplace()
	owner := models.Principal("buyer-1")
	event := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 100)

	ticket, err := m.PurchaseTicket(owner, event.EventID)
	require.NoError(t, err)

	ok, err := m.VerifyTicket(ticket.TokenID, owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.VerifyTicket(ticket.TokenID, models.Principal("stranger"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.VerifyTicket(99, owner)
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestGetUserTickets_PurchaseOrder(t *testing.T) {
	m, clock := newTestMarketplace()
	buyer := models.Principal("buyer-1")
	first := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 10)
	second := mustCreateEvent(t, m, clock, models.Principal("organizer-2"), 10, 20)

	t1, err := m.PurchaseTicket(buyer, first.EventID)
	require.NoError(t, err)
	t2, err := m.PurchaseTicket(buyer, second.EventID)
	require.NoError(t, err)
	t3, err := m.PurchaseTicket(buyer, first.EventID)
	require.NoError(t, err)

	tickets := m.GetUserTickets(buyer)
	require.Len(t, tickets, 3)
	assert.Equal(t, t1.TokenID, tickets[0].TokenID)
	assert.Equal(t, t2.TokenID, tickets[1].TokenID)
	assert.Equal(t, t3.TokenID, tickets[2].TokenID)
}

func TestGetEventTickets(t *testing.T) {
	m, clock := newTestMarketplace()
	first := mustCreateEvent(t, m, clock, models.Principal("organizer-1"), 10, 10)
	second := mustCreateEvent(t, m, clock, models.Principal("organizer-2"), 10, 20)

	_, err := m.PurchaseTicket(models.Principal("buyer-1"), first.EventID)
	require.NoError(t, err)
	_, err = m.PurchaseTicket(models.Principal("buyer-2"), second.EventID)
	require.NoError(t, err)
	_, err = m.PurchaseTicket(models.Principal("buyer-3"), first.EventID)
	require.NoError(t, err)

	tickets := m.GetEventTickets(first.EventID)
	require.Len(t, tickets, 2)
	assert.Equal(t, uint64(1), tickets[0].TokenID)
	assert.Equal(t, uint64(3), tickets[1].TokenID)

	assert.Empty(t, m.GetEventTickets(42))
}

// A longer sequence mixing every transfer path, checked for index and
// history consistency after each mutation.
func TestTicketLifecycle_IndexesStayConsistent(t *testing.T) {
	m, clock := newTestMarketplace()
	organizer := models.Principal("organizer-1")
	alice := models.Principal("alice")
	bob := models.Principal("bob")
	carol := models.Principal("carol")
	event := mustCreateEvent(t, m, clock, organizer, 5, 100)

	ticket, err := m.PurchaseTicket(alice, event.EventID)
	require.NoError(t, err)
	requireIndexConsistent(t, m)

	_, err = m.ListTicketForResale(alice, ticket.TokenID, decimal.NewFromInt(110))
	require.NoError(t, err)
	requireIndexConsistent(t, m)

	resold, err := m.BuyResaleTicket(bob, ticket.TokenID)
	require.NoError(t, err)
	requireOwnerMatchesHistory(t, resold)
	requireIndexConsistent(t, m)

	transferred, err := m.TransferTicket(bob, ticket.TokenID, carol)
	require.NoError(t, err)
	requireOwnerMatchesHistory(t, transferred)
	requireIndexConsistent(t, m)

	// Carol resells back to Alice.
	_, err = m.ListTicketForResale(carol, ticket.TokenID, decimal.NewFromInt(90))
	require.NoError(t, err)
	back, err := m.BuyResaleTicket(alice, ticket.TokenID)
	require.NoError(t, err)
	requireOwnerMatchesHistory(t, back)
	requireIndexConsistent(t, m)

	require.Len(t, back.PurchaseHistory, 4)
	assert.Equal(t, alice, back.Owner)
	assert.Equal(t, []uint64{ticket.TokenID}, m.TokensOf(alice))
	assert.Empty(t, m.TokensOf(bob))
	assert.Empty(t, m.TokensOf(carol))
}
