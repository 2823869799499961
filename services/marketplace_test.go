package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/models"
)

const platformOwner = models.Principal("platform-owner")

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestMarketplace() (*Marketplace, *testClock) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMarketplace(platformOwner)
	m.now = clock.Now
	return m, clock
}

// mustCreateEvent creates an event one day out from the test clock.
func mustCreateEvent(t *testing.T, m *Marketplace, clock *testClock, organizer models.Principal, totalTickets int, price int64) *models.Event {
	t.Helper()

	event, err := m.CreateEvent(
		organizer,
		"Test Concert",
		clock.Now().Add(24*time.Hour).Unix(),
		"Test Arena",
		decimal.NewFromInt(price),
		totalTickets,
		"A test concert",
		nil,
	)
	require.NoError(t, err)
	return event
}

// requireIndexConsistent checks that the owner index and the tickets map
// agree exactly: every indexed token is owned by the indexed principal and
// every ticket's owner indexes it.
func requireIndexConsistent(t *testing.T, m *Marketplace) {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	indexed := make(map[uint64]models.Principal)
	for owner, tokens := range m.userTickets {
		for _, tokenID := range tokens {
			ticket, ok := m.tickets[tokenID]
			require.True(t, ok, "index references unknown token %d", tokenID)
			require.Equal(t, owner, ticket.Owner, "token %d indexed under wrong owner", tokenID)
			_, dup := indexed[tokenID]
			require.False(t, dup, "token %d indexed twice", tokenID)
			indexed[tokenID] = owner
		}
	}
	for tokenID := range m.tickets {
		_, ok := indexed[tokenID]
		require.True(t, ok, "token %d missing from owner index", tokenID)
	}
}

// requireOwnerMatchesHistory checks that a ticket's owner equals the `to`
// principal of its last transfer record.
func requireOwnerMatchesHistory(t *testing.T, ticket *models.Ticket) {
	t.Helper()

	require.NotEmpty(t, ticket.PurchaseHistory)
	last := ticket.PurchaseHistory[len(ticket.PurchaseHistory)-1]
	require.Equal(t, last.To, ticket.Owner)
}
