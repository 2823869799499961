package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ticket-marketplace/models"
)

// maxResaleMultiplier caps resale prices at 1.2x the original sale price.
// platformFeePercent is recorded for stats only; no funds ever move here.
var (
	maxResaleMultiplier = decimal.RequireFromString("1.2")
)

const platformFeePercent = 2

// Notifier receives ticket lifecycle activity after a mutation commits.
// Implementations must tolerate being called from multiple goroutines.
type Notifier interface {
	PublishTicketActivity(activity TicketActivity)
}

// Recorder observes the outcome of every mutating marketplace operation.
type Recorder interface {
	TrackOperation(operation string, err error)
}

// TicketActivity describes one committed ticket state transition.
type TicketActivity struct {
	Action    string           `json:"action"` // purchased, listed, resold, transferred, invalidated
	TokenID   uint64           `json:"token_id"`
	EventID   uint64           `json:"event_id"`
	From      models.Principal `json:"from,omitempty"`
	To        models.Principal `json:"to,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	Timestamp int64            `json:"timestamp"`
}

// Marketplace is the ticketing marketplace store. All entities live in
// memory; cross-referencing indexes (owner->tokens, organizer->events) are
// updated in the same critical section as the entity they mirror, so no
// caller ever observes a partially applied mutation.
type Marketplace struct {
	mu  sync.Mutex
	now func() time.Time

	nextEventID  uint64
	nextTicketID uint64

	events  map[uint64]*models.Event
	tickets map[uint64]*models.Ticket
	roles   map[models.Principal]models.Role

	userTickets     map[models.Principal][]uint64
	organizerEvents map[models.Principal][]uint64

	// platformOwner holds owner-level invalidation rights. This is a single
	// designated principal, not a role; generic admins do not inherit it.
	platformOwner models.Principal

	notifier Notifier
	recorder Recorder
}

// NewMarketplace creates an empty store. The platform owner starts with the
// admin role, matching how the system is bootstrapped.
func NewMarketplace(platformOwner models.Principal) *Marketplace {
	m := &Marketplace{
		now:             time.Now,
		nextEventID:     1,
		nextTicketID:    1,
		events:          make(map[uint64]*models.Event),
		tickets:         make(map[uint64]*models.Ticket),
		roles:           make(map[models.Principal]models.Role),
		userTickets:     make(map[models.Principal][]uint64),
		organizerEvents: make(map[models.Principal][]uint64),
		platformOwner:   platformOwner,
	}
	m.roles[platformOwner] = models.RoleAdmin
	return m
}

// SetNotifier attaches a lifecycle notifier. Pass nil to detach.
func (m *Marketplace) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// SetRecorder attaches an operation recorder. Pass nil to detach.
func (m *Marketplace) SetRecorder(r Recorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = r
}

func (m *Marketplace) currentTime() int64 {
	return m.now().Unix()
}

func (m *Marketplace) roleOf(p models.Principal) models.Role {
	if role, ok := m.roles[p]; ok {
		return role
	}
	return models.RoleUser
}

// isEventOwnerOrAdmin is the authorization predicate shared by event updates,
// cancellation and stats. Not used by InvalidateTicket, which checks the
// platform owner instead of the admin role.
func (m *Marketplace) isEventOwnerOrAdmin(caller models.Principal, event *models.Event) bool {
	return caller == event.Organizer || m.roleOf(caller) == models.RoleAdmin
}

// reassignTicket moves ownership of a ticket and keeps the owner index in
// step. Every transfer path goes through here so the index can never diverge
// from the tickets map.
func (m *Marketplace) reassignTicket(t *models.Ticket, from, to models.Principal, price decimal.Decimal) {
	t.PurchaseHistory = append(t.PurchaseHistory, models.TicketTransfer{
		From:      from,
		To:        to,
		Price:     price,
		Timestamp: m.currentTime(),
	})
	t.Owner = to

	m.removeUserToken(from, t.TokenID)
	m.userTickets[to] = append(m.userTickets[to], t.TokenID)
}

func (m *Marketplace) removeUserToken(owner models.Principal, tokenID uint64) {
	tokens := m.userTickets[owner]
	for i, id := range tokens {
		if id == tokenID {
			m.userTickets[owner] = append(tokens[:i], tokens[i+1:]...)
			return
		}
	}
}

func (m *Marketplace) track(operation string, err error) {
	if m.recorder != nil {
		m.recorder.TrackOperation(operation, err)
	}
}

func (m *Marketplace) publish(activity TicketActivity) {
	if m.notifier != nil {
		go m.notifier.PublishTicketActivity(activity)
	}
}
