package models

// Principal is the opaque identity of an actor (buyer, organizer, admin).
// The marketplace never interprets its contents; identity is established by
// the hosting layer before a call reaches the store.
type Principal string

func (p Principal) String() string {
	return string(p)
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleUser      Role = "user"
)
