package favorites

import "time"

// EventType names a change to a favorites collection.
type EventType string

const (
	EventAdded   EventType = "favorite.added"
	EventRemoved EventType = "favorite.removed"
)

// Event describes one applied add or remove.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
	Kind   Kind      `json:"kind"`
	ItemID string    `json:"item_id"`
	At     time.Time `json:"at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(t EventType, userID string, kind Kind, itemID string) Event {
	return Event{Type: t, UserID: userID, Kind: kind, ItemID: itemID, At: time.Now().UTC()}
}
