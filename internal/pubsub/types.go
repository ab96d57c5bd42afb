package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	mu       sync.Mutex
	topics   map[EventType]*pubsub.Topic
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventWeekCreated   EventType = "week-created"
	EventWeekActivated EventType = "week-activated"
	EventWeekFinalized EventType = "week-finalized"
)

// WeekEvent is the payload for week lifecycle events. Downstream consumers
// (notification senders, exporters) resolve details themselves; the event
// only says what happened where.
type WeekEvent struct {
	LeagueID   string `msgpack:"league_id"`
	WeekNumber int    `msgpack:"week_number"`
	State      string `msgpack:"state"`
	// Promotions and Relegations are only set on week-finalized.
	Promotions  int `msgpack:"promotions,omitempty"`
	Relegations int `msgpack:"relegations,omitempty"`
}
