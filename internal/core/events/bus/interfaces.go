package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus.
//
// - Type-based fan-out: handlers subscribe by Event.Type(); an empty type
//   subscribes to every event of the topic.
// - Topics scope delivery; the default topic is "". Spaces publish into a
//   topic named after themselves.
// - Delivery is synchronous in the publisher goroutine. Handler errors are
//   joined and returned from Publish.
type EventBus interface {
	Publish(event Event) error
	PublishToTopic(topic string, event Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	Unsubscribe(Subscription) error

	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked per delivered event. Handlers must not publish on
// the same bus from inside a space operation they observe.
type EventHandler func(event Event) error

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusMetrics are cumulative counters.
type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
