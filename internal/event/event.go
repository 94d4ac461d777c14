// Package event is the typed publish/subscribe bus that connects the client
// components with the front-end.
//
// Publishers and the events they emit:
//
//	api.Client          Progress
//	resolver.Resolver   Toast, AuthRequired, ListChanged
//	sorter.Controller   Toast, AuthRequired, ListChanged
//	search.Controller   Toast, AuthRequired
//
// Subscribers are registered by the front-end (cmd/bmr) and by the identity
// cache, which drops the cached user on AuthRequired.
package event

import (
	"sync"

	"go.uber.org/zap"
)

// Type identifies an event.
type Type int

const (
	Progress Type = iota
	Toast
	AuthRequired
	ListChanged
)

func (t Type) String() string {
	switch t {
	case Progress:
		return "progress"
	case Toast:
		return "toast"
	case AuthRequired:
		return "auth-required"
	case ListChanged:
		return "list-changed"
	default:
		return "unknown"
	}
}

// Event is implemented by every payload published on the bus.
type Event interface {
	Type() Type
}

// ProgressEvent toggles the global busy indicator.
type ProgressEvent struct {
	Busy bool
}

func (ProgressEvent) Type() Type { return Progress }

// Level is the severity of a toast.
type Level int

const (
	Info Level = iota
	Success
	Error
)

// ToastEvent is a transient message for the user.
type ToastEvent struct {
	Level Level
	Text  string
}

func (ToastEvent) Type() Type { return Toast }

// AuthRequiredEvent asks the front-end to drop identity state and send the
// user to the no-access page.
type AuthRequiredEvent struct {
	Redirect string
	Err      error
}

func (AuthRequiredEvent) Type() Type { return AuthRequired }

// ListChangedEvent announces the new item order of a folder view.
type ListChangedEvent struct {
	Path string
	IDs  []string
}

func (ListChangedEvent) Type() Type { return ListChanged }

// Handler receives published events.
type Handler func(Event)

// Bus dispatches events to subscribers synchronously, in subscription order.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
	logger      *zap.Logger
}

// NewBus creates a Bus. A nil logger disables logging.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subscribers: make(map[Type][]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler for events of type t.
func (b *Bus) Subscribe(t Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], handler)
}

// Publish delivers e to all subscribers of its type. A panicking handler is
// logged and does not stop delivery to the others. Publishing on a nil Bus is
// a no-op.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Type()]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in event handler",
				zap.Stringer("event", e.Type()),
				zap.Any("panic", r))
		}
	}()
	h(e)
}

// Busy publishes a progress event.
func (b *Bus) Busy(busy bool) {
	b.Publish(ProgressEvent{Busy: busy})
}

// Notify publishes a toast.
func (b *Bus) Notify(level Level, text string) {
	b.Publish(ToastEvent{Level: level, Text: text})
}
