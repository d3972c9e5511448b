// Package bus decouples input producers from consumers. It carries two
// independent registries: prioritized event listeners with batched
// delivery, and named actions with exactly one handler each.
//
// A Bus is an explicitly constructed value; there is no package-level
// instance, so multiple editors can coexist without cross-talk.
package bus

import (
	"errors"
	"fmt"
	"slices"

	"github.com/joeycumines/gridedit/internal/schedule"
)

var (
	// ErrDuplicateAction is returned when an action name is registered twice.
	ErrDuplicateAction = errors.New("action already registered")
	// ErrUnknownAction is returned when acting on an unregistered name.
	ErrUnknownAction = errors.New("unknown action")
)

// Result is returned by event handlers.
type Result int

const (
	// Continue lets lower-priority listeners see the event.
	Continue Result = iota
	// Consumed stops propagation for this delivery.
	Consumed
)

// Handler receives an event payload.
type Handler func(payload any) Result

// ActionFunc handles a named action and returns its result.
type ActionFunc func(payload any) (any, error)

type listener struct {
	id       uint64
	priority int
	fn       Handler
}

// Bus dispatches events and actions.
type Bus struct {
	deferrer  schedule.Deferrer
	listeners map[string][]listener
	actions   map[string]ActionFunc
	queued    map[string]any
	order     []string
	scheduled bool
	nextID    uint64
}

// New returns a bus that flushes events through d.
func New(d schedule.Deferrer) *Bus {
	return &Bus{
		deferrer:  d,
		listeners: make(map[string][]listener),
		actions:   make(map[string]ActionFunc),
		queued:    make(map[string]any),
	}
}

// On subscribes fn to events of type typ. Higher priorities run first;
// equal priorities run in subscription order. The returned function
// unsubscribes.
func (b *Bus) On(typ string, fn Handler, priority int) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	ls := append(b.listeners[typ], listener{id: id, priority: priority, fn: fn})
	slices.SortStableFunc(ls, func(x, y listener) int { return y.priority - x.priority })
	b.listeners[typ] = ls
	return func() {
		b.listeners[typ] = slices.DeleteFunc(b.listeners[typ], func(l listener) bool { return l.id == id })
	}
}

// Off removes every listener of typ.
func (b *Bus) Off(typ string) {
	delete(b.listeners, typ)
}

// Emit queues an event. Emits of the same type before the next flush
// collapse into one delivery carrying the latest payload; types flush in
// the order they were first emitted.
func (b *Bus) Emit(typ string, payload any) {
	if _, ok := b.queued[typ]; !ok {
		b.order = append(b.order, typ)
	}
	b.queued[typ] = payload
	if !b.scheduled {
		b.scheduled = true
		b.deferrer.Defer(b.flush)
	}
}

func (b *Bus) flush() {
	b.scheduled = false
	order, queued := b.order, b.queued
	b.order, b.queued = nil, make(map[string]any)
	for _, typ := range order {
		payload := queued[typ]
		for _, l := range slices.Clone(b.listeners[typ]) {
			if l.fn(payload) == Consumed {
				break
			}
		}
	}
}

// RegisterAction binds name to fn.
func (b *Bus) RegisterAction(name string, fn ActionFunc) error {
	if _, ok := b.actions[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, name)
	}
	b.actions[name] = fn
	return nil
}

// MustRegisterAction is RegisterAction that panics on a duplicate, for
// setup code where a clash is a programming error.
func (b *Bus) MustRegisterAction(name string, fn ActionFunc) {
	if err := b.RegisterAction(name, fn); err != nil {
		panic(err)
	}
}

// Act invokes the handler registered for name synchronously.
func (b *Bus) Act(name string, payload any) (any, error) {
	fn, ok := b.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return fn(payload)
}

// HasAction reports whether name is registered.
func (b *Bus) HasAction(name string) bool {
	_, ok := b.actions[name]
	return ok
}

// Actions returns the registered action names, sorted.
func (b *Bus) Actions() []string {
	names := make([]string, 0, len(b.actions))
	for name := range b.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
