package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Listener receives change notifications from signals it is subscribed to.
type Listener interface {
	// ID returns a globally unique identifier, used to deduplicate
	// subscriptions.
	ID() uint64

	// MarkDirty signals that a subscribed value changed and the listener
	// should re-render.
	MarkDirty()
}

// idCounter generates unique IDs for signals and listeners.
var idCounter atomic.Uint64

// NextID returns a process-unique identifier.
func NextID() uint64 {
	return idCounter.Add(1)
}

// signalBase provides type-erased subscriber management, shared by all
// Signal[T] instantiations.
type signalBase struct {
	id uint64

	subMu sync.RWMutex
	subs  []Listener
}

// subscribe adds a listener, deduplicating by listener ID.
func (s *signalBase) subscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener by ID.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// notifySubscribers marks all subscribers dirty. Subscribers are copied
// before notification so no lock is held during callbacks.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Signal is a reactive value container. Unlike ambient-tracking runtimes,
// subscription here is explicit: a widget subscribes itself once to each
// signal it renders from.
type Signal[T any] struct {
	base signalBase

	mu    sync.RWMutex
	value T

	// equal overrides the default equality check when non-nil.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		base:  signalBase{id: NextID()},
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek is an alias for Get kept for call sites that want to make explicit
// that the read must not imply a dependency.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.base.notifySubscribers()
	}
}

// Subscribe registers a listener for change notifications.
func (s *Signal[T]) Subscribe(l Listener) {
	s.base.subscribe(l)
}

// Unsubscribe removes a previously registered listener.
func (s *Signal[T]) Unsubscribe(l Listener) {
	s.base.unsubscribe(l)
}

// WithEquals returns the signal configured with a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for the common scalar types and falls back to
// reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	default:
		return reflect.DeepEqual(a, b)
	}
}
