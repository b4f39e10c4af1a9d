// Package hostbridge routes out-of-band payloads from the host environment
// to widget instances. The host (browser glue, test harness, live server)
// base64-encodes pasted or dropped files and addresses them to a specific
// instance id; the registry looks up the target and delivers the payload.
// Dispatch to an unknown id is a recoverable no-op: registration is
// asynchronous relative to mount, so payloads can race it.
package hostbridge

import (
	"log/slog"
	"sync"
)

// PayloadTarget is implemented by widget instances that accept
// base64-encoded paste and drop payloads from the host.
type PayloadTarget interface {
	// HandlePastePayload delivers a pasted file as (base64 data, filename).
	HandlePastePayload(data, filename string)

	// HandleDropPayload delivers a dropped file as (base64 data, filename).
	HandleDropPayload(data, filename string)
}

// Registry maps instance ids to payload targets. Multiple widget instances
// may coexist on one page; each registers under its own generated id, so
// there is no global singleton dispatch.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]PayloadTarget

	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]PayloadTarget),
		logger:  slog.Default().With("component", "hostbridge"),
	}
}

// SetLogger replaces the registry's logger.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger != nil {
		r.logger = logger
	}
}

// Register installs a target under the given instance id. Re-registering
// the same id replaces the previous target.
func (r *Registry) Register(id string, t PayloadTarget) {
	if id == "" || t == nil {
		return
	}
	r.mu.Lock()
	r.targets[id] = t
	r.mu.Unlock()
}

// Deregister removes the target for the given instance id. Removing an
// unknown id is a no-op.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	delete(r.targets, id)
	r.mu.Unlock()
}

// Has reports whether a target is registered under the given id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.targets[id]
	return ok
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// DispatchPaste delivers a paste payload to the instance with the given id.
// Returns false when no target is registered; the payload is dropped and
// the host may retry after registration completes.
func (r *Registry) DispatchPaste(id, data, filename string) bool {
	t, ok := r.lookup(id)
	if !ok {
		r.logger.Debug("paste payload dropped, no target", "instance", id)
		return false
	}
	t.HandlePastePayload(data, filename)
	return true
}

// DispatchDrop delivers a drop payload to the instance with the given id.
// Returns false when no target is registered.
func (r *Registry) DispatchDrop(id, data, filename string) bool {
	t, ok := r.lookup(id)
	if !ok {
		r.logger.Debug("drop payload dropped, no target", "instance", id)
		return false
	}
	t.HandleDropPayload(data, filename)
	return true
}

func (r *Registry) lookup(id string) (PayloadTarget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[id]
	return t, ok
}
