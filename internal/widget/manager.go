package widget

import (
	"context"
	"errors"
	"sync"
	"time"
)

// EventKind discriminates widget events.
type EventKind int

const (
	// Verified carries the challenge token; fires once per completed challenge.
	Verified EventKind = iota
	// Failed reports a render or challenge failure.
	Failed
	// Expired means a previously issued token timed out before use.
	Expired
)

// Event is delivered on a handle's single-consumer channel.
type Event struct {
	Kind   EventKind
	Token  string
	Reason string
}

// Driver renders the interactive challenge and emits events until stopped.
// In production this is the browser-side Turnstile widget; tests use fakes.
type Driver interface {
	// Render starts a challenge for siteKey and returns a teardown func.
	Render(ctx context.Context, siteKey string, emit func(Event)) (stop func(), err error)
}

var ErrRenderFailed = errors.New("widget render failed")

const renderRetryDelay = 2 * time.Second

// Handle is one live widget instance bound to a container.
type Handle struct {
	containerID string

	mu     sync.Mutex
	events chan Event
	closed bool
	stop   func()
}

// Events is the single-consumer stream of widget events. Closed on Remove.
func (h *Handle) Events() <-chan Event { return h.events }

func (h *Handle) emit(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		// Events after teardown must not reach a discarded context.
		return
	}
	select {
	case h.events <- ev:
	default:
		// Consumer fell behind; drop rather than block the driver.
	}
}

func (h *Handle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.stop != nil {
		h.stop()
	}
	close(h.events)
}

// Manager owns widget instances, at most one per container.
type Manager struct {
	Loader *Loader
	Driver Driver

	// RetryDelay overrides the fixed re-render delay; zero means default.
	RetryDelay time.Duration

	mu      sync.Mutex
	widgets map[string]*Handle
}

func NewManager(loader *Loader, driver Driver) *Manager {
	return &Manager{
		Loader:  loader,
		Driver:  driver,
		widgets: make(map[string]*Handle),
	}
}

// Render ensures the script and site key are resolved, tears down any widget
// previously bound to containerID, and starts a fresh one. On driver failure
// it retries exactly once after a fixed delay, then fails with
// ErrRenderFailed: the caller should surface a user-facing retry action
// rather than loop.
func (m *Manager) Render(ctx context.Context, containerID string) (*Handle, error) {
	if _, err := m.Loader.EnsureScript(ctx); err != nil {
		return nil, err
	}
	siteKey, err := m.Loader.SiteKey(ctx)
	if err != nil && siteKey == "" {
		return nil, err
	}

	m.mu.Lock()
	if prev, ok := m.widgets[containerID]; ok {
		prev.close()
		delete(m.widgets, containerID)
	}
	h := &Handle{
		containerID: containerID,
		events:      make(chan Event, 8),
	}
	m.widgets[containerID] = h
	m.mu.Unlock()

	stop, err := m.Driver.Render(ctx, siteKey, h.emit)
	if err != nil {
		delay := m.RetryDelay
		if delay <= 0 {
			delay = renderRetryDelay
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.Remove(h)
			return nil, ctx.Err()
		}
		stop, err = m.Driver.Render(ctx, siteKey, h.emit)
		if err != nil {
			m.Remove(h)
			return nil, errors.Join(ErrRenderFailed, err)
		}
	}

	h.mu.Lock()
	if h.closed {
		// A concurrent Render for the same container superseded us.
		h.mu.Unlock()
		stop()
		return nil, ErrRenderFailed
	}
	h.stop = stop
	h.mu.Unlock()
	return h, nil
}

// Remove tears down a widget on any exit path. Idempotent.
func (m *Manager) Remove(h *Handle) {
	if h == nil {
		return
	}
	m.mu.Lock()
	if cur, ok := m.widgets[h.containerID]; ok && cur == h {
		delete(m.widgets, h.containerID)
	}
	m.mu.Unlock()
	h.close()
}
