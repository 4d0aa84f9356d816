package widget

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fakeDriver fails the first failures renders, then succeeds and captures the
// emit callback so tests can drive events.
type fakeDriver struct {
	failures int32
	renders  int32
	stops    int32
	emit     func(Event)
	siteKey  string
}

func (d *fakeDriver) Render(_ context.Context, siteKey string, emit func(Event)) (func(), error) {
	atomic.AddInt32(&d.renders, 1)
	if atomic.AddInt32(&d.failures, -1) >= 0 {
		return nil, errors.New("container not found")
	}
	d.siteKey = siteKey
	d.emit = emit
	return func() { atomic.AddInt32(&d.stops, 1) }, nil
}

func newTestManager(t *testing.T, driver Driver) *Manager {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/config":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"siteKey":"site-key-1"}`))
		default:
			w.Write([]byte("// turnstile script"))
		}
	}))
	t.Cleanup(srv.Close)

	m := NewManager(NewLoader(srv.URL+"/script", srv.URL+"/config"), driver)
	m.RetryDelay = time.Millisecond
	return m
}

func TestManagerRenderDeliversEvents(t *testing.T) {
	driver := &fakeDriver{}
	m := newTestManager(t, driver)

	h, err := m.Render(context.Background(), "container-1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer m.Remove(h)

	if driver.siteKey != "site-key-1" {
		t.Errorf("driver site key = %q", driver.siteKey)
	}

	driver.emit(Event{Kind: Verified, Token: "tok-1"})
	select {
	case ev := <-h.Events():
		if ev.Kind != Verified || ev.Token != "tok-1" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	driver.emit(Event{Kind: Expired, Reason: "token timed out"})
	select {
	case ev := <-h.Events():
		if ev.Kind != Expired {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no expiry event delivered")
	}
}

func TestManagerRenderRetriesOnce(t *testing.T) {
	driver := &fakeDriver{failures: 1}
	m := newTestManager(t, driver)

	h, err := m.Render(context.Background(), "container-1")
	if err != nil {
		t.Fatalf("Render should succeed on the retry: %v", err)
	}
	defer m.Remove(h)

	if got := atomic.LoadInt32(&driver.renders); got != 2 {
		t.Errorf("render attempts = %d, want 2", got)
	}
}

func TestManagerRenderFailsAfterSecondAttempt(t *testing.T) {
	driver := &fakeDriver{failures: 2}
	m := newTestManager(t, driver)

	_, err := m.Render(context.Background(), "container-1")
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("err = %v, want ErrRenderFailed", err)
	}
	if got := atomic.LoadInt32(&driver.renders); got != 2 {
		t.Errorf("render attempts = %d, want exactly 2 (no retry loop)", got)
	}
}

func TestManagerRerenderTearsDownPrevious(t *testing.T) {
	driver := &fakeDriver{}
	m := newTestManager(t, driver)

	first, err := m.Render(context.Background(), "container-1")
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}

	second, err := m.Render(context.Background(), "container-1")
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	defer m.Remove(second)

	if atomic.LoadInt32(&driver.stops) != 1 {
		t.Error("previous widget should be torn down on re-render")
	}
	select {
	case _, open := <-first.Events():
		if open {
			t.Error("superseded handle should have a closed event channel")
		}
	case <-time.After(time.Second):
		t.Fatal("superseded handle's channel never closed")
	}
}

func TestManagerRemoveIsIdempotent(t *testing.T) {
	driver := &fakeDriver{}
	m := newTestManager(t, driver)

	h, err := m.Render(context.Background(), "container-1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	m.Remove(h)
	m.Remove(h)
	m.Remove(nil)

	if atomic.LoadInt32(&driver.stops) != 1 {
		t.Errorf("stops = %d, want 1", driver.stops)
	}
	if _, open := <-h.Events(); open {
		t.Error("events channel should be closed after Remove")
	}

	// Events arriving after teardown are dropped, not delivered or panicking.
	driver.emit(Event{Kind: Verified, Token: "late"})
}
