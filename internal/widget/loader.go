// Package widget models the client-side lifecycle of the Turnstile challenge
// widget: one script load per process, one shared site-key fetch, and
// per-container widget instances that report events on a channel.
package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultScriptURL is the upstream challenge script.
	DefaultScriptURL = "https://challenges.cloudflare.com/turnstile/v0/api.js"

	// defaultSiteKey keeps the widget rendering when the configuration
	// endpoint is unreachable. Site keys are public by design.
	defaultSiteKey = "1x00000000000000000000AA"
)

var (
	ErrScriptLoad  = errors.New("failed to load turnstile script")
	ErrConfigFetch = errors.New("failed to fetch turnstile site key")
)

// scriptLoad is a shared future: one fetch, many waiters.
type scriptLoad struct {
	done   chan struct{}
	script []byte
	err    error
}

// Loader guarantees the challenge script is fetched at most once per process
// and the site key is resolved once, shared across concurrent callers.
type Loader struct {
	ScriptURL string
	ConfigURL string
	client    *http.Client

	mu      sync.Mutex
	load    *scriptLoad // nil until first EnsureScript call
	keyOnce singleflight.Group
	siteKey string
	haveKey bool
}

func NewLoader(scriptURL, configURL string) *Loader {
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}
	return &Loader{
		ScriptURL: scriptURL,
		ConfigURL: configURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// EnsureScript returns the challenge script payload, fetching it on the first
// call. Concurrent callers observe the single in-flight fetch. A failed load
// is not sticky: the next call starts a fresh fetch, so callers may retry
// after a backoff.
func (l *Loader) EnsureScript(ctx context.Context) ([]byte, error) {
	l.mu.Lock()
	load := l.load
	if load == nil || (isDone(load.done) && load.err != nil) {
		load = &scriptLoad{done: make(chan struct{})}
		l.load = load
		l.mu.Unlock()

		load.script, load.err = l.fetchScript(ctx)
		close(load.done)
		return load.script, load.err
	}
	l.mu.Unlock()

	select {
	case <-load.done:
		return load.script, load.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func isDone(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (l *Loader) fetchScript(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.ScriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptLoad, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptLoad, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrScriptLoad, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptLoad, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty script", ErrScriptLoad)
	}
	return body, nil
}

// SiteKey resolves the public site key from the configuration endpoint,
// fetching it at most once; concurrent callers share the in-flight request.
// On fetch failure it degrades to the compiled-in default key and reports
// ErrConfigFetch alongside it, so the feature keeps working.
func (l *Loader) SiteKey(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.haveKey {
		key := l.siteKey
		l.mu.Unlock()
		return key, nil
	}
	l.mu.Unlock()

	v, err, _ := l.keyOnce.Do("sitekey", func() (interface{}, error) {
		key, err := l.fetchSiteKey(ctx)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.siteKey = key
		l.haveKey = true
		l.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return defaultSiteKey, fmt.Errorf("%w: %v", ErrConfigFetch, err)
	}
	return v.(string), nil
}

func (l *Loader) fetchSiteKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.ConfigURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("config endpoint status %d", resp.StatusCode)
	}
	var out struct {
		SiteKey string `json:"siteKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.SiteKey == "" {
		return "", errors.New("config endpoint returned empty site key")
	}
	return out.SiteKey, nil
}
