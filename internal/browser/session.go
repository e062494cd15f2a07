package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrCancelled     = errors.New("navigation cancelled")
)

// Session owns one lazily launched browser and one HTTP client for an agent.
// Both are created on first use and released by Dispose.
type Session struct {
	id      string
	baseURL *url.URL
	opts    Options
	launch  Launcher
	logger  *slog.Logger

	group     singleflight.Group
	launching sync.WaitGroup

	mu     sync.Mutex
	engine Engine
	client *HTTPClient
	closed bool
}

// NewSession prepares a session; nothing is launched until first use. A nil
// launcher means playwright.
func NewSession(baseURL *url.URL, opts Options, launch Launcher, logger *slog.Logger) *Session {
	if launch == nil {
		launch = Launch
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}

	id := uuid.New().String()
	return &Session{
		id:      id,
		baseURL: baseURL,
		opts:    opts,
		launch:  launch,
		logger:  logger.With("component", "session", "session_id", id),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Timeout() time.Duration { return s.opts.Timeout }

func (s *Session) UserAgent() string { return s.opts.UserAgent }

// AcquireBrowser returns the shared browser, launching it on first call.
// Concurrent first calls share a single launch.
func (s *Session) AcquireBrowser(ctx context.Context) (Engine, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.engine != nil {
		engine := s.engine
		s.mu.Unlock()
		return engine, nil
	}
	s.mu.Unlock()

	ch := s.group.DoChan("browser", s.launchEngine)

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for browser launch: %w", ErrCancelled, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	}
}

func (s *Session) launchEngine() (interface{}, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.engine != nil {
		engine := s.engine
		s.mu.Unlock()
		return engine, nil
	}
	s.launching.Add(1)
	s.mu.Unlock()
	defer s.launching.Done()

	start := time.Now()
	engine, err := s.launch(s.opts)
	if err != nil {
		s.logger.Warn("browser launch failed", "error", err, "elapsed", time.Since(start))
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.closeEngine(engine)
		return nil, ErrSessionClosed
	}
	s.engine = engine
	s.mu.Unlock()

	s.logger.Info("browser launched", "headless", s.opts.Headless, "elapsed", time.Since(start))
	return engine, nil
}

// AcquireHTTPClient returns the shared HTTP client, creating it on first call.
func (s *Session) AcquireHTTPClient() (*HTTPClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.client == nil {
		s.client = NewHTTPClient(s.baseURL, s.opts.Timeout, s.opts.UserAgent)
	}
	return s.client, nil
}

// Dispose releases whatever was created and waits for the browser to shut
// down. It never fails: close errors are logged. Repeated calls are no-ops.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	engine, client := s.engine, s.client
	s.engine, s.client = nil, nil
	s.mu.Unlock()

	if client != nil {
		client.Close()
	}
	if engine != nil {
		s.closeEngine(engine)
	}

	// a launch that was already running closes its own engine
	s.launching.Wait()
}

func (s *Session) closeEngine(engine Engine) {
	if err := engine.Close(); err != nil {
		s.logger.Error("failed to dispose browser", "error", err)
		return
	}
	s.logger.Info("browser disposed")
}
