// Package browsertest provides an in-memory browser.Engine serving fixed
// markup, for tests that must not start Chromium.
package browsertest

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maltedev/manga-crawler-agents/internal/browser"
)

const NotFoundHTML = `<html><head><title>Not Found</title></head><body><h1>404</h1></body></html>`

var ErrTabClosed = errors.New("target closed")

// Site is a fake web site plus the browser that renders it.
type Site struct {
	mu        sync.Mutex
	pages     map[string]string
	redirects map[string]string
	visited   []string
	agents    []string

	// Hang makes Goto block until the tab is closed.
	Hang bool
	// GotoErr is returned by every Goto when set.
	GotoErr error
	// LaunchErr fails every launch when set.
	LaunchErr error
	// LaunchDelay slows launches down so that callers overlap.
	LaunchDelay time.Duration
	// CloseErr is returned by Engine.Close.
	CloseErr error

	launches   atomic.Int32
	engineStop atomic.Int32
	tabsOpened atomic.Int32
	tabsClosed atomic.Int32
}

func NewSite(pages map[string]string) *Site {
	if pages == nil {
		pages = make(map[string]string)
	}
	return &Site{pages: pages, redirects: make(map[string]string)}
}

func (s *Site) Serve(url, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = html
}

// Redirect makes navigation to from end on to.
func (s *Site) Redirect(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects[from] = to
}

func (s *Site) Launcher() browser.Launcher {
	return func(opts browser.Options) (browser.Engine, error) {
		if s.LaunchDelay > 0 {
			time.Sleep(s.LaunchDelay)
		}
		s.launches.Add(1)
		if s.LaunchErr != nil {
			return nil, s.LaunchErr
		}
		return &engine{site: s}, nil
	}
}

func (s *Site) Launches() int   { return int(s.launches.Load()) }
func (s *Site) Shutdowns() int  { return int(s.engineStop.Load()) }
func (s *Site) TabsOpened() int { return int(s.tabsOpened.Load()) }
func (s *Site) TabsClosed() int { return int(s.tabsClosed.Load()) }

func (s *Site) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

func (s *Site) UserAgents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.agents...)
}

type engine struct {
	site *Site
}

func (e *engine) NewTab(userAgent string) (browser.Tab, error) {
	e.site.mu.Lock()
	e.site.agents = append(e.site.agents, userAgent)
	e.site.mu.Unlock()

	e.site.tabsOpened.Add(1)
	return &tab{site: e.site, closed: make(chan struct{})}, nil
}

func (e *engine) Close() error {
	e.site.engineStop.Add(1)
	return e.site.CloseErr
}

type tab struct {
	site      *Site
	url       string
	html      string
	closeOnce sync.Once
	closed    chan struct{}
}

func (t *tab) Goto(url string, timeout time.Duration) error {
	t.site.mu.Lock()
	t.site.visited = append(t.site.visited, url)
	final := url
	if to, ok := t.site.redirects[url]; ok {
		final = to
	}
	html, ok := t.site.pages[final]
	t.site.mu.Unlock()

	if t.site.Hang {
		<-t.closed
		return ErrTabClosed
	}
	if t.site.GotoErr != nil {
		return t.site.GotoErr
	}

	if !ok {
		html = NotFoundHTML
	}
	t.url, t.html = final, html
	return nil
}

func (t *tab) Content() (string, error) {
	select {
	case <-t.closed:
		return "", ErrTabClosed
	default:
	}
	return t.html, nil
}

func (t *tab) URL() string {
	return t.url
}

func (t *tab) Close() error {
	t.closeOnce.Do(func() {
		t.site.tabsClosed.Add(1)
		close(t.closed)
	})
	return nil
}
