package browser_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/manga-crawler-agents/internal/browser"
	"github.com/maltedev/manga-crawler-agents/internal/browser/browsertest"
)

func newSession(t *testing.T, site *browsertest.Site, timeout time.Duration) *browser.Session {
	t.Helper()
	base, err := url.Parse("https://example.test")
	require.NoError(t, err)

	opts := *browser.DefaultOptions()
	opts.Timeout = timeout
	opts.UserAgent = "TestAgent/1.0"
	return browser.NewSession(base, opts, site.Launcher(), nil)
}

func TestAcquireBrowserLaunchesOnce(t *testing.T) {
	site := browsertest.NewSite(nil)
	site.LaunchDelay = 50 * time.Millisecond
	s := newSession(t, site, time.Second)
	defer s.Dispose()

	var wg sync.WaitGroup
	engines := make([]browser.Engine, 16)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.AcquireBrowser(context.Background())
			assert.NoError(t, err)
			engines[i] = e
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, site.Launches())
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}

	again, err := s.AcquireBrowser(context.Background())
	require.NoError(t, err)
	assert.Same(t, engines[0], again)
	assert.Equal(t, 1, site.Launches())
}

func TestAcquireBrowserLaunchFailureIsNotCached(t *testing.T) {
	site := browsertest.NewSite(nil)
	site.LaunchErr = errors.New("chromium missing")
	s := newSession(t, site, time.Second)
	defer s.Dispose()

	_, err := s.AcquireBrowser(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chromium missing")

	site.LaunchErr = nil
	_, err = s.AcquireBrowser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, site.Launches())
}

func TestAcquireBrowserCancelledWhileWaiting(t *testing.T) {
	site := browsertest.NewSite(nil)
	site.LaunchDelay = 200 * time.Millisecond
	s := newSession(t, site, time.Second)
	defer s.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.AcquireBrowser(ctx)
	assert.ErrorIs(t, err, browser.ErrCancelled)
}

func TestDisposeWithoutUseIsNoop(t *testing.T) {
	site := browsertest.NewSite(nil)
	s := newSession(t, site, time.Second)

	s.Dispose()
	s.Dispose()

	assert.Equal(t, 0, site.Launches())
	assert.Equal(t, 0, site.Shutdowns())
}

func TestDisposeClosesBrowserOnce(t *testing.T) {
	site := browsertest.NewSite(nil)
	s := newSession(t, site, time.Second)

	_, err := s.AcquireBrowser(context.Background())
	require.NoError(t, err)

	s.Dispose()
	s.Dispose()
	assert.Equal(t, 1, site.Shutdowns())

	_, err = s.AcquireBrowser(context.Background())
	assert.ErrorIs(t, err, browser.ErrSessionClosed)
}

func TestDisposeSwallowsCloseError(t *testing.T) {
	site := browsertest.NewSite(nil)
	site.CloseErr = errors.New("browser process already gone")
	s := newSession(t, site, time.Second)

	_, err := s.AcquireBrowser(context.Background())
	require.NoError(t, err)

	assert.NotPanics(t, s.Dispose)
	assert.Equal(t, 1, site.Shutdowns())
}

func TestDisposeDuringLaunchClosesLateBrowser(t *testing.T) {
	site := browsertest.NewSite(nil)
	site.LaunchDelay = 100 * time.Millisecond
	s := newSession(t, site, time.Second)

	errc := make(chan error, 1)
	go func() {
		_, err := s.AcquireBrowser(context.Background())
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Dispose()

	assert.ErrorIs(t, <-errc, browser.ErrSessionClosed)
	assert.Equal(t, 1, site.Launches())
	assert.Equal(t, 1, site.Shutdowns())
}

func TestAcquireHTTPClient(t *testing.T) {
	site := browsertest.NewSite(nil)
	s := newSession(t, site, 5*time.Second)

	c1, err := s.AcquireHTTPClient()
	require.NoError(t, err)
	c2, err := s.AcquireHTTPClient()
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, "https://example.test", c1.BaseURL().String())
	assert.Equal(t, 5*time.Second, c1.Timeout())
	assert.Equal(t, "TestAgent/1.0", c1.UserAgent())
	assert.Equal(t, 0, site.Launches(), "http client does not need the browser")

	s.Dispose()
	_, err = s.AcquireHTTPClient()
	assert.ErrorIs(t, err, browser.ErrSessionClosed)
}
