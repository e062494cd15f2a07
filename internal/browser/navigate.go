package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrNavigationTimeout = errors.New("navigation timeout")

type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s timed out after %s", e.URL, e.Timeout)
}

func (e *NavigationTimeoutError) Is(target error) bool {
	return target == ErrNavigationTimeout
}

// Document is the rendered markup of a page and the URL it ended up at.
type Document struct {
	URL  string
	HTML string
}

// Navigate opens a fresh tab, loads target, waits for network idle and
// returns the rendered markup. The session timeout is a hard bound. The tab
// is closed on every path. There is no retry.
func (s *Session) Navigate(ctx context.Context, target string) (*Document, error) {
	engine, err := s.AcquireBrowser(ctx)
	if err != nil {
		return nil, err
	}

	tab, err := engine.NewTab(s.opts.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	var once sync.Once
	closeTab := func() {
		once.Do(func() {
			if err := tab.Close(); err != nil {
				s.logger.Debug("failed to close tab", "url", target, "error", err)
			}
		})
	}
	defer closeTab()

	navCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- tab.Goto(target, s.opts.Timeout)
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, ErrGotoTimeout) {
				s.logger.Warn("navigation timed out", "url", target, "timeout", s.opts.Timeout)
				return nil, &NavigationTimeoutError{URL: target, Timeout: s.opts.Timeout}
			}
			s.logger.Warn("navigation failed", "url", target, "error", err)
			return nil, fmt.Errorf("failed to navigate to %s: %w", target, err)
		}
	case <-navCtx.Done():
		// closing the tab aborts the in-flight goto
		closeTab()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCancelled, target, ctx.Err())
		}
		s.logger.Warn("navigation timed out", "url", target, "timeout", s.opts.Timeout)
		return nil, &NavigationTimeoutError{URL: target, Timeout: s.opts.Timeout}
	}

	html, err := tab.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	finalURL := tab.URL()
	if finalURL == "" || finalURL == "about:blank" {
		finalURL = target
	}

	s.logger.Debug("navigated", "url", target, "final_url", finalURL, "elapsed", time.Since(start), "bytes", len(html))

	return &Document{URL: finalURL, HTML: html}, nil
}
