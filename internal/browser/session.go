// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formprobe/internal/config"
	"github.com/xkilldash9x/formprobe/internal/forms"
)

// closeGracePeriod bounds how long Close waits for the browser process to exit.
const closeGracePeriod = 5 * time.Second

var (
	// ErrNotOpen is returned by operations on a session that was never opened or is closed.
	ErrNotOpen = errors.New("browser session is not open")
	// ErrAlreadyOpen is returned when Open is called a second time.
	ErrAlreadyOpen = errors.New("browser session already opened")
)

// Session owns one browser process and its single tab for the length of a run.
type Session struct {
	id     string
	cfg    config.BrowserConfig
	logger *zap.Logger

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opened      bool
	closed      bool

	closeOnce sync.Once
}

// New creates an unopened session.
func New(cfg config.BrowserConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = config.DefaultWaitTimeout
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	id := uuid.New().String()
	return &Session{
		id:     id,
		cfg:    cfg,
		logger: logger.Named("browser").With(zap.String("session_id", id)),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Open starts the browser, navigates to url and waits for the document body.
// A session can be opened once. Close must be called even when Open fails.
func (s *Session) Open(ctx context.Context, url string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.opened {
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.opened = true

	// The browser lives as long as the session, not as long as ctx.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(s.cfg)...)
	sugar := s.logger.Sugar()
	ctxOpts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Debugf),
	}
	if s.cfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(sugar.Debugf))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)
	s.ctx, s.cancel, s.allocCancel = tabCtx, tabCancel, allocCancel
	s.mu.Unlock()

	s.logger.Info("Starting browser.", zap.Bool("headless", s.cfg.Headless))

	// The first Run allocates the browser; it must not carry a deadline, so
	// ctx is raced against it instead. Close reaps a browser still starting.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("browser start interrupted: %w", ctx.Err())
	}

	s.logger.Info("Navigating.", zap.String("url", url))
	navCtx, navCancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer navCancel()
	if err := s.RunActions(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, s.cfg.WaitTimeout)
	defer waitCancel()
	if err := s.RunActions(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("page body not ready within %s: %w", s.cfg.WaitTimeout, err)
	}
	return nil
}

// Close shuts the browser down. It runs its body exactly once, is safe on a
// session that failed to open or never opened, and never reports an error:
// failures are logged at debug level and discarded.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Debug("Recovered while closing browser session.", zap.Any("panic", r))
			}
		}()

		s.mu.Lock()
		s.closed = true
		tabCtx, cancel, allocCancel := s.ctx, s.cancel, s.allocCancel
		s.mu.Unlock()

		if tabCtx == nil {
			return
		}
		s.logger.Debug("Closing browser session.")

		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(tabCtx) }()

		timer := time.NewTimer(closeGracePeriod)
		defer timer.Stop()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Debug("Browser did not close cleanly.", zap.Error(err))
			}
		case <-timer.C:
			s.logger.Debug("Timed out waiting for browser to close.")
		case <-ctx.Done():
			s.logger.Debug("Close interrupted.", zap.Error(ctx.Err()))
		}

		cancel()
		allocCancel()
	})
}

// RunActions runs chromedp actions bounded by both the session lifetime and ctx.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	s.mu.Lock()
	sessionCtx, closed := s.ctx, s.closed
	s.mu.Unlock()
	if sessionCtx == nil || closed {
		return ErrNotOpen
	}

	runCtx, cancel := CombineContext(sessionCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Location returns the URL currently loaded in the tab.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.RunActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// Page exposes the loaded document to the form exerciser.
func (s *Session) Page() forms.Page {
	return &page{s: s}
}
