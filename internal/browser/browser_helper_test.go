// internal/browser/browser_helper_test.go
package browser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/formprobe/internal/browser"
	"github.com/xkilldash9x/formprobe/internal/config"
)

// maxTestConcurrency limits the number of concurrent browser processes.
const maxTestConcurrency = 2

const (
	defaultBrowserTestTimeout = 60 * time.Second
	semaphoreAcquireTimeout   = 30 * time.Second
	closeTimeout              = 10 * time.Second
)

var (
	processSemaphore     *semaphore.Weighted
	processSemaphoreOnce sync.Once
)

func getProcessSemaphore() *semaphore.Weighted {
	processSemaphoreOnce.Do(func() {
		concurrency := int64(runtime.GOMAXPROCS(0))
		if concurrency > maxTestConcurrency {
			concurrency = maxTestConcurrency
		}
		processSemaphore = semaphore.NewWeighted(concurrency)
	})
	return processSemaphore
}

// findChrome returns a browser binary, honoring FORMPROBE_CHROME first.
func findChrome() (string, bool) {
	if p := os.Getenv("FORMPROBE_CHROME"); p != "" {
		return p, true
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, true
		}
	}
	return "", false
}

// testFixture is one browser session opened against a local test page.
type testFixture struct {
	Session *browser.Session
	Logger  *zap.Logger
	Config  config.BrowserConfig
	Ctx     context.Context
}

func testBrowserConfig(execPath string) config.BrowserConfig {
	return config.BrowserConfig{
		Headless:          true,
		DisableGPU:        true,
		NoSandbox:         true,
		ExecPath:          execPath,
		Viewport:          config.Viewport{Width: 1280, Height: 900},
		NavigationTimeout: 20 * time.Second,
		WaitTimeout:       5 * time.Second,
	}
}

// requireChrome skips the test in -short mode or when no browser is installed.
func requireChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser integration test in -short mode")
	}
	path, ok := findChrome()
	if !ok {
		t.Skip("no Chrome or Chromium binary found; set FORMPROBE_CHROME to run browser tests")
	}
	return path
}

// serveHTML starts a server answering every request with body.
func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestFixture opens a session on url. The session is closed on cleanup.
func newTestFixture(t *testing.T, url string) *testFixture {
	t.Helper()
	execPath := requireChrome(t)

	ctx, cancel := context.WithTimeout(context.Background(), defaultBrowserTestTimeout)
	t.Cleanup(cancel)

	sem := getProcessSemaphore()
	acquireCtx, acquireCancel := context.WithTimeout(ctx, semaphoreAcquireTimeout)
	defer acquireCancel()
	require.NoError(t, sem.Acquire(acquireCtx, 1), "timed out waiting for a browser slot")
	t.Cleanup(func() { sem.Release(1) })

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	cfg := testBrowserConfig(execPath)
	s := browser.New(cfg, logger)
	t.Cleanup(func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
		defer closeCancel()
		s.Close(closeCtx)
	})

	require.NoError(t, s.Open(ctx, url))
	return &testFixture{Session: s, Logger: logger, Config: cfg, Ctx: ctx}
}
