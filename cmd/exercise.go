// File: cmd/exercise.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formprobe/internal/browser"
	"github.com/xkilldash9x/formprobe/internal/config"
	"github.com/xkilldash9x/formprobe/internal/forms"
	"github.com/xkilldash9x/formprobe/internal/observability"
)

const sessionCloseTimeout = 15 * time.Second

// browserSession is the part of browser.Session the exercise command drives.
type browserSession interface {
	ID() string
	Open(ctx context.Context, url string) error
	Close(ctx context.Context)
	Page() forms.Page
}

// newSession is a variable so tests can substitute a fake browser.
var newSession = func(cfg config.BrowserConfig, logger *zap.Logger) browserSession {
	return browser.New(cfg, logger)
}

func newExerciseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise [url]",
		Short: "Fill in every form on a page without submitting it",
		Long: `Opens the page in a browser, finds every form and applies a type-appropriate
synthetic value to each input, select and textarea. The run fails only when
the page has no forms.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if len(args) == 1 {
				cfg.SetExerciseTargetURL(args[0])
			}
			return runExercise(cmd.Context(), cfg, cmd.OutOrStdout(), observability.GetLogger())
		},
	}

	flags := cmd.Flags()
	flags.Bool("headless", true, "run the browser without a window")
	flags.Duration("timeout", config.DefaultWaitTimeout, "wait timeout for page readiness and each field action")
	flags.Bool("submit", false, "click each form's submit control after filling it, then navigate back")
	flags.Float64("rate", 0, "maximum field actions per second (0 = unlimited)")
	flags.String("report", "", `write a JSON report to this path ("-" for stdout)`)

	// Flags override config file and environment values.
	bindings := map[string]string{
		"browser.headless":            "headless",
		"browser.wait_timeout":        "timeout",
		"exercise.submit":             "submit",
		"exercise.actions_per_second": "rate",
		"exercise.report":             "report",
	}
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", name, err))
		}
	}
	return cmd
}

// runExercise opens one session, exercises every form and always closes the session.
func runExercise(ctx context.Context, cfg config.Interface, out io.Writer, logger *zap.Logger) error {
	ex := cfg.Exercise()
	target := normalizeURL(ex.TargetURL)

	session := newSession(cfg.Browser(), logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), sessionCloseTimeout)
		defer cancel()
		session.Close(closeCtx)
	}()

	logger.Info("Opening target.", zap.String("url", target), zap.String("session_id", session.ID()))
	if err := session.Open(ctx, target); err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}

	exerciser := forms.NewExerciser(session.Page(), forms.Options{
		WaitTimeout:      cfg.Browser().WaitTimeout,
		Submit:           ex.Submit,
		ActionsPerSecond: ex.ActionsPerSecond,
	}, logger)

	report, runErr := exerciser.Run(ctx)
	if report != nil {
		report.URL = target
		if err := writeReport(ex.Report, out, report); err != nil {
			logger.Warn("Could not write report.", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if ex.Report != "-" {
		fmt.Fprintf(out, "Exercised %d forms (%d fields) on %s. Run ID: %s\n",
			len(report.Forms), report.FieldCount(), target, report.RunID)
	}
	return nil
}

// writeReport renders report to dest: nothing for "", stdout for "-", else a file.
func writeReport(dest string, stdout io.Writer, report *forms.Report) error {
	switch dest {
	case "":
		return nil
	case "-":
		return report.WriteJSON(stdout)
	}

	path, err := homedir.Expand(dest)
	if err != nil {
		return fmt.Errorf("expanding report path %q: %w", dest, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := report.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// normalizeURL defaults a bare host to https.
func normalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if strings.Contains(u, "://") || strings.HasPrefix(u, "about:") || strings.HasPrefix(u, "data:") {
		return u
	}
	return "https://" + u
}
