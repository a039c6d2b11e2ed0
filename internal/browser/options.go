// internal/browser/options.go
package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/formprobe/internal/config"
)

// flag is one Chrome command line switch. Value is true for bare switches.
type flag struct {
	Name  string
	Value interface{}
}

// baseFlags quiets background activity that would otherwise compete with the page.
var baseFlags = []flag{
	{"no-first-run", true},
	{"no-default-browser-check", true},
	{"disable-background-networking", true},
	{"disable-background-timer-throttling", true},
	{"disable-backgrounding-occluded-windows", true},
	{"disable-renderer-backgrounding", true},
	{"disable-breakpad", true},
	{"disable-client-side-phishing-detection", true},
	{"disable-default-apps", true},
	{"disable-hang-monitor", true},
	{"disable-ipc-flooding-protection", true},
	{"disable-popup-blocking", true},
	{"disable-prompt-on-repost", true},
	{"disable-sync", true},
	{"disable-dev-shm-usage", true},
	{"enable-features", "NetworkService,NetworkServiceInProcess"},
	{"force-color-profile", "srgb"},
	{"metrics-recording-only", true},
	{"safebrowsing-disable-auto-update", true},
	{"password-store", "basic"},
	{"use-mock-keychain", true},
}

// allocatorFlags lists the switches for cfg in the order they are applied.
// The window is always maximized; window-size makes that hold in headless mode too.
func allocatorFlags(cfg config.BrowserConfig) []flag {
	flags := append([]flag(nil), baseFlags...)

	width, height := cfg.Viewport.Width, cfg.Viewport.Height
	if width <= 0 || height <= 0 {
		width, height = 1920, 1080
	}
	flags = append(flags,
		flag{"start-maximized", true},
		flag{"window-size", fmt.Sprintf("%d,%d", width, height)},
	)

	if cfg.Headless {
		flags = append(flags,
			flag{"headless", true},
			flag{"hide-scrollbars", true},
			flag{"mute-audio", true},
		)
	}
	if cfg.DisableGPU {
		flags = append(flags, flag{"disable-gpu", true})
	}
	if cfg.NoSandbox {
		flags = append(flags, flag{"no-sandbox", true})
	}
	if cfg.IgnoreTLSErrors {
		flags = append(flags,
			flag{"ignore-certificate-errors", true},
			flag{"allow-insecure-localhost", true},
		)
	}

	for _, raw := range cfg.Args {
		if f, ok := parseArg(raw); ok {
			flags = append(flags, f)
		}
	}
	return flags
}

// parseArg turns "--name=value", "name=value" or "--name" into a flag.
func parseArg(raw string) (flag, bool) {
	arg := strings.TrimLeft(strings.TrimSpace(raw), "-")
	if arg == "" {
		return flag{}, false
	}
	name, value, found := strings.Cut(arg, "=")
	if !found {
		return flag{Name: name, Value: true}, true
	}
	return flag{Name: name, Value: value}, true
}

// AllocatorOptions builds the exec allocator options for cfg.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	flags := allocatorFlags(cfg)
	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags)+1)
	for _, f := range flags {
		opts = append(opts, chromedp.Flag(f.Name, f.Value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
