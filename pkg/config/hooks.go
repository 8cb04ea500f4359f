package config

import (
	"runtime"

	"github.com/go-mosf/mosf/pkg/errors"
)

// Hooks groups platform-specific setup callbacks. Common always runs
// first, then the callback for the current OS. A nil callback for a
// recognized OS is a no-op; an unrecognized OS falls back to Others,
// and fails when no fallback is provided.
type Hooks struct {
	Common  func() error
	Linux   func() error
	Darwin  func() error
	Windows func() error
	IOS     func() error
	Android func() error
	Others  func() error
}

// Apply runs the hooks for the current platform.
func (h Hooks) Apply() error {
	return h.applyFor(runtime.GOOS)
}

func (h Hooks) applyFor(goos string) error {
	if h.Common != nil {
		if err := h.Common(); err != nil {
			return errors.Wrap("config.Hooks.Apply", errors.KindConfig, err)
		}
	}
	var fn func() error
	known := true
	switch goos {
	case "linux":
		fn = h.Linux
	case "darwin":
		fn = h.Darwin
	case "windows":
		fn = h.Windows
	case "ios":
		fn = h.IOS
	case "android":
		fn = h.Android
	default:
		known = false
		fn = h.Others
	}
	if fn == nil {
		if known {
			return nil
		}
		return errors.New("config.Hooks.Apply", errors.KindConfig,
			"no configuration hook for platform %q", goos)
	}
	if err := fn(); err != nil {
		return errors.Wrap("config.Hooks.Apply", errors.KindConfig, err)
	}
	return nil
}
