// Package browser opens the Nightscout site in the user's browser.
package browser

import (
	"fmt"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
)

// Opener launches a URL. Swapped in tests.
type Opener func(url string) error

// Default uses the platform browser launcher.
var Default Opener = pkgbrowser.OpenURL

// Open validates target and hands it to open. A nil open uses Default.
func Open(open Opener, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", target)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open %q: missing host", target)
	}
	if open == nil {
		open = Default
	}
	if err := open(u.String()); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
