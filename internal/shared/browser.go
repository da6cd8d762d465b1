package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var goos = func() string { return runtime.GOOS }

// launchers maps GOOS to the command that opens a URL with the default
// browser on that platform.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser opens the system default browser at the given URL, used to
// hand the user off to the Spotify authorization page.
func OpenBrowser(url string) error {
	launcher, ok := launchers[goos()]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", goos())
	}

	args := append(append([]string{}, launcher[1:]...), url)
	if err := exec.Command(launcher[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
