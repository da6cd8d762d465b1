package shared

import (
	"strings"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	t.Run("Unsupported Platform", func(t *testing.T) {
		orig := goos
		goos = func() string { return "plan9" }
		t.Cleanup(func() { goos = orig })

		err := OpenBrowser("http://127.0.0.1:3000")
		if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
			t.Errorf("expected unsupported platform error, got %v", err)
		}
	})

	t.Run("Known Platforms Have Launchers", func(t *testing.T) {
		for _, platform := range []string{"darwin", "linux", "windows"} {
			if launcher, ok := launchers[platform]; !ok || len(launcher) == 0 {
				t.Errorf("expected launcher command for %s", platform)
			}
		}
	})
}
