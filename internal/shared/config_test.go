package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Backend.BaseURL != "http://127.0.0.1:5000" {
			t.Errorf("expected default backend origin, got %s", config.Backend.BaseURL)
		}
		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:3000/callback" {
			t.Errorf("expected loopback redirect URI, got %s", config.Credentials.Spotify.RedirectURI)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected callback port 3000, got %d", config.Server.Port)
		}
		if config.Capture.SampleInterval != 30 {
			t.Errorf("expected 30s sample interval, got %d", config.Capture.SampleInterval)
		}
		if config.Capture.WarmupDelay != 1 {
			t.Errorf("expected 1s warmup delay, got %d", config.Capture.WarmupDelay)
		}
		if config.Capture.JPEGQuality != 70 {
			t.Errorf("expected JPEG quality 70, got %d", config.Capture.JPEGQuality)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "abc123"
redirect_uri = "http://127.0.0.1:9999/callback"

[backend]
base_url = "http://localhost:5001"

[database]
path = "test.db"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Credentials.Spotify.ClientID != "abc123" {
			t.Errorf("expected client_id abc123, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Backend.BaseURL != "http://localhost:5001" {
			t.Errorf("expected backend override, got %s", config.Backend.BaseURL)
		}
		if config.Database.Path != "test.db" {
			t.Errorf("expected database path test.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for invalid TOML")
		}
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("MOODMELODY_SPOTIFY_CLIENT_ID", "env-client")
		t.Setenv("MOODMELODY_BACKEND_URL", "http://backend.internal:5000")

		config := DefaultConfig()

		if config.Credentials.Spotify.ClientID != "env-client" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Backend.BaseURL != "http://backend.internal:5000" {
			t.Errorf("expected env backend URL, got %s", config.Backend.BaseURL)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected config file to exist: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}
