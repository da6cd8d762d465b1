package main

import (
	"context"
	"os"

	"github.com/KrishivGubba/MoodMelody/internal/backend"
	"github.com/KrishivGubba/MoodMelody/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config, using defaults: %v", err)
		}
	}

	backendClient := backend.NewClient(config.Backend.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Backend:    backendClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "moodmelody",
		Usage:    "Match Spotify playback to what's on your screen",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
