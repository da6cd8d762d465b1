// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the credential database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the Spotify session lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using the browser-based OAuth2 flow",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state and token expiry",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Clear stored Spotify credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// profileCommand fetches the authenticated user's Spotify profile.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show the authenticated Spotify profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Profile,
	}
}

// captureCommand handles the screen-sampling loop.
func captureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Screen sampling and activity matching",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Run the sampling loop until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Path to a PNG or JPEG to sample as the screen feed",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "interval",
						Usage: "Seconds between samples (default from config)",
					},
					&cli.IntFlag{
						Name:  "warmup",
						Usage: "Seconds to wait before the first sample",
					},
					&cli.IntFlag{
						Name:  "quality",
						Usage: "JPEG encoder quality, 1-100",
					},
					&cli.DurationFlag{
						Name:  "duration",
						Usage: "Stop after this long (0 runs until interrupted)",
					},
					&cli.BoolFlag{
						Name:  "ui",
						Usage: "Show the interactive dashboard",
					},
				},
				Action: r.CaptureStart,
			},
			{
				Name:  "frame",
				Usage: "Classify a single frame and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Path to a PNG or JPEG to classify",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "play",
						Usage: "Also trigger playback for the classified activity",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CaptureFrame,
			},
		},
	}
}
