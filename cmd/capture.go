package main

import (
	"bytes"
	"context"
	"image/jpeg"
	"os/signal"
	"syscall"
	"time"

	"github.com/KrishivGubba/MoodMelody/internal/capture"
	"github.com/KrishivGubba/MoodMelody/internal/ui"
	"github.com/urfave/cli/v3"
)

// captureConfig merges flag overrides onto the configured sampling defaults.
func (r *Runner) captureConfig(cmd *cli.Command) capture.Config {
	conf := capture.Config{
		SampleInterval:   time.Duration(r.config.Capture.SampleInterval) * time.Second,
		WarmupDelay:      time.Duration(r.config.Capture.WarmupDelay) * time.Second,
		JPEGQuality:      r.config.Capture.JPEGQuality,
		PlaybackCooldown: time.Duration(r.config.Capture.PlaybackCooldown) * time.Second,
	}

	if v := cmd.Int("interval"); v > 0 {
		conf.SampleInterval = time.Duration(v) * time.Second
	}
	if v := cmd.Int("warmup"); v > 0 {
		conf.WarmupDelay = time.Duration(v) * time.Second
	}
	if v := cmd.Int("quality"); v > 0 {
		conf.JPEGQuality = int(v)
	}

	return conf
}

// CaptureStart runs the sampling loop until interrupted, the duration
// elapses, or the dashboard is quit.
func (r *Runner) CaptureStart(ctx context.Context, cmd *cli.Command) error {
	source, err := capture.NewFileSource(cmd.String("source"))
	if err != nil {
		return err
	}
	defer source.Close()

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	loop := capture.NewLoop(source, controller, r.backend, r.captureConfig(cmd), r.logger)
	if err := loop.Start(ctx); err != nil {
		return err
	}

	if cmd.Bool("ui") {
		// Dashboard owns shutdown; quitting it stops the loop.
		if err := ui.Run(ctx, loop); err != nil {
			loop.Stop()
			return err
		}
		return r.printCaptureSummary(loop)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.writePlain("→ Sampling every %s, ctrl+c to stop\n", r.captureConfig(cmd).SampleInterval)

	if duration := cmd.Duration("duration"); duration > 0 {
		select {
		case <-sigCtx.Done():
		case <-time.After(duration):
		}
	} else {
		<-sigCtx.Done()
	}

	loop.Stop()

	return r.printCaptureSummary(loop)
}

func (r *Runner) printCaptureSummary(loop *capture.Loop) error {
	r.writePlainln("✓ Capture stopped")
	r.writePlain("Samples: %d\n", loop.Samples())
	if activity := loop.Activity(); activity != "" {
		r.writePlain("Last activity: %s\n", activity)
	}
	return nil
}

// CaptureFrame classifies one frame and prints the analysis.
func (r *Runner) CaptureFrame(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	source, err := capture.NewFileSource(cmd.String("source"))
	if err != nil {
		return err
	}
	defer source.Close()

	frame, err := source.Frame()
	if err != nil {
		return err
	}

	quality := r.config.Capture.JPEGQuality
	if quality <= 0 {
		quality = 70
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
		return err
	}

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	token, err := controller.AccessToken(ctx)
	if err != nil {
		return err
	}

	analysis, err := r.backend.AnalyzeScreenshot(ctx, token, buf.Bytes())
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(analysis, pretty)
	}

	r.writePlain("Activity: %s\n", analysis.Activity)
	if analysis.PlaylistURI != "" {
		r.writePlain("Playlist: %s\n", analysis.PlaylistURI)
	}
	if analysis.Timestamp != "" {
		r.writePlain("At:       %s\n", analysis.Timestamp)
	}

	if cmd.Bool("play") {
		query := analysis.PlaylistURI
		if query == "" {
			query = analysis.Activity
		}

		confirmation, err := r.backend.Play(ctx, token, query)
		if err != nil {
			return err
		}
		if confirmation.Success {
			r.writePlain("Playing:  %s by %s\n", confirmation.TrackInfo.Name, confirmation.TrackInfo.Artist)
		}
	}

	return nil
}
