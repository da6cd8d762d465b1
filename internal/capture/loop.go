package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/KrishivGubba/MoodMelody/internal/backend"
	"github.com/KrishivGubba/MoodMelody/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// TokenProvider supplies an unexpired access token for uploads.
// Satisfied by the session controller.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Uploader is the subset of the backend client the loop depends on.
type Uploader interface {
	AnalyzeScreenshot(ctx context.Context, accessToken string, jpeg []byte) (*backend.Analysis, error)
	Play(ctx context.Context, accessToken, searchQuery string) (*backend.PlaybackConfirmation, error)
}

// LoopState identifies whether the sampling loop is running.
type LoopState int

const (
	Idle LoopState = iota
	Capturing
)

func (s LoopState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	default:
		return "unknown"
	}
}

// EventKind labels the entries on the loop's event channel.
type EventKind int

const (
	// EventSampled fires when a frame has been encoded and its upload started.
	EventSampled EventKind = iota
	// EventActivity fires when a classification result arrives.
	EventActivity
	// EventPlayback fires when the backend confirms a playback command.
	EventPlayback
	// EventError fires for recoverable sampling or upload failures.
	EventError
	// EventStopped fires once when the loop exits.
	EventStopped
)

// Event is one observation from the sampling loop.
type Event struct {
	Kind     EventKind
	SampleID string
	Activity string
	Track    *backend.TrackInfo
	Err      error
}

// Config contains tuning knobs for the sampling loop.
// Zero values fall back to the defaults from the original client.
type Config struct {
	SampleInterval   time.Duration // cadence between samples, default 30s
	WarmupDelay      time.Duration // delay before the first sample, default 1s
	JPEGQuality      int           // encoder quality, default 70
	PlaybackCooldown time.Duration // minimum gap between playback commands, default 5s
}

func (c Config) withDefaults() Config {
	if c.SampleInterval <= 0 {
		c.SampleInterval = 30 * time.Second
	}
	if c.WarmupDelay <= 0 {
		c.WarmupDelay = time.Second
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 70
	}
	if c.PlaybackCooldown <= 0 {
		c.PlaybackCooldown = 5 * time.Second
	}
	return c
}

// Loop samples frames from a [FrameSource] on a fixed cadence and forwards
// them to the backend for activity classification.
type Loop struct {
	source   FrameSource
	tokens   TokenProvider
	uploader Uploader
	logger   *log.Logger
	conf     Config
	limiter  *rate.Limiter
	events   chan Event

	mu       sync.Mutex
	state    LoopState
	activity string
	samples  int
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewLoop creates a sampling loop. The loop does not run until [Loop.Start].
func NewLoop(source FrameSource, tokens TokenProvider, uploader Uploader, conf Config, logger *log.Logger) *Loop {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	conf = conf.withDefaults()

	return &Loop{
		source:   source,
		tokens:   tokens,
		uploader: uploader,
		logger:   logger,
		conf:     conf,
		limiter:  rate.NewLimiter(rate.Every(conf.PlaybackCooldown), 1),
		events:   make(chan Event, 64),
	}
}

// Events returns the loop's observation channel. Events are dropped rather
// than blocking the loop when no one is draining the channel.
func (l *Loop) Events() <-chan Event {
	return l.events
}

// State returns the loop's current state.
func (l *Loop) State() LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Activity returns the most recently classified activity label.
func (l *Loop) Activity() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activity
}

// Samples returns how many frames have been sampled since Start.
func (l *Loop) Samples() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.samples
}

// Analyzing reports whether classification results may be in flight:
// the loop is capturing and at least one frame has been sampled.
func (l *Loop) Analyzing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == Capturing && l.samples > 0
}

// Start launches the sampling goroutine. Returns [shared.ErrCaptureActive]
// if the loop is already running and [shared.ErrSourceEnded] if the source
// cannot produce frames.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Capturing {
		return shared.ErrCaptureActive
	}
	if !l.source.Live() {
		return shared.ErrSourceEnded
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.state = Capturing
	l.samples = 0

	go l.run(runCtx)

	l.logger.Info("capture started",
		"interval", l.conf.SampleInterval,
		"warmup", l.conf.WarmupDelay)

	return nil
}

// Stop halts the loop and waits for the sampling goroutine to exit.
// Idempotent; safe to call before Start or more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer func() {
		l.mu.Lock()
		l.state = Idle
		l.mu.Unlock()
		l.emit(Event{Kind: EventStopped})
		l.logger.Info("capture stopped")
	}()

	warmup := time.NewTimer(l.conf.WarmupDelay)
	defer warmup.Stop()

	select {
	case <-ctx.Done():
		return
	case <-warmup.C:
	}

	l.sample(ctx)

	ticker := time.NewTicker(l.conf.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !l.source.Live() {
				l.logger.Info("frame source ended")
				return
			}
			l.sample(ctx)
		}
	}
}

// sample grabs one frame, encodes it, and hands it to a detached upload.
// A frame that is not ready yet is skipped without counting as a sample.
func (l *Loop) sample(ctx context.Context) {
	frame, err := l.source.Frame()
	if err != nil {
		if errors.Is(err, shared.ErrSourceNotReady) {
			l.logger.Debug("frame not ready, skipping sample")
			return
		}
		l.emit(Event{Kind: EventError, Err: err})
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: l.conf.JPEGQuality}); err != nil {
		l.emit(Event{Kind: EventError, Err: fmt.Errorf("failed to encode frame: %w", err)})
		return
	}

	l.mu.Lock()
	l.samples++
	l.mu.Unlock()

	id := shared.GenerateID()
	l.emit(Event{Kind: EventSampled, SampleID: id})

	// Detached so a slow analysis never delays the next tick.
	go l.upload(ctx, id, buf.Bytes())
}

func (l *Loop) upload(ctx context.Context, id string, frame []byte) {
	token, err := l.tokens.AccessToken(ctx)
	if err != nil {
		l.emit(Event{Kind: EventError, SampleID: id, Err: err})
		return
	}

	analysis, err := l.uploader.AnalyzeScreenshot(ctx, token, frame)
	if err != nil {
		l.logger.Warn("screenshot analysis failed", "sample", id, "error", err)
		l.emit(Event{Kind: EventError, SampleID: id, Err: fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)})
		return
	}

	l.apply(ctx, id, analysis)
}

// apply records a classification result. Responses apply in arrival order.
// Activity-only responses never trigger playback; every directive-bearing
// response issues a playback command, throttled only by the cooldown limiter.
func (l *Loop) apply(ctx context.Context, id string, analysis *backend.Analysis) {
	l.mu.Lock()
	l.activity = analysis.Activity
	l.mu.Unlock()

	l.emit(Event{Kind: EventActivity, SampleID: id, Activity: analysis.Activity})
	l.logger.Debug("activity classified", "sample", id, "activity", analysis.Activity)

	if analysis.PlaylistURI == "" {
		return
	}

	query := analysis.PlaylistURI

	if !l.limiter.Allow() {
		l.logger.Debug("playback cooldown active", "activity", analysis.Activity)
		return
	}

	token, err := l.tokens.AccessToken(ctx)
	if err != nil {
		l.emit(Event{Kind: EventError, SampleID: id, Err: err})
		return
	}

	confirmation, err := l.uploader.Play(ctx, token, query)
	if err != nil {
		l.emit(Event{Kind: EventError, SampleID: id, Err: fmt.Errorf("%w: %v", shared.ErrPlaybackFailed, err)})
		return
	}

	if confirmation.Success {
		track := confirmation.TrackInfo
		l.logger.Info("playback started", "track", track.Name, "artist", track.Artist)
		l.emit(Event{Kind: EventPlayback, SampleID: id, Activity: analysis.Activity, Track: &track})
	}
}

func (l *Loop) emit(e Event) {
	select {
	case l.events <- e:
	default:
	}
}
