package capture

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/KrishivGubba/MoodMelody/internal/shared"
)

// FrameSource supplies frames to the sampling loop.
//
// Implementations report [shared.ErrSourceNotReady] while warming up and
// [shared.ErrSourceEnded] once the underlying stream is gone.
type FrameSource interface {
	// Frame returns the most recent frame.
	Frame() (image.Image, error)

	// Live reports whether the source can still produce frames.
	Live() bool

	// Close releases the source. Frame returns ErrSourceEnded afterwards.
	Close() error
}

// StaticSource replays a single fixed image. Used by tests and by the
// test-frame command to exercise the pipeline without a screen grab.
type StaticSource struct {
	mu     sync.Mutex
	img    image.Image
	closed bool
}

// NewStaticSource creates a source that serves the given image until closed.
func NewStaticSource(img image.Image) *StaticSource {
	return &StaticSource{img: img}
}

// NewFileSource loads a PNG or JPEG from disk into a [StaticSource].
func NewFileSource(path string) (*StaticSource, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", shared.ErrCaptureDenied, err)
		}
		return nil, fmt.Errorf("failed to open frame file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame file %s: %w", path, err)
	}

	return NewStaticSource(img), nil
}

func (s *StaticSource) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, shared.ErrSourceEnded
	}
	return s.img, nil
}

func (s *StaticSource) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *StaticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
