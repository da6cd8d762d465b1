// Package capture runs the screen-sampling loop that drives activity
// matching.
//
// A [FrameSource] abstracts where frames come from; the [Loop] owns the
// sampling cadence. After a short warmup it encodes one frame as JPEG every
// sample interval and uploads it for classification in a detached goroutine,
// so a slow analysis never delays the next sample. Analysis responses apply
// in arrival order. Every response carrying a playback directive issues a
// playback command through a rate limiter, so a burst of directives cannot
// spam the backend.
//
// The loop reports progress on a buffered [Loop.Events] channel and stops
// deterministically: [Loop.Stop] is idempotent and returns only after the
// sampling goroutine has exited. The loop also stops itself when the source
// reports it is no longer live.
package capture
