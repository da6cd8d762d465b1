// Package server provides the temporary HTTP listener for the OAuth
// redirect callback.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives the authorization redirect on /callback. It
// validates the state parameter against the nonce generated at login start
// (CSRF protection), extracts the authorization code, and sends it through a
// channel. The code exchange itself happens at the MoodMelody backend, which
// holds the Spotify client secret; the handler never sees tokens.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs `moodmelody auth login`, a temporary server starts on
// the configured loopback address, handles the redirect, and shuts down once
// the code is delivered.
package server
