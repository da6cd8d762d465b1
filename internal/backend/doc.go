// Package backend implements the HTTP client for the MoodMelody backend
// service, which brokers all Spotify interaction.
//
// The backend owns the Spotify client secret, so the code exchange and token
// refresh happen there; this client only ships codes, refresh tokens, and
// bearer tokens over the wire. The five operations map one-to-one onto the
// backend's routes:
//
//   - [Client.ExchangeCode]      POST /callback
//   - [Client.RefreshToken]     POST /api/spotify/refresh-token
//   - [Client.Profile]          GET  /api/spotify/profile
//   - [Client.AnalyzeScreenshot] POST /api/analyze-screenshot (multipart)
//   - [Client.Play]             POST /api/spotify/play
//
// A 401 from any authenticated route maps to [shared.ErrTokenExpired] so
// callers can trigger a refresh; other non-success statuses map to
// [shared.ErrAPIRequest] with the backend's error message when one is
// present.
package backend
