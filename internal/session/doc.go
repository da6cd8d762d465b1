// Package session owns the OAuth authorization flow and the token refresh
// policy for the Spotify link.
//
// # State Machine
//
// The [Controller] moves through a fixed set of states:
//
//	LoggedOut → AuthorizationPending → Exchanging → Authenticated
//	Authenticated ↔ RefreshPending
//	any → LoggedOut (logout, or refresh failure)
//
// [Controller.BeginLogin] generates and persists the state nonce and builds
// the authorization URL; the caller opens the browser and runs the local
// callback listener (internal/server). [Controller.CompleteLogin] exchanges
// the returned code through the backend, stores the token record with a
// 60-second safety margin on its expiry, and consumes the nonce so the code
// cannot be replayed.
//
// # Token Access
//
// [Controller.AccessToken] is the single choke point for outbound
// authenticated requests: it never returns an expired token, refreshing
// first when needed. Concurrent callers hitting an expired token are
// coalesced into one refresh with [singleflight]. A failed refresh logs the
// user out; they must re-authenticate.
package session
