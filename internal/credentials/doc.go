// Package credentials persists Spotify OAuth tokens and the pending
// authorization state nonce.
//
// The [Store] interface is the only way the rest of the client touches
// tokens. [TokenRecord] bundles the access token, refresh token, and expiry;
// a record is only usable while the expiry has not passed, which callers
// check with [TokenRecord.Valid].
//
// [SQLiteStore] is the durable implementation, a key-value table using the
// same fixed key names the web client kept in localStorage
// (spotify_access_token, spotify_refresh_token, spotify_token_expiry,
// spotify_auth_state). Saving a record writes all three token keys in one
// transaction so a crash never leaves a partial record behind.
//
// [MemoryStore] backs tests and throwaway sessions that should not persist
// credentials.
package credentials
