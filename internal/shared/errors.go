package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthExchangeFailed = fmt.Errorf("authorization code exchange failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrRefreshFailed      = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken     = fmt.Errorf("no refresh token available")
	ErrInvalidState       = fmt.Errorf("invalid state parameter")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Capture errors
	ErrCaptureDenied  = fmt.Errorf("screen capture denied")
	ErrCaptureActive  = fmt.Errorf("capture session already active")
	ErrSourceNotReady = fmt.Errorf("capture source not ready")
	ErrSourceEnded    = fmt.Errorf("capture source ended")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUploadFailed       = fmt.Errorf("sample upload failed")
	ErrPlaybackFailed     = fmt.Errorf("playback request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
