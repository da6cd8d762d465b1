package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KrishivGubba/MoodMelody/internal/backend"
	"github.com/KrishivGubba/MoodMelody/internal/credentials"
	"github.com/KrishivGubba/MoodMelody/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const spotifyAuthURL = "https://accounts.spotify.com/authorize"

// expiryMargin is subtracted from every token lifetime so a token is never
// used in the final seconds before Spotify rejects it.
const expiryMargin = 60 * time.Second

// Scopes is the fixed, non-configurable set of Spotify scopes the client
// requests: profile read, playback read/modify, streaming, recently-played,
// and playlist read.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-read-currently-playing",
	"user-modify-playback-state",
	"user-read-playback-state",
	"streaming",
	"user-read-recently-played",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// State identifies where the controller is in the authorization lifecycle.
type State int

const (
	LoggedOut State = iota
	AuthorizationPending
	Exchanging
	Authenticated
	RefreshPending
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case AuthorizationPending:
		return "authorization_pending"
	case Exchanging:
		return "exchanging"
	case Authenticated:
		return "authenticated"
	case RefreshPending:
		return "refresh_pending"
	default:
		return "unknown"
	}
}

// TokenAPI is the subset of the backend client the controller depends on.
type TokenAPI interface {
	ExchangeCode(ctx context.Context, code string) (*backend.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*backend.TokenResponse, error)
	Profile(ctx context.Context, accessToken string) (*backend.Profile, error)
}

// Controller implements the session state machine over a [credentials.Store]
// and the backend's token endpoints.
type Controller struct {
	store  credentials.Store
	api    TokenAPI
	oauth  *oauth2.Config
	logger *log.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
	group singleflight.Group
}

// Opts contains configuration options for creating a [Controller].
type Opts struct {
	Store       credentials.Store
	API         TokenAPI
	ClientID    string
	RedirectURI string
	Logger      *log.Logger
	Now         func() time.Time // defaults to time.Now
}

// NewController creates a session controller. A stored, complete token
// record puts the controller directly into the Authenticated state so a
// restart does not force a new login.
func NewController(opts Opts) (*Controller, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: credential store is required", shared.ErrInvalidArgument)
	}
	if opts.API == nil {
		return nil, fmt.Errorf("%w: backend API is required", shared.ErrInvalidArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RedirectURI == "" {
		opts.RedirectURI = "http://127.0.0.1:3000/callback"
	}

	c := &Controller{
		store: opts.Store,
		api:   opts.API,
		oauth: &oauth2.Config{
			ClientID:    opts.ClientID,
			RedirectURL: opts.RedirectURI,
			Scopes:      Scopes,
			Endpoint:    oauth2.Endpoint{AuthURL: spotifyAuthURL},
		},
		logger: opts.Logger,
		now:    opts.Now,
		state:  LoggedOut,
	}

	if record, ok, err := c.store.Load(); err == nil && ok && record.RefreshToken != "" {
		c.state = Authenticated
	}

	return c, nil
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginLogin generates and persists the state nonce and returns the
// authorization URL along with the nonce. The caller navigates the browser
// and validates the nonce when the redirect returns.
func (c *Controller) BeginLogin() (authURL, state string, err error) {
	if c.oauth.ClientID == "" {
		return "", "", fmt.Errorf("%w: Spotify client_id must be configured", shared.ErrMissingCredentials)
	}

	state, err = shared.GenerateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state nonce: %w", err)
	}

	if err := c.store.SaveAuthState(state); err != nil {
		return "", "", fmt.Errorf("failed to persist state nonce: %w", err)
	}

	c.setState(AuthorizationPending)

	return c.oauth.AuthCodeURL(state), state, nil
}

// CompleteLogin exchanges the authorization code through the backend and
// stores the resulting token record. The persisted nonce is consumed so the
// callback cannot be replayed.
func (c *Controller) CompleteLogin(ctx context.Context, code string) error {
	c.setState(Exchanging)

	tokens, err := c.api.ExchangeCode(ctx, code)
	if err != nil {
		c.setState(LoggedOut)
		return fmt.Errorf("%w: %v", shared.ErrAuthExchangeFailed, err)
	}

	record := credentials.TokenRecord{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    c.expiry(tokens.ExpiresIn),
	}
	if err := c.store.Save(record); err != nil {
		c.setState(LoggedOut)
		return fmt.Errorf("failed to store token record: %w", err)
	}

	if err := c.store.ClearAuthState(); err != nil {
		c.logger.Warn("failed to clear auth state nonce", "error", err)
	}

	c.setState(Authenticated)
	c.logger.Info("spotify session established", "expires_at", record.ExpiresAt)

	return nil
}

// AccessToken returns a token guaranteed to be unexpired, refreshing first
// when the stored one has passed its safety margin. Concurrent callers share
// a single in-flight refresh.
func (c *Controller) AccessToken(ctx context.Context) (string, error) {
	record, ok, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok {
		return "", shared.ErrNotAuthenticated
	}

	if record.Valid(c.now()) {
		return record.AccessToken, nil
	}

	if _, err, _ := c.group.Do("refresh", func() (any, error) {
		return nil, c.Refresh(ctx)
	}); err != nil {
		return "", err
	}

	record, ok, err = c.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok || !record.Valid(c.now()) {
		return "", shared.ErrNotAuthenticated
	}

	return record.AccessToken, nil
}

// Refresh obtains a new access token using the stored refresh token.
// The refresh token itself is not rotated. Any failure logs the user out.
func (c *Controller) Refresh(ctx context.Context) error {
	record, ok, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok || record.RefreshToken == "" {
		c.logout()
		return shared.ErrNoRefreshToken
	}

	c.setState(RefreshPending)

	tokens, err := c.api.RefreshToken(ctx, record.RefreshToken)
	if err != nil {
		c.logger.Warn("token refresh rejected, logging out", "error", err)
		c.logout()
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	updated := credentials.TokenRecord{
		AccessToken:  tokens.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    c.expiry(tokens.ExpiresIn),
	}
	if err := c.store.Save(updated); err != nil {
		c.logout()
		return fmt.Errorf("%w: failed to store refreshed record: %v", shared.ErrRefreshFailed, err)
	}

	c.setState(Authenticated)
	c.logger.Debug("access token refreshed", "expires_at", updated.ExpiresAt)

	return nil
}

// Logout clears stored credentials and the pending nonce. Idempotent.
func (c *Controller) Logout() error {
	return c.logout()
}

func (c *Controller) logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	if err := c.store.ClearAuthState(); err != nil {
		return fmt.Errorf("failed to clear auth state: %w", err)
	}
	c.setState(LoggedOut)
	return nil
}

// FetchProfile reads the user's Spotify profile. A 401 triggers exactly one
// refresh and one retry; a second rejection invalidates the session rather
// than looping.
func (c *Controller) FetchProfile(ctx context.Context) (*backend.Profile, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := c.api.Profile(ctx, token)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, shared.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	record, ok, err := c.store.Load()
	if err != nil || !ok {
		return nil, shared.ErrNotAuthenticated
	}

	profile, err = c.api.Profile(ctx, record.AccessToken)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			c.logout()
			return nil, fmt.Errorf("%w: token rejected after refresh", shared.ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return profile, nil
}

// expiry computes when a token with the given lifetime should stop being
// used: now + expires_in − the 60-second safety margin.
func (c *Controller) expiry(expiresIn int) time.Time {
	return c.now().Add(time.Duration(expiresIn)*time.Second - expiryMargin)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
