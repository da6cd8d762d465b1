package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/KrishivGubba/MoodMelody/internal/shared"
)

// TokenResponse is the payload of a successful code exchange or refresh.
// Refreshes omit the refresh token; it is not rotated.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// Image represents a profile image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Profile represents the authenticated user's Spotify profile.
type Profile struct {
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Images      []Image `json:"images"`
	Product     string  `json:"product"` // premium, free, etc.
}

// Analysis is the classification result for one screen sample.
// PlaylistURI is the optional playback directive.
type Analysis struct {
	Activity    string `json:"activity"`
	PlaylistURI string `json:"playlist_uri"`
	Timestamp   string `json:"timestamp"`
}

// TrackInfo describes the track the backend started playing.
type TrackInfo struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	URI    string `json:"uri"`
}

// PlaybackConfirmation is the backend's response to a playback command.
type PlaybackConfirmation struct {
	Success   bool      `json:"success"`
	TrackInfo TrackInfo `json:"track_info"`
}

// Client makes requests to the MoodMelody backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given origin.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// ExchangeCode posts an authorization code for exchange into tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	var tokens TokenResponse
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/callback", "", body, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", shared.ErrAPIRequest)
	}
	return &tokens, nil
}

// RefreshToken posts a refresh token and returns a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var tokens TokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/spotify/refresh-token", "", body, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token in response", shared.ErrAPIRequest)
	}
	return &tokens, nil
}

// Profile retrieves the authenticated user's Spotify profile.
func (c *Client) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/spotify/profile", accessToken, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AnalyzeScreenshot uploads a JPEG screen sample for activity classification.
//
// The sample is sent as a multipart form with a single "screenshot" field.
func (c *Client) AnalyzeScreenshot(ctx context.Context, accessToken string, jpeg []byte) (*Analysis, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("screenshot", "screenshot.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(jpeg); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze-screenshot", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var analysis Analysis
	if err := c.send(req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Play asks the backend to start playback matching the search query.
func (c *Client) Play(ctx context.Context, accessToken, searchQuery string) (*PlaybackConfirmation, error) {
	var confirmation PlaybackConfirmation
	body := map[string]string{"search_query": searchQuery}
	if err := c.do(ctx, http.MethodPost, "/api/spotify/play", accessToken, body, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// do performs a JSON request against the backend and decodes the response.
func (c *Client) do(ctx context.Context, method, path, accessToken string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.send(req, result)
}

// send executes a prepared request, mapping error statuses to sentinels.
func (c *Client) send(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, errorMessage(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errorMessage(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts the backend's {"error": "..."} message when present.
func errorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return "no error detail"
}
