package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/KrishivGubba/MoodMelody/internal/server"
	"github.com/KrishivGubba/MoodMelody/internal/session"
	"github.com/KrishivGubba/MoodMelody/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// hands the returned code to the session controller for exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	if err := r.doAuthorize(ctx, controller); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: moodmelody capture start\n")

	return nil
}

// doAuthorize runs the browser round trip: callback server up, browser open,
// wait for the redirect, exchange the code.
func (r *Runner) doAuthorize(ctx context.Context, controller *session.Controller) error {
	authURL, state, err := controller.BeginLogin()
	if err != nil {
		return err
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	return controller.CompleteLogin(ctx, result.Code)
}

// AuthStatus shows the session state and, when authenticated, the token expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	state := controller.State()
	if state != session.Authenticated {
		r.writePlain("Session: %s\n", state)
		r.writePlain("Run 'moodmelody auth login' to connect Spotify.\n")
		return nil
	}

	r.writePlain("Session: %s\n", state)

	record, ok, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if ok {
		if record.Valid(time.Now()) {
			r.writePlain("Token:   valid until %s\n", record.ExpiresAt.Format(time.RFC1123))
		} else {
			r.writePlain("Token:   expired, will refresh on next use\n")
		}
	}

	return nil
}

// AuthLogout clears stored credentials.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	if err := controller.Logout(); err != nil {
		return err
	}

	r.writePlain("✓ Logged out\n")
	return nil
}

// Profile fetches and prints the authenticated user's Spotify profile.
func (r *Runner) Profile(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	controller, err := r.newController(store)
	if err != nil {
		return err
	}

	profile, err := controller.FetchProfile(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(profile, pretty)
	}

	r.writePlain("Name:    %s\n", profile.DisplayName)
	if profile.Email != "" {
		r.writePlain("Email:   %s\n", profile.Email)
	}
	if profile.Product != "" {
		r.writePlain("Product: %s\n", profile.Product)
	}

	return nil
}
