package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KrishivGubba/MoodMelody/internal/shared"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("Delivers Code", func(t *testing.T) {
		handler := NewCallbackHandler("expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=expected-state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Code != "auth-code" {
			t.Errorf("expected code auth-code, got %s", result.Code)
		}
	})

	t.Run("Rejects Forged State", func(t *testing.T) {
		handler := NewCallbackHandler("expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?code=auth-code&state=forged", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Error(), shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", result.Error())
		}
	})

	t.Run("Reports Authorization Errors", func(t *testing.T) {
		handler := NewCallbackHandler("expected-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&error_description=User+denied&state=expected-state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		result := <-handler.Result()
		if result.Error() == nil {
			t.Fatal("expected error result")
		}
		if !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected error to name the failure, got %v", result.Error())
		}
	})

	t.Run("Processes Only One Callback", func(t *testing.T) {
		handler := NewCallbackHandler("expected-state")

		first := httptest.NewRequest(http.MethodGet, "/callback?code=one&state=expected-state", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?code=two&state=expected-state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected with 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Code != "one" {
			t.Errorf("expected first code to win, got %s", result.Code)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handler Registration", func(t *testing.T) {
		router := NewBasicRouter()
		handler := NewCallbackHandler("state")
		router.Handler(handler)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=c&state=state", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 through router, got %d", rec.Code)
		}
	})

	t.Run("Method Filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for wrong method, got %d", rec.Code)
		}
	})

	t.Run("Middleware Ordering", func(t *testing.T) {
		var order []string
		mk := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mk("first"), mk("second"))
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("expected middleware to run in added order, got %v", order)
		}
	})
}
