package credentials

import (
	"database/sql"
	"testing"
	"time"

	"github.com/KrishivGubba/MoodMelody/internal/shared"
)

func newTestStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db), db
}

func TestSQLiteStore(t *testing.T) {
	t.Run("Load Absent When Empty", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, ok, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected absent record in empty store")
		}
	})

	t.Run("Save And Load", func(t *testing.T) {
		store, _ := newTestStore(t)

		expiry := time.UnixMilli(4540000)
		record := TokenRecord{AccessToken: "A", RefreshToken: "R", ExpiresAt: expiry}
		if err := store.Save(record); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, ok, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !ok {
			t.Fatal("expected record to be present")
		}
		if loaded.AccessToken != "A" {
			t.Errorf("expected access token A, got %s", loaded.AccessToken)
		}
		if loaded.RefreshToken != "R" {
			t.Errorf("expected refresh token R, got %s", loaded.RefreshToken)
		}
		if !loaded.ExpiresAt.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, loaded.ExpiresAt)
		}
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		store, _ := newTestStore(t)

		first := TokenRecord{AccessToken: "old", RefreshToken: "R", ExpiresAt: time.UnixMilli(1000)}
		if err := store.Save(first); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		second := TokenRecord{AccessToken: "new", RefreshToken: "R", ExpiresAt: time.UnixMilli(2000)}
		if err := store.Save(second); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}

		loaded, ok, _ := store.Load()
		if !ok || loaded.AccessToken != "new" {
			t.Errorf("expected overwritten token, got %+v ok=%v", loaded, ok)
		}
	})

	t.Run("Load Absent On Partial Record", func(t *testing.T) {
		store, db := newTestStore(t)

		// Simulate a record missing its expiry field.
		if _, err := db.Exec("INSERT INTO credentials (key, value) VALUES (?, ?)", keyAccessToken, "A"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if _, err := db.Exec("INSERT INTO credentials (key, value) VALUES (?, ?)", keyRefreshToken, "R"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		_, ok, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected partial record to read as absent")
		}
	})

	t.Run("Load Absent On Malformed Expiry", func(t *testing.T) {
		store, db := newTestStore(t)

		for key, value := range map[string]string{
			keyAccessToken:  "A",
			keyRefreshToken: "R",
			keyTokenExpiry:  "not-a-number",
		} {
			if _, err := db.Exec("INSERT INTO credentials (key, value) VALUES (?, ?)", key, value); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
		}

		_, ok, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected malformed record to read as absent")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store, _ := newTestStore(t)

		record := TokenRecord{AccessToken: "A", RefreshToken: "R", ExpiresAt: time.Now()}
		if err := store.Save(record); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		if err := store.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		if _, ok, _ := store.Load(); ok {
			t.Error("expected absent record after clear")
		}

		if err := store.Clear(); err != nil {
			t.Errorf("expected clear to be idempotent, got %v", err)
		}
	})

	t.Run("Auth State Lifecycle", func(t *testing.T) {
		store, _ := newTestStore(t)

		if _, ok, _ := store.LoadAuthState(); ok {
			t.Error("expected no pending auth state")
		}

		if err := store.SaveAuthState("nonce16chars0000"); err != nil {
			t.Fatalf("save auth state failed: %v", err)
		}

		state, ok, err := store.LoadAuthState()
		if err != nil {
			t.Fatalf("load auth state failed: %v", err)
		}
		if !ok || state != "nonce16chars0000" {
			t.Errorf("expected stored nonce, got %q ok=%v", state, ok)
		}

		if err := store.ClearAuthState(); err != nil {
			t.Fatalf("clear auth state failed: %v", err)
		}
		if _, ok, _ := store.LoadAuthState(); ok {
			t.Error("expected nonce to be consumed")
		}
	})

	t.Run("Auth State Survives Token Clear", func(t *testing.T) {
		store, _ := newTestStore(t)

		if err := store.SaveAuthState("pending"); err != nil {
			t.Fatalf("save auth state failed: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		if _, ok, _ := store.LoadAuthState(); !ok {
			t.Error("expected auth state to survive token clear")
		}
	})
}

func TestTokenRecordValid(t *testing.T) {
	now := time.UnixMilli(1000000)

	t.Run("Valid Before Expiry", func(t *testing.T) {
		record := TokenRecord{AccessToken: "A", ExpiresAt: now.Add(time.Minute)}
		if !record.Valid(now) {
			t.Error("expected record to be valid before expiry")
		}
	})

	t.Run("Invalid At Expiry", func(t *testing.T) {
		record := TokenRecord{AccessToken: "A", ExpiresAt: now}
		if record.Valid(now) {
			t.Error("expected record to be invalid at expiry")
		}
	})

	t.Run("Invalid Without Token", func(t *testing.T) {
		record := TokenRecord{ExpiresAt: now.Add(time.Minute)}
		if record.Valid(now) {
			t.Error("expected empty token to be invalid")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok, _ := store.Load(); ok {
		t.Error("expected empty store")
	}

	record := TokenRecord{AccessToken: "A", RefreshToken: "R", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(record); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, ok, _ := store.Load()
	if !ok || loaded.AccessToken != "A" {
		t.Errorf("expected saved record, got %+v ok=%v", loaded, ok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("expected absent record after clear")
	}
}
