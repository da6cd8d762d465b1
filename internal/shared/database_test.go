package shared

import "testing"

func TestNewDatabase(t *testing.T) {
	t.Run("Opens In Memory", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("expected database to open, got %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			t.Errorf("expected live connection, got %v", err)
		}
	})
}

func TestConfigureDatabase(t *testing.T) {
	t.Run("Applies Pool Limits", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("expected database to open, got %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, 4, 2)
		if got := db.Stats().MaxOpenConnections; got != 4 {
			t.Errorf("expected max open connections 4, got %d", got)
		}
	})

	t.Run("Ignores Non Positive Limits", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("expected database to open, got %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, 0, -1)
		if got := db.Stats().MaxOpenConnections; got != 0 {
			t.Errorf("expected driver default (unlimited), got %d", got)
		}
	})
}
