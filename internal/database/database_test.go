package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// setupTestDB opens a fresh database in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenSeedsProviderConfigs(t *testing.T) {
	db := setupTestDB(t)

	configs, err := db.ProviderConfigs()
	if err != nil {
		t.Fatalf("ProviderConfigs failed: %v", err)
	}
	if len(configs) != 6 {
		t.Fatalf("Seeded configs = %d, want 6", len(configs))
	}

	for _, cfg := range configs {
		if !cfg.IsEnabled {
			t.Errorf("Provider %s seeded disabled", cfg.Provider)
		}
		if cfg.FreeTierLimit != 10 {
			t.Errorf("Provider %s free tier = %d, want 10", cfg.Provider, cfg.FreeTierLimit)
		}
		if cfg.PremiumTierLimit != 1000 {
			t.Errorf("Provider %s premium tier = %d, want 1000", cfg.Provider, cfg.PremiumTierLimit)
		}
	}
}

func TestCreateRequestLogAssignsID(t *testing.T) {
	db := setupTestDB(t)

	entry := &RequestLog{
		Provider: "openai",
		Model:    "gpt-4o",
		Prompt:   "hello",
		Status:   StatusSuccess,
		Cost:     decimal.Zero,
	}
	if err := db.CreateRequestLog(entry); err != nil {
		t.Fatalf("CreateRequestLog failed: %v", err)
	}
	if entry.ID == "" {
		t.Error("Entry ID not assigned")
	}
}

func TestRecentRequestsOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		entry := &RequestLog{
			Provider:  "openai",
			Model:     "gpt-4o",
			Prompt:    "hello",
			Status:    StatusSuccess,
			Cost:      decimal.Zero,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.CreateRequestLog(entry); err != nil {
			t.Fatalf("CreateRequestLog failed: %v", err)
		}
	}

	entries, err := db.RecentRequests(3, "")
	if err != nil {
		t.Fatalf("RecentRequests failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("Entries not in descending createdAt order at index %d", i)
		}
	}

	// Read path is idempotent: a second identical query returns the same rows.
	again, err := db.RecentRequests(3, "")
	if err != nil {
		t.Fatalf("RecentRequests (second call) failed: %v", err)
	}
	if len(again) != len(entries) {
		t.Fatalf("Second read returned %d entries, want %d", len(again), len(entries))
	}
	for i := range entries {
		if again[i].ID != entries[i].ID {
			t.Errorf("Second read differs at index %d: %s vs %s", i, again[i].ID, entries[i].ID)
		}
	}
}

func TestRecentRequestsUserFilter(t *testing.T) {
	db := setupTestDB(t)

	alice := "user-alice"
	bob := "user-bob"
	for _, uid := range []string{alice, alice, bob} {
		id := uid
		entry := &RequestLog{
			UserID:   &id,
			Provider: "openai",
			Model:    "gpt-4o",
			Prompt:   "hello",
			Status:   StatusSuccess,
			Cost:     decimal.Zero,
		}
		if err := db.CreateRequestLog(entry); err != nil {
			t.Fatalf("CreateRequestLog failed: %v", err)
		}
	}

	entries, err := db.RecentRequests(10, alice)
	if err != nil {
		t.Fatalf("RecentRequests failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.UserID == nil || *e.UserID != alice {
			t.Errorf("Entry %s not filtered to user %s", e.ID, alice)
		}
	}
}

func TestCountWindow(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.AddWindowEntry("user-1", "openai"); err != nil {
			t.Fatalf("AddWindowEntry failed: %v", err)
		}
	}
	if err := db.AddWindowEntry("user-1", "gemini"); err != nil {
		t.Fatalf("AddWindowEntry failed: %v", err)
	}

	count, err := db.CountWindow("user-1", "openai", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountWindow failed: %v", err)
	}
	if count != 3 {
		t.Errorf("CountWindow = %d, want 3", count)
	}

	// A cutoff in the future excludes everything.
	count, err = db.CountWindow("user-1", "openai", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("CountWindow failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountWindow with future cutoff = %d, want 0", count)
	}
}
