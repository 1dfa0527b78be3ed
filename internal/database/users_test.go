package database

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUpsertAndGetUser(t *testing.T) {
	db := setupTestDB(t)

	user := &User{ID: "user-1", PlanType: PlanFree, RequestsLimit: 100}
	if err := db.UpsertUser(user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	fetched, err := db.GetUser("user-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if fetched.PlanType != PlanFree {
		t.Errorf("PlanType = %s, want %s", fetched.PlanType, PlanFree)
	}

	// Upsert again with changed fields updates in place.
	user.RequestsLimit = 200
	if err := db.UpsertUser(user); err != nil {
		t.Fatalf("UpsertUser (update) failed: %v", err)
	}
	fetched, err = db.GetUser("user-1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if fetched.RequestsLimit != 200 {
		t.Errorf("RequestsLimit = %d, want 200", fetched.RequestsLimit)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUser("missing")
	if err == nil {
		t.Fatal("GetUser returned nil error for missing user")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestUpgradeUser(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertUser(&User{ID: "user-1", PlanType: PlanFree, RequestsLimit: 100}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	user, err := db.UpgradeUser("user-1")
	if err != nil {
		t.Fatalf("UpgradeUser failed: %v", err)
	}
	if user.PlanType != PlanPremium {
		t.Errorf("PlanType = %s, want %s", user.PlanType, PlanPremium)
	}
	if user.RequestsLimit != 10000 {
		t.Errorf("RequestsLimit = %d, want 10000", user.RequestsLimit)
	}
	if user.SubscriptionEndsAt == nil {
		t.Error("SubscriptionEndsAt not set")
	}
}

func TestUserStatsFor(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertUser(&User{ID: "user-1", PlanType: PlanFree, RequestsLimit: 100}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	uid := "user-1"
	costs := []string{"0.5", "0.25"}
	for _, c := range costs {
		entry := &RequestLog{
			UserID:   &uid,
			Provider: "openai",
			Model:    "gpt-4o",
			Prompt:   "hello",
			Status:   StatusSuccess,
			Cost:     decimal.RequireFromString(c),
		}
		if err := db.CreateRequestLog(entry); err != nil {
			t.Fatalf("CreateRequestLog failed: %v", err)
		}
	}

	stats, err := db.UserStatsFor("user-1")
	if err != nil {
		t.Fatalf("UserStatsFor failed: %v", err)
	}
	if stats.RequestsUsed != 2 {
		t.Errorf("RequestsUsed = %d, want 2", stats.RequestsUsed)
	}
	if stats.RequestsLimit != 100 {
		t.Errorf("RequestsLimit = %d, want 100", stats.RequestsLimit)
	}
	if !stats.TotalCost.Equal(decimal.RequireFromString("0.75")) {
		t.Errorf("TotalCost = %s, want 0.75", stats.TotalCost)
	}
}
