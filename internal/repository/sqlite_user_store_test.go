package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

func openTestStore(t *testing.T) *SQLiteUserStore {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s, err := NewSQLiteUserStore(filepath.Join(t.TempDir(), "users.db"), log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndFetchUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$fakehash",
		Tier:         models.TierPro,
		IsActive:     true,
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("id not assigned")
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if byName.ID != u.ID || byName.Tier != models.TierPro || !byName.IsActive {
		t.Fatalf("fetched user = %+v", byName)
	}

	byID, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if byID.Username != "alice" || byID.Email != "alice@example.com" {
		t.Fatalf("fetched user = %+v", byID)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h", Tier: models.TierFree, IsActive: true}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &models.User{Username: "bob", Email: "other@example.com", PasswordHash: "h", Tier: models.TierFree, IsActive: true}
	err := s.CreateUser(ctx, dup)
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeUserExists {
		t.Fatalf("duplicate create returned %v, want USER_EXISTS", err)
	}
}

func TestUnknownUserIsInvalidCredentials(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetUserByUsername(context.Background(), "ghost")
	var de *models.DomainError
	if !errors.As(err, &de) || de.Code != models.ErrCodeInvalidCredentials {
		t.Fatalf("lookup returned %v, want INVALID_CREDENTIALS", err)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "carol", Email: "carol@example.com", PasswordHash: "h", Tier: models.TierFree, IsActive: true}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	k := &models.APIKey{
		UserID:   u.ID,
		Name:     "default",
		Prefix:   "si_0a1b2c3d",
		Hash:     "$2a$10$fakehash",
		IsActive: true,
	}
	if err := s.CreateAPIKey(ctx, k); err != nil {
		t.Fatalf("create key: %v", err)
	}

	keys, err := s.GetAPIKeysByPrefix(ctx, "si_0a1b2c3d")
	if err != nil {
		t.Fatalf("by prefix: %v", err)
	}
	if len(keys) != 1 || keys[0].ID != k.ID || keys[0].UserID != u.ID {
		t.Fatalf("lookup = %+v", keys)
	}
	if !keys[0].LastUsedAt.IsZero() {
		t.Fatal("fresh key has a last-used time")
	}

	if err := s.TouchAPIKey(ctx, k.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	keys, err = s.GetAPIKeysByPrefix(ctx, "si_0a1b2c3d")
	if err != nil {
		t.Fatalf("by prefix: %v", err)
	}
	if keys[0].LastUsedAt.IsZero() {
		t.Fatal("touch did not update last-used time")
	}

	if keys, _ := s.GetAPIKeysByPrefix(ctx, "si_ffffffff"); len(keys) != 0 {
		t.Fatalf("unexpected keys for foreign prefix: %+v", keys)
	}
}

func TestGetAPIKeysByUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "dave", Email: "dave@example.com", PasswordHash: "h", Tier: models.TierPro, IsActive: true}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	other := &models.User{Username: "eve", Email: "eve@example.com", PasswordHash: "h", Tier: models.TierFree, IsActive: true}
	if err := s.CreateUser(ctx, other); err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i, prefix := range []string{"si_11111111", "si_22222222"} {
		k := &models.APIKey{
			UserID:    u.ID,
			Name:      "key",
			Prefix:    prefix,
			Hash:      "$2a$10$fakehash",
			IsActive:  true,
			CreatedAt: time.Date(2024, 6, 1, 0, 0, i, 0, time.UTC),
		}
		if err := s.CreateAPIKey(ctx, k); err != nil {
			t.Fatalf("create key: %v", err)
		}
	}
	foreign := &models.APIKey{UserID: other.ID, Name: "key", Prefix: "si_33333333", Hash: "$2a$10$fakehash", IsActive: true}
	if err := s.CreateAPIKey(ctx, foreign); err != nil {
		t.Fatalf("create key: %v", err)
	}

	keys, err := s.GetAPIKeysByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("listed %d keys, want 2", len(keys))
	}
	// newest first
	if keys[0].Prefix != "si_22222222" || keys[1].Prefix != "si_11111111" {
		t.Fatalf("order = %s, %s", keys[0].Prefix, keys[1].Prefix)
	}
	for _, k := range keys {
		if k.UserID != u.ID {
			t.Fatalf("foreign key in listing: %+v", k)
		}
	}
}
