package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Rrens/health-insights/internal/security"
)

func TestJWTManager_IssueAndValidate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	userID := uuid.New()
	email := "test@example.com"

	token, issued, err := manager.IssueAccessToken(userID, email)
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	if token == "" {
		t.Fatal("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID mismatch: got %v, want %v", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("email mismatch: got %v, want %v", claims.Email, email)
	}
	if claims.TokenID() != issued.TokenID() {
		t.Errorf("token id mismatch: got %v, want %v", claims.TokenID(), issued.TokenID())
	}
}

func TestJWTManager_TokenIDsAreUnique(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)
	userID := uuid.New()

	_, first, err := manager.IssueAccessToken(userID, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := manager.IssueAccessToken(userID, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if first.TokenID() == second.TokenID() {
		t.Error("expected distinct token ids for consecutive sign-ins")
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", 15*time.Minute)

	if _, err := manager.ValidateAccessToken("invalid-token"); err == nil {
		t.Error("expected error for invalid token, got nil")
	}

	if _, err := manager.ValidateAccessToken(""); err == nil {
		t.Error("expected error for empty token, got nil")
	}

	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute)
	token, _, _ := otherManager.IssueAccessToken(uuid.New(), "test@example.com")

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", -time.Minute)

	token, _, err := manager.IssueAccessToken(uuid.New(), "test@example.com")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	accessTTL := 30 * time.Minute
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", accessTTL)

	if manager.AccessTokenTTL() != accessTTL {
		t.Errorf("access token TTL mismatch: got %v, want %v", manager.AccessTokenTTL(), accessTTL)
	}
}
