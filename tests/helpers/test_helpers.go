package helpers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB connects to the test database, skipping the test when no
// database is configured so the suite stays runnable locally.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping database test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB removes rows created by the test run. user_progress and
// device_tokens cascade from users.
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE clerk_id LIKE 'user_test_%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	pool.Close()
}

// TestClerkID returns a unique Clerk-style user ID for this test run.
func TestClerkID() string {
	return "user_test_" + time.Now().Format("20060102150405.000000000")
}

// GenerateMockClerkJWT builds a Clerk-shaped session token. It is not
// verifiable against real Clerk keys; handler-level tests inject the
// claims via context instead, this exists for request-shape tests.
func GenerateMockClerkJWT(clerkID string) (string, error) {
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// MockClerkWebhookPayload builds a Clerk webhook body for the given
// event type.
func MockClerkWebhookPayload(eventType string, clerkID string) []byte {
	payload := ""

	switch eventType {
	case "user.created":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Test",
				"last_name": "Player",
				"username": "testplayer",
				"image_url": "https://example.com/avatar.png",
				"email_addresses": [{
					"email_address": "test.player@example.com",
					"verification": {"status": "verified"}
				}]
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)

	case "user.updated":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Updated",
				"last_name": "Player",
				"username": "updatedplayer",
				"image_url": "https://example.com/new-avatar.png",
				"email_addresses": [{
					"email_address": "test.player@example.com",
					"verification": {"status": "verified"}
				}]
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)

	case "user.deleted":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"deleted": true
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)
	}

	return []byte(payload)
}

// SignClerkWebhook stamps svix headers on a webhook request the way
// Clerk's delivery does: HMAC-SHA256 over "id.timestamp.body".
func SignClerkWebhook(r *http.Request, secret string, body []byte) {
	id := "msg_test_123"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	signedContent := fmt.Sprintf("%s.%s.%s", id, timestamp, string(body))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent))
	signature := hex.EncodeToString(mac.Sum(nil))

	r.Header.Set("svix-id", id)
	r.Header.Set("svix-timestamp", timestamp)
	r.Header.Set("svix-signature", "v1,"+signature)
}
