package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"playRushAPI/handlers"
	"playRushAPI/services"
	"playRushAPI/tests/helpers"
)

func TestWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test_secret")

	handler := handlers.NewWebhookHandler(nil)
	payload := helpers.MockClerkWebhookPayload("user.created", "user_test_sig")

	// No svix headers at all.
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	handler.HandleClerkWebhook(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unsigned request: status = %d, want 401", rr.Code)
	}

	// Signed with the wrong secret.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	helpers.SignClerkWebhook(req, "whsec_wrong_secret", payload)
	rr = httptest.NewRecorder()
	handler.HandleClerkWebhook(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrongly signed request: status = %d, want 401", rr.Code)
	}
}

func TestWebhookUserLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test_secret")

	userService := services.NewUserService(pool)
	handler := handlers.NewWebhookHandler(userService)
	ctx := context.Background()
	clerkID := helpers.TestClerkID()

	send := func(eventType string) *httptest.ResponseRecorder {
		payload := helpers.MockClerkWebhookPayload(eventType, clerkID)
		req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		helpers.SignClerkWebhook(req, "whsec_test_secret", payload)
		rr := httptest.NewRecorder()
		handler.HandleClerkWebhook(rr, req)
		return rr
	}

	if rr := send("user.created"); rr.Code != http.StatusOK {
		t.Fatalf("user.created: status = %d, body = %s", rr.Code, rr.Body.String())
	}
	created, err := userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		t.Fatalf("user should exist after user.created: %v", err)
	}
	if created.Email != "test.player@example.com" || created.Username != "testplayer" {
		t.Errorf("provisioned fields wrong: %+v", created)
	}

	if rr := send("user.updated"); rr.Code != http.StatusOK {
		t.Fatalf("user.updated: status = %d", rr.Code)
	}
	updated, err := userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		t.Fatalf("GetUserByClerkID after update: %v", err)
	}
	if updated.Username != "updatedplayer" {
		t.Errorf("username = %q, want updatedplayer", updated.Username)
	}

	if rr := send("user.deleted"); rr.Code != http.StatusOK {
		t.Fatalf("user.deleted: status = %d", rr.Code)
	}
	if _, err := userService.GetUserByClerkID(ctx, clerkID); err == nil {
		t.Error("user should be gone after user.deleted")
	}
}
