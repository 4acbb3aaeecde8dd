package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"playRushAPI/internal/notification"
	"playRushAPI/middleware"
	"playRushAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// RegisterDevice stores a push token for milestone notifications.
// POST /notifications/register-device.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Token is required")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
