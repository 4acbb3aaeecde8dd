package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playRushAPI/internal/notification"
)

// NotificationService stores device push tokens and sends streak
// milestone pushes. Push delivery is strictly best-effort.
type NotificationService struct {
	db           *pgxpool.Pool
	pushProvider notification.PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider injects the FCM (or mock) provider after startup.
func (s *NotificationService) SetPushProvider(p notification.PushProvider) {
	s.pushProvider = p
}

// RegisterDevice upserts a push token for the caller.
func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (token) DO UPDATE SET user_id = $2, platform = $4, created_at = NOW()
	`, uuid.New(), userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// NotifyStreakMilestone pushes a celebration when a milestone badge is
// earned. Failures are logged and swallowed.
func (s *NotificationService) NotifyStreakMilestone(ctx context.Context, userID uuid.UUID, streak int) {
	if s.pushProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("NotificationService: failed to load tokens for %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := fmt.Sprintf("%d-day streak!", streak)
	body := "You just hit a streak milestone. Bonus coins are in your pocket."
	data := map[string]any{"type": "streak_milestone", "streak": streak}

	if err := s.pushProvider.SendPush(ctx, tokens, title, body, data); err != nil {
		log.Printf("NotificationService: milestone push failed for %s: %v", userID, err)
	}
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
