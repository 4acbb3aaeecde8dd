package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playRushAPI/internal/user"
)

// UserService manages the identity rows Clerk provisions via webhook.
type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:          uuid.New().String(),
		ClerkID:     req.ClerkID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, display_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, clerk_id, email, username, display_name, image_url, email_verified, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Username, u.DisplayName, u.ImageURL, u.CreatedAt, u.UpdatedAt,
	).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.DisplayName, &u.ImageURL, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, display_name, image_url, email_verified, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.DisplayName, &u.ImageURL, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users SET
		username = COALESCE(NULLIF($2, ''), username),
		display_name = COALESCE(NULLIF($3, ''), display_name),
		image_url = COALESCE(NULLIF($4, ''), image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, username, display_name, image_url, email_verified, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID, req.Username, req.DisplayName, req.ImageURL).Scan(
		&u.ID, &u.ClerkID, &u.Email, &u.Username, &u.DisplayName, &u.ImageURL, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// DeleteUserByClerkID removes the user and, via FK cascade, their
// progress row, scores and device tokens.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
