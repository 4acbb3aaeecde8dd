package user

import "time"

// User is the account identity row. Progression lives separately in
// user_progress; this record only carries what Clerk provisions.
type User struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerkId"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateUserRequest provisions a user from a Clerk webhook event.
type CreateUserRequest struct {
	ClerkID     string `json:"clerkId" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Username    string `json:"username" validate:"required,min=3,max=30"`
	DisplayName string `json:"displayName"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// UpdateProfileRequest mutates display fields only.
type UpdateProfileRequest struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
