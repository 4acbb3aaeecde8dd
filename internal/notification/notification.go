package notification

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken is one registered push target for a user.
type DeviceToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"` // ios | android | web
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RegisterDeviceRequest registers a push token for the caller.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}
