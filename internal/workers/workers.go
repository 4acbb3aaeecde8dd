package workers

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Device tokens go stale when the app is reinstalled or the device is
// retired; registration refreshes created_at, so anything old enough
// has not opened the app in months.
const staleTokenDays = 180

// StartTokenCleanupWorker prunes stale push tokens once a day until
// ctx is cancelled.
func StartTokenCleanupWorker(ctx context.Context, db *pgxpool.Pool) {
	ticker := time.NewTicker(24 * time.Hour)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cleanupStaleTokens(ctx, db)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func cleanupStaleTokens(ctx context.Context, db *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	tag, err := db.Exec(ctx, `DELETE FROM device_tokens WHERE created_at < NOW() - make_interval(days => $1)`,
		staleTokenDays)
	if err != nil {
		log.Printf("Token cleanup failed: %v", err)
		return
	}
	if tag.RowsAffected() > 0 {
		log.Printf("Token cleanup removed %d stale device tokens", tag.RowsAffected())
	}
}
