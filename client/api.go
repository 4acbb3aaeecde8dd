package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"playRushAPI/internal/adconfig"
	"playRushAPI/internal/game"
	"playRushAPI/internal/leaderboard"
	"playRushAPI/internal/progress"
)

// submitTimeout bounds every backend round-trip. On expiry the caller
// keeps its optimistic state; nothing retries automatically.
const submitTimeout = 8 * time.Second

// APIClient talks the backend contract: profile fetch, completion
// submit, leaderboard, ad config.
type APIClient struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// NewAPIClient builds a client. token supplies the current Clerk
// session token per request (it rotates).
func NewAPIClient(baseURL string, token func() string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: submitTimeout},
		token:   token,
	}
}

// CompleteGameResult is the authoritative completion response.
type CompleteGameResult struct {
	PointsEarned          int                   `json:"pointsEarned"`
	StreakJustIncremented bool                  `json:"streakJustIncremented"`
	Profile               progress.UserProgress `json:"profile"`
}

// FetchProfile retrieves the authoritative snapshot, or an error when
// offline/unauthenticated.
func (c *APIClient) FetchProfile(ctx context.Context) (*progress.UserProgress, error) {
	var out progress.UserProgress
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostGameComplete submits one completion event and returns the
// server's authoritative result.
func (c *APIClient) PostGameComplete(ctx context.Context, ev game.CompletionEvent) (*CompleteGameResult, error) {
	var out CompleteGameResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/game-complete", ev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostBonusPoints reports the double-points ad payout.
func (c *APIClient) PostBonusPoints(ctx context.Context, points int) (*progress.UserProgress, error) {
	body := map[string]int{"points": points}
	var out progress.UserProgress
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/bonus-points", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitScore sends a weekly leaderboard entry.
func (c *APIClient) SubmitScore(ctx context.Context, req leaderboard.SubmitRequest) (*leaderboard.SubmitResponse, error) {
	var out leaderboard.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/leaderboard/submit", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchAdConfig retrieves the remote ad-gating config (public, no
// auth). Callers cache it; see AdConfigCache.
func (c *APIClient) FetchAdConfig(ctx context.Context) (*adconfig.Config, error) {
	var out struct {
		Config adconfig.Config `json:"config"`
	}
	if err := c.do(ctx, http.MethodGet, "/ads/config", nil, &out); err != nil {
		return nil, err
	}
	return &out.Config, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
