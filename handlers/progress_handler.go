package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"playRushAPI/internal/game"
	"playRushAPI/internal/progress"
	"playRushAPI/middleware"
	"playRushAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// GetProfile returns the authoritative snapshot, settling today's
// streak state first. GET /users/me.
func (h *ProgressHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.progressService.GetProfile(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// CompleteGame runs the authoritative reducer for a finished session.
// POST /users/game-complete.
func (h *ProgressHandler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var ev game.CompletionEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.progressService.CompleteGame(ctx, clerkID, ev)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// UseStreakFreeze applies the manual freeze. POST /users/streak-freeze.
func (h *ProgressHandler) UseStreakFreeze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.progressService.UseStreakFreeze(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// AddBonusPoints credits the double-points ad reward.
// POST /users/bonus-points.
func (h *ProgressHandler) AddBonusPoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Points int `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.progressService.AddBonusPoints(ctx, clerkID, req.Points)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// AddCoins credits coins. POST /users/coins/add.
func (h *ProgressHandler) AddCoins(w http.ResponseWriter, r *http.Request) {
	h.coinOp(w, r, h.progressService.AddCoins)
}

// SpendCoins debits coins with the authoritative balance check.
// POST /users/coins/spend.
func (h *ProgressHandler) SpendCoins(w http.ResponseWriter, r *http.Request) {
	h.coinOp(w, r, h.progressService.SpendCoins)
}

func (h *ProgressHandler) coinOp(w http.ResponseWriter, r *http.Request, op func(context.Context, string, int) (*progress.UserProgress, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := op(ctx, clerkID, req.Amount)
	if err != nil {
		if errors.Is(err, progress.ErrInsufficientCoins) {
			respondWithError(w, http.StatusConflict, "Insufficient coins")
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// Reset restores the default record. POST /users/reset.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	profile, err := h.progressService.Reset(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}
