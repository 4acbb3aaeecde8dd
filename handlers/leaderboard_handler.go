package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"playRushAPI/internal/game"
	"playRushAPI/internal/leaderboard"
	"playRushAPI/middleware"
	"playRushAPI/services"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

// Submit records a weekly score. POST /leaderboard/submit.
func (h *LeaderboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req leaderboard.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.leaderboardService.Submit(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetBoard returns a week's ranking for one game.
// GET /leaderboard/{weekId}?gameId=flappy&limit=50.
func (h *LeaderboardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetClerkID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	weekID := mux.Vars(r)["weekId"]
	gameID := game.ID(r.URL.Query().Get("gameId"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	board, err := h.leaderboardService.GetBoard(ctx, weekID, gameID, limit)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, board)
}
