package handlers

import (
	"net/http"

	"playRushAPI/internal/adconfig"
	"playRushAPI/services"
)

type AdsHandler struct {
	adConfigService *services.AdConfigService
}

func NewAdsHandler(adConfigService *services.AdConfigService) *AdsHandler {
	return &AdsHandler{
		adConfigService: adConfigService,
	}
}

// GetConfig serves the current ad-gating thresholds. Public (no auth):
// clients fetch it before login and cache it for about an hour.
// GET /ads/config.
func (h *AdsHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, struct {
		Config adconfig.Config `json:"config"`
	}{Config: h.adConfigService.Get()})
}
