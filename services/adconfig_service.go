package services

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"playRushAPI/internal/adconfig"
)

// AdConfigService serves the ad-gating configuration from a TOML file.
// The file is re-read whenever its mtime changes, so ops can hot-tune
// interstitial frequency or flip the kill switch without a restart.
// Missing or broken files fall back to the shipped defaults.
type AdConfigService struct {
	path string

	mu      sync.RWMutex
	config  adconfig.Config
	modTime time.Time
	loaded  bool
}

func NewAdConfigService(path string) *AdConfigService {
	s := &AdConfigService{path: path, config: adconfig.Defaults()}
	s.reload()
	return s
}

// Get returns the current configuration, reloading the file first if it
// changed on disk.
func (s *AdConfigService) Get() adconfig.Config {
	s.maybeReload()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *AdConfigService) maybeReload() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	s.mu.RLock()
	stale := !s.loaded || info.ModTime().After(s.modTime)
	s.mu.RUnlock()

	if stale {
		s.reload()
	}
}

func (s *AdConfigService) reload() {
	info, err := os.Stat(s.path)
	if err != nil {
		log.Printf("AdConfigService: %s not found, serving defaults", s.path)
		return
	}

	cfg := adconfig.Defaults()
	if _, err := toml.DecodeFile(s.path, &cfg); err != nil {
		log.Printf("AdConfigService: failed to parse %s, keeping previous config: %v", s.path, err)
		return
	}

	s.mu.Lock()
	s.config = cfg
	s.modTime = info.ModTime()
	s.loaded = true
	s.mu.Unlock()
	log.Printf("AdConfigService: loaded ad config version %s from %s", cfg.Version, s.path)
}
