package api

import (
	"net/http"
	"time"

	"stakehouse/service"
)

// NewServer creates and returns a configured *http.Server for the ledger API.
func NewServer(addr string, wallets service.WalletService, games service.GameService, bonuses service.BonusService, settings service.SettingsService) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(wallets, games, bonuses, settings),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
