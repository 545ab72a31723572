package api

import (
	"net/http"
	"time"

	"stakehouse/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NewRouter constructs the HTTP router with all API endpoints registered.
func NewRouter(wallets service.WalletService, games service.GameService, bonuses service.BonusService, settings service.SettingsService) http.Handler {
	h := NewHandler(wallets, games, bonuses, settings)
	r := chi.NewRouter()

	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/wallets/{address}", func(r chi.Router) {
		r.Get("/", h.GetWalletHandler)
		r.Get("/history", h.GetHistoryHandler)
		r.Post("/deposits", h.DepositHandler)
		r.Post("/withdrawals", h.WithdrawHandler)
		r.Post("/bonus-credits", h.CreditBonusHandler)
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.OpenGameHandler)
		r.Get("/{id}", h.GetGameHandler)
		r.Post("/{id}/complete", h.CompleteGameHandler)
		r.Post("/{id}/quit", h.MutualQuitHandler)
	})

	r.Route("/bonuses", func(r chi.Router) {
		r.Post("/grants", h.GrantBonusesHandler)
		r.Get("/{address}", h.GetBonusHandler)
		r.Post("/{address}/claims", h.ClaimBonusHandler)
	})

	r.Post("/sweeps", h.SweepHandler)

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.GetSettingsHandler)
		r.Put("/fee-rate", h.SetFeeRateHandler)
		r.Put("/fee-wallet", h.SetFeeWalletHandler)
		r.Put("/max-bonus", h.SetMaxBonusHandler)
		r.Put("/bonus-account", h.SetBonusAccountHandler)
		r.Put("/owner", h.TransferOwnershipHandler)
	})

	return r
}

// requestLogger tags each request with an id and logs method, path and
// duration on completion.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		log.WithFields(log.Fields{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(start).String(),
		}).Debug("Request handled")
	})
}
