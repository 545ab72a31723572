package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"stakehouse/models"
	"stakehouse/service"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// actorHeader carries the authenticated caller address. It is injected by
// the fronting gateway after signature verification; this service trusts it
// the way it trusts its own database.
const actorHeader = "X-Actor-Address"

// HandlerProvider wraps the domain services and exposes HTTP handlers.
type HandlerProvider struct {
	wallets  service.WalletService
	games    service.GameService
	bonuses  service.BonusService
	settings service.SettingsService
}

// NewHandler returns a new handler provider.
func NewHandler(wallets service.WalletService, games service.GameService, bonuses service.BonusService, settings service.SettingsService) *HandlerProvider {
	return &HandlerProvider{
		wallets:  wallets,
		games:    games,
		bonuses:  bonuses,
		settings: settings,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps sentinel errors onto HTTP statuses. Unknown errors
// become 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrNotBonusAccount):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDuplicateGameID),
		errors.Is(err, models.ErrGameNotInitial),
		errors.Is(err, models.ErrInsufficientBalance),
		errors.Is(err, models.ErrNoBonus):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotParticipant),
		errors.Is(err, models.ErrUnequalArrayLength),
		errors.Is(err, models.ErrMaxBonusExceeded),
		errors.Is(err, models.ErrInvalidFeeRate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, "token ledger transfer failed")
	default:
		log.WithError(err).Error("Unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func actor(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
		} else {
			writeError(w, http.StatusBadRequest, "invalid JSON")
		}
		return false
	}
	return true
}

func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

// --- Wallet handlers ---

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type walletResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

// DepositHandler handles POST /wallets/{address}/deposits. The address in
// the path must match the authenticated caller; deposits pull from the
// caller's own external token balance.
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address != actor(r) {
		writeError(w, http.StatusForbidden, "can only deposit to your own wallet")
		return
	}

	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	wallet, err := h.wallets.Deposit(r.Context(), address, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{Address: wallet.Address, Balance: wallet.Balance})
}

// WithdrawHandler handles POST /wallets/{address}/withdrawals. The address
// in the path must match the authenticated caller; users move only their
// own balance.
func (h *HandlerProvider) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address != actor(r) {
		writeError(w, http.StatusForbidden, "can only withdraw from your own wallet")
		return
	}

	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	wallet, err := h.wallets.Withdraw(r.Context(), address, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{Address: wallet.Address, Balance: wallet.Balance})
}

// CreditBonusHandler handles POST /wallets/{address}/bonus-credits. Only the
// configured bonus account passes the service-side caller check.
func (h *HandlerProvider) CreditBonusHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if err := h.wallets.CreditBonus(r.Context(), actor(r), address, req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetWalletHandler handles GET /wallets/{address}. Addresses that never
// deposited read as zero-balance wallets.
func (h *HandlerProvider) GetWalletHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	wallet, err := h.wallets.GetWallet(r.Context(), address)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := walletResponse{Address: address}
	if wallet != nil {
		resp.Balance = wallet.Balance
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyEntryResponse struct {
	BalanceBefore int64            `json:"balanceBefore"`
	BalanceAfter  int64            `json:"balanceAfter"`
	ChangeAmount  int64            `json:"changeAmount"`
	EntryType     models.EntryType `json:"entryType"`
	RelatedID     *string          `json:"relatedId,omitempty"`
	CreatedAt     string           `json:"createdAt"`
}

// GetHistoryHandler handles GET /wallets/{address}/history
func (h *HandlerProvider) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	entries, err := h.wallets.GetHistory(r.Context(), address, limitParam(r, 50))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, historyEntryResponse{
			BalanceBefore: e.BalanceBefore,
			BalanceAfter:  e.BalanceAfter,
			ChangeAmount:  e.ChangeAmount,
			EntryType:     e.EntryType,
			RelatedID:     e.RelatedID,
			CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Game handlers ---

type openGameRequest struct {
	ID      string `json:"id"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Deposit int64  `json:"deposit"`
}

type gameResponse struct {
	ID         string  `json:"id"`
	Player1    string  `json:"player1"`
	Player2    string  `json:"player2"`
	Deposit    int64   `json:"deposit"`
	FeeRateBps int32   `json:"feeRateBps"`
	Winner     *string `json:"winner,omitempty"`
	Status     string  `json:"status"`
}

func toGameResponse(g *models.Game) gameResponse {
	return gameResponse{
		ID:         g.ID,
		Player1:    g.Player1,
		Player2:    g.Player2,
		Deposit:    g.Deposit,
		FeeRateBps: g.FeeRateBps,
		Winner:     g.Winner,
		Status:     string(g.Status),
	}
}

// OpenGameHandler handles POST /games
func (h *HandlerProvider) OpenGameHandler(w http.ResponseWriter, r *http.Request) {
	var req openGameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || req.Player1 == "" || req.Player2 == "" {
		writeError(w, http.StatusBadRequest, "id, player1 and player2 are required")
		return
	}
	if req.Deposit <= 0 {
		writeError(w, http.StatusBadRequest, "deposit must be positive")
		return
	}

	game, err := h.games.OpenGame(r.Context(), actor(r), req.ID, req.Player1, req.Player2, req.Deposit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGameResponse(game))
}

type completeGameRequest struct {
	Winner string `json:"winner"`
}

type gameResultResponse struct {
	Game   gameResponse `json:"game"`
	Winner string       `json:"winner"`
	Payout int64        `json:"payout"`
	Fee    int64        `json:"fee"`
}

// CompleteGameHandler handles POST /games/{id}/complete
func (h *HandlerProvider) CompleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req completeGameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Winner == "" {
		writeError(w, http.StatusBadRequest, "winner is required")
		return
	}

	result, err := h.games.CompleteGame(r.Context(), actor(r), id, req.Winner)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResultResponse{
		Game:   toGameResponse(result.Game),
		Winner: result.Winner,
		Payout: result.Payout,
		Fee:    result.Fee,
	})
}

// MutualQuitHandler handles POST /games/{id}/quit
func (h *HandlerProvider) MutualQuitHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, err := h.games.MutualQuit(r.Context(), actor(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGameResponse(game))
}

// GetGameHandler handles GET /games/{id}
func (h *HandlerProvider) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	writeJSON(w, http.StatusOK, toGameResponse(game))
}

// --- Bonus handlers ---

type grantBonusesRequest struct {
	Addresses []string `json:"addresses"`
	Amounts   []int64  `json:"amounts"`
}

// GrantBonusesHandler handles POST /bonuses/grants
func (h *HandlerProvider) GrantBonusesHandler(w http.ResponseWriter, r *http.Request) {
	var req grantBonusesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.bonuses.GrantBonuses(r.Context(), actor(r), req.Addresses, req.Amounts); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"granted": len(req.Addresses)})
}

type bonusResponse struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

// ClaimBonusHandler handles POST /bonuses/{address}/claims. The address in
// the path must match the authenticated caller; users claim only their own
// accrual.
func (h *HandlerProvider) ClaimBonusHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address != actor(r) {
		writeError(w, http.StatusForbidden, "can only claim your own bonus")
		return
	}

	amount, err := h.bonuses.Claim(r.Context(), address)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bonusResponse{Address: address, Amount: amount})
}

// GetBonusHandler handles GET /bonuses/{address}
func (h *HandlerProvider) GetBonusHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	entry, err := h.bonuses.GetBonus(r.Context(), address)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := bonusResponse{Address: address}
	if entry != nil {
		resp.Amount = entry.Amount
	}
	writeJSON(w, http.StatusOK, resp)
}

// SweepHandler handles POST /sweeps
func (h *HandlerProvider) SweepHandler(w http.ResponseWriter, r *http.Request) {
	amount, err := h.bonuses.Sweep(r.Context(), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"swept": amount})
}

// --- Settings handlers ---

type settingsResponse struct {
	Owner        string `json:"owner"`
	FeeWallet    string `json:"feeWallet"`
	FeeRateBps   int32  `json:"feeRateBps"`
	MaxBonus     int64  `json:"maxBonus"`
	BonusAccount string `json:"bonusAccount"`
}

// GetSettingsHandler handles GET /settings
func (h *HandlerProvider) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "settings not initialized")
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		Owner:        settings.Owner,
		FeeWallet:    settings.FeeWallet,
		FeeRateBps:   settings.FeeRateBps,
		MaxBonus:     settings.MaxBonus,
		BonusAccount: settings.BonusAccount,
	})
}

type feeRateRequest struct {
	FeeRateBps int32 `json:"feeRateBps"`
}

// SetFeeRateHandler handles PUT /settings/fee-rate
func (h *HandlerProvider) SetFeeRateHandler(w http.ResponseWriter, r *http.Request) {
	var req feeRateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.settings.SetPlatformFee(r.Context(), actor(r), req.FeeRateBps); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type addressRequest struct {
	Address string `json:"address"`
}

// SetFeeWalletHandler handles PUT /settings/fee-wallet
func (h *HandlerProvider) SetFeeWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.settings.SetFeeWallet(r.Context(), actor(r), req.Address); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetMaxBonusHandler handles PUT /settings/max-bonus
func (h *HandlerProvider) SetMaxBonusHandler(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.settings.SetMaxBonus(r.Context(), actor(r), req.Amount); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetBonusAccountHandler handles PUT /settings/bonus-account
func (h *HandlerProvider) SetBonusAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.settings.SetBonusAccount(r.Context(), actor(r), req.Address); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TransferOwnershipHandler handles PUT /settings/owner
func (h *HandlerProvider) TransferOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.settings.TransferOwnership(r.Context(), actor(r), req.Address); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
