package service

import (
	"context"

	"stakehouse/events"
	"stakehouse/models"
)

// WalletRepository defines the interface for wallet balance data access
type WalletRepository interface {
	// GetByAddress retrieves a wallet by address, nil if none exists
	GetByAddress(ctx context.Context, address string) (*models.Wallet, error)

	// GetOrCreate retrieves a wallet, creating a zero-balance row if absent
	GetOrCreate(ctx context.Context, address string) (*models.Wallet, error)

	// AddBalance credits a wallet atomically
	AddBalance(ctx context.Context, address string, amount int64) error

	// DeductBalance debits a wallet atomically, failing with
	// models.ErrInsufficientBalance if the balance cannot cover it
	DeductBalance(ctx context.Context, address string, amount int64) error
}

// GameRepository defines the interface for game record data access
type GameRepository interface {
	// Create inserts a new game, failing with models.ErrDuplicateGameID
	// if the id was ever used before
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by id, nil if unknown
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// Update persists a game's status, winner and resolution time
	Update(ctx context.Context, game *models.Game) error

	// GetByStatus returns all games in a given status
	GetByStatus(ctx context.Context, status models.GameStatus) ([]*models.Game, error)

	// GetByPlayer returns games a player participates in, newest first
	GetByPlayer(ctx context.Context, address string, limit int) ([]*models.Game, error)
}

// BonusRepository defines the interface for bonus accrual data access
type BonusRepository interface {
	// GetByAddress retrieves a bonus entry, nil if none exists
	GetByAddress(ctx context.Context, address string) (*models.BonusEntry, error)

	// AddAmount increments a user's accrued bonus (additive upsert)
	AddAmount(ctx context.Context, address string, amount int64) error

	// Zero atomically zeroes a user's accrual and returns the amount that
	// was accrued; returns 0 when there was nothing to claim
	Zero(ctx context.Context, address string) (int64, error)

	// GetAllPositive returns all entries with accrued bonus > 0
	GetAllPositive(ctx context.Context) ([]*models.BonusEntry, error)
}

// SettingsRepository defines the interface for platform settings data access
type SettingsRepository interface {
	// Get retrieves the settings row, nil if the system is not bootstrapped
	Get(ctx context.Context) (*models.PlatformSettings, error)

	// GetOrCreate retrieves the settings row, inserting the given defaults
	// if none exists yet
	GetOrCreate(ctx context.Context, defaults *models.PlatformSettings) (*models.PlatformSettings, error)

	// Update persists the settings row
	Update(ctx context.Context, settings *models.PlatformSettings) error
}

// BalanceHistoryRepository defines the interface for the wallet audit trail
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, entry *models.BalanceEntry) error

	// GetByAddress returns history for an address, newest first
	GetByAddress(ctx context.Context, address string, limit int) ([]*models.BalanceEntry, error)
}

// WalletService defines the interface for wallet operations
type WalletService interface {
	// Deposit pulls amount from the user's external token balance into
	// custody and credits the internal wallet
	Deposit(ctx context.Context, address string, amount int64) (*models.Wallet, error)

	// Withdraw debits the internal wallet and pushes amount back to the
	// user on the external ledger
	Withdraw(ctx context.Context, address string, amount int64) (*models.Wallet, error)

	// CreditBonus credits a wallet without an external transfer; only the
	// configured bonus account may call it
	CreditBonus(ctx context.Context, caller, address string, amount int64) error

	// GetWallet retrieves a wallet, nil if the address has never deposited
	GetWallet(ctx context.Context, address string) (*models.Wallet, error)

	// GetHistory returns the audit trail for an address, newest first
	GetHistory(ctx context.Context, address string, limit int) ([]*models.BalanceEntry, error)
}

// GameService defines the interface for the escrowed-game state machine
type GameService interface {
	// OpenGame locks both players' stakes and records a new game in the
	// initial state, snapshotting the current platform fee rate
	OpenGame(ctx context.Context, actor, id, player1, player2 string, deposit int64) (*models.Game, error)

	// CompleteGame declares a winner, credits the payout and forwards the
	// platform fee to the fee wallet; terminal
	CompleteGame(ctx context.Context, actor, id, winner string) (*models.GameResult, error)

	// MutualQuit returns both stakes unchanged; terminal, no fee
	MutualQuit(ctx context.Context, actor, id string) (*models.Game, error)

	// GetGame retrieves a game record, nil if unknown
	GetGame(ctx context.Context, id string) (*models.Game, error)
}

// BonusService defines the interface for bonus accrual operations
type BonusService interface {
	// GrantBonuses additively credits each user's accrual; all-or-nothing
	GrantBonuses(ctx context.Context, actor string, addresses []string, amounts []int64) error

	// Claim converts the caller's full accrual into an external token
	// transfer, zeroing the entry first
	Claim(ctx context.Context, address string) (int64, error)

	// GetBonus retrieves a user's accrual, nil if none
	GetBonus(ctx context.Context, address string) (*models.BonusEntry, error)

	// Sweep recovers the service's full external token balance to the
	// owner; escape hatch, not part of normal flow
	Sweep(ctx context.Context, actor string) (int64, error)
}

// SettingsService defines the interface for owner-managed configuration
type SettingsService interface {
	// EnsureSettings bootstraps the settings row on first run
	EnsureSettings(ctx context.Context, defaults *models.PlatformSettings) (*models.PlatformSettings, error)

	// GetSettings retrieves the current platform settings
	GetSettings(ctx context.Context) (*models.PlatformSettings, error)

	// SetPlatformFee sets the fee rate in basis points (0-10000)
	SetPlatformFee(ctx context.Context, actor string, bps int32) error

	// SetFeeWallet sets the address receiving platform fees
	SetFeeWallet(ctx context.Context, actor, wallet string) error

	// SetMaxBonus sets the per-grant bonus ceiling
	SetMaxBonus(ctx context.Context, actor string, amount int64) error

	// SetBonusAccount sets the address trusted to credit wallet bonuses
	SetBonusAccount(ctx context.Context, actor, address string) error

	// TransferOwnership hands the owner identity to a new address
	TransferOwnership(ctx context.Context, actor, newOwner string) error
}

// Authorizer is the pluggable authorization capability for administrative
// operations. The default implementation checks the acting address against
// the stored owner; stronger policies (quorum, timelock) can be substituted
// without touching ledger logic.
type Authorizer interface {
	Authorize(actor string, settings *models.PlatformSettings) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations.
// Every public operation runs inside exactly one unit of work; on failure
// the transaction rolls back with no partial state visible.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	WalletRepository() WalletRepository
	GameRepository() GameRepository
	BonusRepository() BonusRepository
	SettingsRepository() SettingsRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
