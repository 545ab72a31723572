package service

import (
	"context"

	"stakehouse/events"
	"stakehouse/models"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, address string) (*models.Wallet, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AddBalance(ctx context.Context, address string, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) DeductBalance(ctx context.Context, address string, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) Update(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByStatus(ctx context.Context, status models.GameStatus) ([]*models.Game, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetByPlayer(ctx context.Context, address string, limit int) ([]*models.Game, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

// MockBonusRepository is a mock implementation of BonusRepository
type MockBonusRepository struct {
	mock.Mock
}

func (m *MockBonusRepository) GetByAddress(ctx context.Context, address string) (*models.BonusEntry, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BonusEntry), args.Error(1)
}

func (m *MockBonusRepository) AddAmount(ctx context.Context, address string, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockBonusRepository) Zero(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBonusRepository) GetAllPositive(ctx context.Context) ([]*models.BonusEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BonusEntry), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func (m *MockSettingsRepository) GetOrCreate(ctx context.Context, defaults *models.PlatformSettings) (*models.PlatformSettings, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings *models.PlatformSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, entry *models.BalanceEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAddress(ctx context.Context, address string, limit int) ([]*models.BalanceEntry, error) {
	args := m.Called(ctx, address, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher. Publish
// calls are recorded without expectations so services can emit freely.
type MockEventPublisher struct {
	mock.Mock
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// MockTokenClient is a mock implementation of the external token ledger
type MockTokenClient struct {
	mock.Mock
}

func (m *MockTokenClient) Transfer(ctx context.Context, to string, amount int64) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

func (m *MockTokenClient) TransferFrom(ctx context.Context, from, to string, amount int64) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}

func (m *MockTokenClient) BalanceOf(ctx context.Context, address string) (int64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTokenClient) Whitelisted(ctx context.Context, address string) (bool, error) {
	args := m.Called(ctx, address)
	return args.Bool(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback are expectation-driven; repository getters return whatever was
// wired with SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	walletRepo   WalletRepository
	gameRepo     GameRepository
	bonusRepo    BonusRepository
	settingsRepo SettingsRepository
	historyRepo  BalanceHistoryRepository
	eventBus     EventPublisher
}

// SetRepositories wires the repositories this unit of work hands out.
// Pass nil for repositories the test does not touch.
func (m *MockUnitOfWork) SetRepositories(wallet WalletRepository, game GameRepository, bonus BonusRepository, settings SettingsRepository, history BalanceHistoryRepository) {
	m.walletRepo = wallet
	m.gameRepo = game
	m.bonusRepo = bonus
	m.settingsRepo = settings
	m.historyRepo = history
	m.eventBus = &MockEventPublisher{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) BonusRepository() BonusRepository {
	return m.bonusRepo
}

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// PublishedEvents returns the events captured by the wired event bus.
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.eventBus.(*MockEventPublisher).Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
