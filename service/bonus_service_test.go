package service

import (
	"context"
	"errors"
	"testing"

	"stakehouse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBonusService_GrantBonuses(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockBonusRepo.On("AddAmount", ctx, "addr_a", int64(1000)).Return(nil)
	mockBonusRepo.On("AddAmount", ctx, "addr_b", int64(2500)).Return(nil)

	err := service.GrantBonuses(ctx, "addr_owner", []string{"addr_a", "addr_b"}, []int64{1000, 2500})

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockBonusRepo.AssertExpectations(t)
}

func TestBonusService_GrantBonuses_UnequalLengths(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockToken := new(MockTokenClient)
	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	err := service.GrantBonuses(ctx, "addr_owner", []string{"addr_a", "addr_b"}, []int64{1000})

	assert.ErrorIs(t, err, models.ErrUnequalArrayLength)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBonusService_GrantBonuses_ExceedsCap(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	settings := testSettings()
	settings.MaxBonus = 2000
	mockSettingsRepo.On("Get", ctx).Return(settings, nil)

	// The second grant is over the cap, so even the valid first grant must
	// not be applied.
	err := service.GrantBonuses(ctx, "addr_owner", []string{"addr_a", "addr_b"}, []int64{1000, 5000})

	assert.ErrorIs(t, err, models.ErrMaxBonusExceeded)
	mockBonusRepo.AssertNotCalled(t, "AddAmount", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBonusService_GrantBonuses_Unauthorized(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)

	err := service.GrantBonuses(ctx, "addr_rando", []string{"addr_a"}, []int64{1000})

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	mockBonusRepo.AssertNotCalled(t, "AddAmount", mock.Anything, mock.Anything, mock.Anything)
}

func TestBonusService_Claim(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, nil, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBonusRepo.On("Zero", ctx, "addr_alice").Return(int64(3200), nil)
	mockToken.On("Transfer", ctx, "addr_alice", int64(3200)).Return(nil)

	amount, err := service.Claim(ctx, "addr_alice")

	assert.NoError(t, err)
	assert.Equal(t, int64(3200), amount)

	mockUoW.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

func TestBonusService_Claim_NothingAccrued(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, nil, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBonusRepo.On("Zero", ctx, "addr_alice").Return(int64(0), nil)

	_, err := service.Claim(ctx, "addr_alice")

	assert.ErrorIs(t, err, models.ErrNoBonus)
	mockToken.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestBonusService_Claim_TransferFails(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBonusRepo := new(MockBonusRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, mockBonusRepo, nil, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBonusRepo.On("Zero", ctx, "addr_alice").Return(int64(3200), nil)
	mockToken.On("Transfer", ctx, "addr_alice", int64(3200)).Return(errors.New("ledger unavailable"))

	// The zeroing rolls back with the transaction, so the accrual survives
	// a failed payout and can be claimed again.
	_, err := service.Claim(ctx, "addr_alice")

	assert.ErrorIs(t, err, models.ErrTransferFailed)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBonusService_Sweep(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockToken.On("BalanceOf", ctx, testCustody).Return(int64(99999), nil)
	mockToken.On("Transfer", ctx, "addr_owner", int64(99999)).Return(nil)

	amount, err := service.Sweep(ctx, "addr_owner")

	assert.NoError(t, err)
	assert.Equal(t, int64(99999), amount)

	mockToken.AssertExpectations(t)
}

func TestBonusService_Sweep_EmptyCustody(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockToken.On("BalanceOf", ctx, testCustody).Return(int64(0), nil)

	amount, err := service.Sweep(ctx, "addr_owner")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), amount)
	mockToken.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestBonusService_Sweep_Unauthorized(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)
	mockToken := new(MockTokenClient)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewBonusService(mockFactory, mockToken, NewOwnerAuthorizer(), testCustody)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)

	_, err := service.Sweep(ctx, "addr_rando")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	mockToken.AssertNotCalled(t, "BalanceOf", mock.Anything, mock.Anything)
}
