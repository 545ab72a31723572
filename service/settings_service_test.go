package service

import (
	"context"
	"testing"

	"stakehouse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSettingsService_EnsureSettings(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	defaults := testSettings()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("GetOrCreate", ctx, defaults).Return(defaults, nil)

	settings, err := service.EnsureSettings(ctx, defaults)

	assert.NoError(t, err)
	assert.Equal(t, "addr_owner", settings.Owner)
	mockUoW.AssertExpectations(t)
}

func TestSettingsService_EnsureSettings_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	_, err := service.EnsureSettings(ctx, &models.PlatformSettings{Owner: ""})
	assert.Error(t, err)

	_, err = service.EnsureSettings(ctx, &models.PlatformSettings{Owner: "addr_owner", FeeRateBps: 10001})
	assert.ErrorIs(t, err, models.ErrInvalidFeeRate)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestSettingsService_SetPlatformFee(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockSettingsRepo.On("Update", ctx, mock.MatchedBy(func(s *models.PlatformSettings) bool {
		return s.FeeRateBps == 750
	})).Return(nil)

	err := service.SetPlatformFee(ctx, "addr_owner", 750)

	assert.NoError(t, err)
	mockSettingsRepo.AssertExpectations(t)
}

func TestSettingsService_SetPlatformFee_Bounds(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	tests := []struct {
		name    string
		bps     int32
		wantErr bool
	}{
		{"zero is free play", 0, false},
		{"full confiscation allowed", 10000, false},
		{"over scale rejected", 10001, true},
		{"negative rejected", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.wantErr {
				mockUoW := new(MockUnitOfWork)
				mockSettingsRepo := new(MockSettingsRepository)
				mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

				mockFactory := new(MockUnitOfWorkFactory)
				service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

				mockFactory.On("Create").Return(mockUoW)
				mockUoW.On("Begin", ctx).Return(nil)
				mockUoW.On("Commit").Return(nil)
				mockUoW.On("Rollback").Return(nil)
				mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
				mockSettingsRepo.On("Update", ctx, mock.Anything).Return(nil)

				assert.NoError(t, service.SetPlatformFee(ctx, "addr_owner", tt.bps))
				return
			}

			err := service.SetPlatformFee(ctx, "addr_owner", tt.bps)
			assert.ErrorIs(t, err, models.ErrInvalidFeeRate)
		})
	}
}

func TestSettingsService_SetPlatformFee_Unauthorized(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)

	err := service.SetPlatformFee(ctx, "addr_rando", 750)

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	mockSettingsRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSettingsService_TransferOwnership(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockSettingsRepo.On("Update", ctx, mock.MatchedBy(func(s *models.PlatformSettings) bool {
		return s.Owner == "addr_new_owner"
	})).Return(nil)

	err := service.TransferOwnership(ctx, "addr_owner", "addr_new_owner")

	assert.NoError(t, err)
	mockSettingsRepo.AssertExpectations(t)
}

func TestSettingsService_SetBonusAccount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockSettingsRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockSettingsRepo, nil)

	service := NewSettingsService(mockFactory, NewOwnerAuthorizer())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx).Return(testSettings(), nil)
	mockSettingsRepo.On("Update", ctx, mock.MatchedBy(func(s *models.PlatformSettings) bool {
		return s.BonusAccount == "addr_new_bonus"
	})).Return(nil)

	err := service.SetBonusAccount(ctx, "addr_owner", "addr_new_bonus")

	assert.NoError(t, err)

	err = service.SetBonusAccount(ctx, "addr_owner", "")
	assert.Error(t, err)
}
