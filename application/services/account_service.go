package services

import (
	"context"

	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	"linkup-backend/domain/core/valueobjects"
)

// AccountService serves account profile lookups
type AccountService struct {
	accountRepo ports.AccountRepository
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo ports.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// GetByID retrieves an account by its ID
func (s *AccountService) GetByID(ctx context.Context, id valueobjects.AccountID) (*entities.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetByUsername retrieves an account by its unique username
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return s.accountRepo.GetByUsername(ctx, username)
}

// Save persists a new or updated account profile
func (s *AccountService) Save(ctx context.Context, account *entities.Account) error {
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return err
	}
	s.logger.Debug("Account saved", zap.String("accountID", account.ID().String()))
	return nil
}
