package services

import (
	"context"

	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/domain/core/entities"
	pkgerrors "linkup-backend/pkg/errors"
)

// ReconciliationReport summarizes one repair sweep
type ReconciliationReport struct {
	AccountsScanned int `json:"accountsScanned"`
	EdgesRepaired   int `json:"edgesRepaired"`
	DanglingRemoved int `json:"danglingRemoved"`
}

// ReconciliationService repairs asymmetric connection pairs. Accepting a
// request writes two account records without a cross-record transaction, so a
// crash between the writes can leave A listing B while B does not list A. The
// sweep walks every account and restores the missing direction; references to
// accounts that no longer exist are dropped instead.
type ReconciliationService struct {
	accountRepo ports.AccountRepository
	logger      *zap.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(accountRepo ports.AccountRepository, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Run performs one full sweep over all accounts
func (s *ReconciliationService) Run(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{}
	cursor := ""

	for {
		accounts, next, err := s.accountRepo.ListAccounts(ctx, 100, cursor)
		if err != nil {
			return report, pkgerrors.Wrap(err, "reconcile: list accounts")
		}

		for _, account := range accounts {
			report.AccountsScanned++
			if err := s.reconcileAccount(ctx, account, report); err != nil {
				return report, err
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	s.logger.Info("Reconciliation sweep finished",
		zap.Int("accountsScanned", report.AccountsScanned),
		zap.Int("edgesRepaired", report.EdgesRepaired),
		zap.Int("danglingRemoved", report.DanglingRemoved),
	)

	return report, nil
}

func (s *ReconciliationService) reconcileAccount(ctx context.Context, account *entities.Account, report *ReconciliationReport) error {
	ownerID := account.ID()

	for _, otherID := range account.Connections() {
		other, err := s.accountRepo.GetByID(ctx, otherID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				// The referenced account is gone; the edge cannot be
				// symmetric anymore, so drop it
				if err := s.accountRepo.RemoveConnection(ctx, ownerID, otherID); err != nil && !pkgerrors.IsNotFound(err) {
					return pkgerrors.Wrap(err, "reconcile: drop dangling reference")
				}
				report.DanglingRemoved++
				s.logger.Warn("Dropped dangling connection reference",
					zap.String("owner", ownerID.String()),
					zap.String("missing", otherID.String()),
				)
				continue
			}
			return pkgerrors.Wrap(err, "reconcile: load connected account")
		}

		if other.IsConnectedTo(ownerID) {
			continue
		}

		// Accept committed the transition before this edge went asymmetric,
		// so repair toward connected rather than severing
		if err := s.accountRepo.AddConnection(ctx, otherID, ownerID); err != nil {
			if pkgerrors.IsConflict(err) {
				continue
			}
			return pkgerrors.Wrap(err, "reconcile: restore missing direction")
		}
		report.EdgesRepaired++
		s.logger.Info("Restored missing connection direction",
			zap.String("owner", otherID.String()),
			zap.String("other", ownerID.String()),
		)
	}

	return nil
}
