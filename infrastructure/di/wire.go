//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/application/services"
	"linkup-backend/infrastructure/config"
	"linkup-backend/interfaces/http/rest/handlers"
	"linkup-backend/pkg/auth"
	pkgerrors "linkup-backend/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config                *config.Config
	Logger                *zap.Logger
	AccountRepo           ports.AccountRepository
	RequestRepo           ports.ConnectionRequestRepository
	NotificationRepo      ports.NotificationRepository
	EventPublisher        ports.EventPublisher
	Mailer                ports.Mailer
	Cache                 ports.Cache
	AccountService        *services.AccountService
	ConnectionService     *services.ConnectionService
	NotificationService   *services.NotificationService
	ReconciliationService *services.ReconciliationService
	JWTValidator          *auth.JWTValidator
	ErrorHandler          *pkgerrors.ErrorHandler
	ConnectionHandler     *handlers.ConnectionHandler
	NotificationHandler   *handlers.NotificationHandler
	AccountHandler        *handlers.AccountHandler
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSESClient,
	ProvideAccountRepository,
	ProvideConnectionRequestRepository,
	ProvideNotificationRepository,
	ProvideEventPublisher,
	ProvideMailer,
	ProvideCache,
	ProvideNotificationService,
	ProvideConnectionService,
	ProvideAccountService,
	ProvideReconciliationService,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideConnectionHandler,
	ProvideNotificationHandler,
	ProvideAccountHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
