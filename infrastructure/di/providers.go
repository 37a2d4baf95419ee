package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.uber.org/zap"

	"linkup-backend/application/ports"
	"linkup-backend/application/services"
	"linkup-backend/infrastructure/config"
	"linkup-backend/infrastructure/email"
	"linkup-backend/infrastructure/messaging/eventbridge"
	"linkup-backend/infrastructure/persistence/dynamodb"
	"linkup-backend/interfaces/http/rest/handlers"
	"linkup-backend/pkg/auth"
	pkgerrors "linkup-backend/pkg/errors"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSESClient creates an SES client
func ProvideSESClient(awsCfg aws.Config) *awssesv2.Client {
	return awssesv2.NewFromConfig(awsCfg)
}

// ProvideAccountRepository creates the account repository
func ProvideAccountRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.AccountRepository {
	return dynamodb.NewAccountRepository(
		client,
		cfg.DynamoDBTable,
		cfg.UsernameIndexName,
		logger,
	)
}

// ProvideConnectionRequestRepository creates the connection request repository
func ProvideConnectionRequestRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRequestRepository {
	return dynamodb.NewConnectionRequestRepository(
		client,
		cfg.DynamoDBTable,
		cfg.PairIndexName,
		cfg.RecipientIndexName,
		cfg.SenderIndexName,
		logger,
	)
}

// ProvideNotificationRepository creates the notification repository
func ProvideNotificationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NotificationRepository {
	return dynamodb.NewNotificationRepository(
		client,
		cfg.DynamoDBTable,
		cfg.NotificationIndexName,
		logger,
	)
}

// ProvideEventPublisher creates the event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideMailer creates the mailer, or a no-op one when email is disabled
func ProvideMailer(client *awssesv2.Client, cfg *config.Config, logger *zap.Logger) ports.Mailer {
	if !cfg.EmailEnabled {
		return email.NewNoopMailer(logger)
	}
	return email.NewSESMailer(client, cfg.EmailSender, logger)
}

// ProvideCache creates the cache
func ProvideCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideNotificationService creates the notification service
func ProvideNotificationService(notificationRepo ports.NotificationRepository, cache ports.Cache, logger *zap.Logger) *services.NotificationService {
	return services.NewNotificationService(notificationRepo, cache, logger)
}

// ProvideConnectionService creates the connection lifecycle service
func ProvideConnectionService(
	accountRepo ports.AccountRepository,
	requestRepo ports.ConnectionRequestRepository,
	notifications *services.NotificationService,
	mailer ports.Mailer,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.ConnectionService {
	return services.NewConnectionService(accountRepo, requestRepo, notifications, mailer, publisher, logger)
}

// ProvideAccountService creates the account service
func ProvideAccountService(accountRepo ports.AccountRepository, logger *zap.Logger) *services.AccountService {
	return services.NewAccountService(accountRepo, logger)
}

// ProvideReconciliationService creates the reconciliation service
func ProvideReconciliationService(accountRepo ports.AccountRepository, logger *zap.Logger) *services.ReconciliationService {
	return services.NewReconciliationService(accountRepo, logger)
}

// ProvideJWTValidator creates the JWT validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
		Audience:      []string{"linkup-api"},
	})
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideConnectionHandler creates the connection HTTP handler
func ProvideConnectionHandler(connections *services.ConnectionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.ConnectionHandler {
	return handlers.NewConnectionHandler(connections, errorHandler, logger)
}

// ProvideNotificationHandler creates the notification HTTP handler
func ProvideNotificationHandler(notifications *services.NotificationService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.NotificationHandler {
	return handlers.NewNotificationHandler(notifications, errorHandler, logger)
}

// ProvideAccountHandler creates the account HTTP handler
func ProvideAccountHandler(accounts *services.AccountService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *handlers.AccountHandler {
	return handlers.NewAccountHandler(accounts, errorHandler, logger)
}
