package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"linkup-backend/application/services"
	"linkup-backend/infrastructure/config"
	"linkup-backend/infrastructure/di"
)

// The reconciliation sweep repairs asymmetric connection pairs left behind by
// partial accept failures. Deployed as a scheduled Lambda; runs once and
// exits when invoked directly.

var container *di.Container

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

// Handler runs one reconciliation sweep on a scheduled invocation
func Handler(ctx context.Context) (*services.ReconciliationReport, error) {
	report, err := container.ReconciliationService.Run(ctx)
	if err != nil {
		container.Logger.Error("Reconciliation sweep failed",
			zap.Error(err),
			zap.Int("accountsScanned", report.AccountsScanned),
		)
		return report, err
	}
	return report, nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(Handler)
		return
	}

	report, err := Handler(context.Background())
	if err != nil {
		os.Exit(1)
	}

	container.Logger.Info("Reconciliation complete",
		zap.Int("accountsScanned", report.AccountsScanned),
		zap.Int("edgesRepaired", report.EdgesRepaired),
		zap.Int("danglingRemoved", report.DanglingRemoved),
	)
}
