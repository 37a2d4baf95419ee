package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"linkup-backend/infrastructure/config"
	"linkup-backend/infrastructure/di"
	"linkup-backend/interfaces/http/rest"
)

// Global state reused across warm invocations
var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
)

// init runs during cold start
func init() {
	start := time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		cfg,
		container.ConnectionHandler,
		container.NotificationHandler,
		container.AccountHandler,
		container.JWTValidator,
		container.Logger,
	)

	handler := router.Setup()

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Lambda cold start completed in %v", time.Since(start))
}

// Handler adapts API Gateway HTTP API requests to the chi router. The API
// Gateway JWT authorizer has already validated the caller; its claims are
// forwarded to the router as identity headers.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	if auth := req.RequestContext.Authorizer; auth != nil && auth.JWT != nil {
		claims := auth.JWT.Claims

		userID := claims["uid"]
		if userID == "" {
			userID = claims["sub"]
		}

		req.Headers["X-API-Gateway-Authorized"] = "true"
		req.Headers["X-User-ID"] = userID
		req.Headers["X-User-Email"] = claims["email"]
		req.Headers["X-User-Roles"] = claims["roles"]
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if err != nil {
		container.Logger.Error("Lambda proxy error",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.Error(err),
		)
	}
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
