package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"jasahub/internal/adapter/api"
	"jasahub/internal/adapter/api/handler"
	apimiddleware "jasahub/internal/adapter/api/middleware"
	"jasahub/internal/adapter/api/router"
	"jasahub/internal/adapter/repository"
	"jasahub/internal/domain/service"
	"jasahub/internal/infrastructure/firebase"
	"jasahub/internal/infrastructure/storage"
	"jasahub/internal/usecase"
	"jasahub/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Try to get service account from environment variable (for production)
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	serviceAccountPath := ""
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		// Fallback to file path (for local development)
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			log.Fatalf("FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH is required")
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(
		ctx,
		cfg.StorageBucket,
		cfg.FirebaseProject,
		serviceAccountPath,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	disputeRepo := repository.NewFirestoreDisputeRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	// External collaborators. Without configured endpoints the simplified
	// implementations log instead of calling out, which keeps local
	// development self-contained.
	var settlementService service.SettlementService
	if cfg.SettlementURL != "" {
		settlementService = service.NewHTTPSettlementService(cfg.SettlementURL, cfg.SettlementAPIKey)
	} else {
		settlementService = service.NewSimplifiedSettlementService()
	}

	var notificationService service.NotificationService
	if cfg.NotificationURL != "" {
		notificationService = service.NewHTTPNotificationService(cfg.NotificationURL)
	} else {
		notificationService = service.NewSimplifiedNotificationService()
	}

	bookingService := service.NewHTTPBookingService(cfg.BookingURL)

	workflow := service.NewDisputeWorkflow()

	disputeUseCase := usecase.NewDisputeUseCase(
		disputeRepo,
		userRepo,
		workflow,
		settlementService,
		bookingService,
		notificationService,
	)
	messageUseCase := usecase.NewDisputeMessageUseCase(disputeRepo, userRepo, workflow)
	statsUseCase := usecase.NewDisputeStatsUseCase(disputeRepo, userRepo)
	operatorUseCase := usecase.NewOperatorUseCase(userRepo, firebaseAuthClient)

	handler.Setup(disputeUseCase, messageUseCase, statsUseCase, operatorUseCase, storageClient, firebaseAuthClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	operatorMiddleware := apimiddleware.NewOperatorMiddleware(userRepo)

	// Keep per-user limiter maps from growing unbounded
	apimiddleware.FileDisputeLimiter.StartCleanupRoutine()
	apimiddleware.MessageLimiter.StartCleanupRoutine()

	router.Setup(e, authMiddleware, operatorMiddleware)

	log.Printf("Starting server on port %s (%s)...", cfg.ServerPort, cfg.Environment)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
