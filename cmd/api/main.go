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

	"laporwarga/internal/adapter/api"
	"laporwarga/internal/adapter/api/handler"
	apimiddleware "laporwarga/internal/adapter/api/middleware"
	"laporwarga/internal/adapter/api/router"
	"laporwarga/internal/adapter/repository"
	"laporwarga/internal/domain/service"
	"laporwarga/internal/infrastructure/firebase"
	"laporwarga/internal/infrastructure/imaging"
	"laporwarga/internal/infrastructure/storage"
	"laporwarga/internal/infrastructure/websocket"
	"laporwarga/internal/usecase"
	"laporwarga/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	credentialsPath := ""

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		credentialsPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if credentialsPath == "" {
			log.Fatalf("FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH must be set")
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		opt = option.WithCredentialsFile(credentialsPath)
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

	var uploader service.MediaUploadService
	switch cfg.MediaBackend {
	case "cdn":
		if cfg.CdnUploadURL == "" || cfg.CdnPreset == "" {
			log.Fatalf("CDN_UPLOAD_URL and CDN_UPLOAD_PRESET must be set for the cdn backend")
		}
		uploader = storage.NewCdnClient(cfg.CdnUploadURL, cfg.CdnPreset, cfg.CdnUserFolder)
	case "gcs":
		if cfg.StorageBucket == "" {
			log.Fatalf("STORAGE_BUCKET must be set for the gcs backend")
		}
		gcsClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		uploader = gcsClient
	default:
		log.Fatalf("Unknown media backend: %s", cfg.MediaBackend)
	}
	defer uploader.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	complaintRepo := repository.NewFirestoreComplaintRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	previewFn := func(data []byte) (string, error) {
		return imaging.GeneratePreview(data, imaging.PreviewOptions{
			MaxWidth:  cfg.Preview.MaxWidth,
			MaxHeight: cfg.Preview.MaxHeight,
			Quality:   cfg.Preview.Quality,
			MaxBytes:  cfg.Preview.MaxBytes,
		})
	}

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient)
	userUseCase := usecase.NewUserUseCase(userRepo, firebaseAuthClient)
	complaintUseCase := usecase.NewComplaintUseCase(complaintRepo, userRepo, uploader, previewFn)

	handler.Setup(authUseCase, userUseCase, complaintUseCase, cfg.MaxUploadSize)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)
	wsHandler := handler.NewWebSocketHandler(wsManager, authClient, complaintUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
