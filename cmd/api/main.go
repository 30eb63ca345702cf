package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pashudrishti/pashu-sahayak/internal/application"
	appadvisor "github.com/pashudrishti/pashu-sahayak/internal/application/advisor"
	appanalysis "github.com/pashudrishti/pashu-sahayak/internal/application/analysis"
	appauth "github.com/pashudrishti/pashu-sahayak/internal/application/auth"
	"github.com/pashudrishti/pashu-sahayak/internal/config"
	"github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
	"github.com/pashudrishti/pashu-sahayak/internal/domain/users"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/ai/gemini"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/ai/ollama"
	mysqlp "github.com/pashudrishti/pashu-sahayak/internal/infra/db/mysql"
	postgresp "github.com/pashudrishti/pashu-sahayak/internal/infra/db/postgres"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/detector"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/httpserver"
	minioStore "github.com/pashudrishti/pashu-sahayak/internal/infra/storage"
	"github.com/pashudrishti/pashu-sahayak/internal/middleware"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, analysisRepo, userRepo, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model,
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second)
	ollamaClient := ollama.NewClient(cfg.Ollama.URL, cfg.Ollama.Model,
		time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second)
	detectorClient := detector.NewClient(cfg.Detector.URL,
		time.Duration(cfg.Detector.TimeoutSeconds)*time.Second)

	authSvc := &appauth.Service{
		Users:      userRepo,
		SigningKey: []byte(cfg.Auth.SigningKey),
		TokenTTL:   time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		Clock:      application.SystemClock{},
	}
	analysisSvc := &appanalysis.Service{
		Repo:      analysisRepo,
		Detector:  detectorClient,
		Generator: geminiClient,
		Images:    store,
		Clock:     application.SystemClock{},
	}
	advisorSvc := appadvisor.NewService(geminiClient, ollamaClient)

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	})

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.JWTAuth(authSvc))
	mux.Use(middleware.RateLimitMiddleware(30, 1))
	mux.Mount("/", httpserver.NewRouter(authSvc, analysisSvc, advisorSvc, health))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openDatabase connects to the configured driver and runs migrations.
// MySQL is the default; Postgres is a drop-in alternative.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, analysis.Repository, users.Repository, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgresp.Migrate(ctx, db); err != nil {
			return nil, nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return db, postgresp.NewAnalysisRepository(db), postgresp.NewUserRepository(db), nil
	case "mysql", "":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			return nil, nil, nil, fmt.Errorf("mysql migrate: %w", err)
		}
		return db, mysqlp.NewAnalysisRepository(db), mysqlp.NewUserRepository(db), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
