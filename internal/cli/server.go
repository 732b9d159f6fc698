package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"esg-assessment-service/internal/app"
	"esg-assessment-service/internal/config"
	"esg-assessment-service/internal/infra/file"
	"esg-assessment-service/internal/infra/memory"
	"esg-assessment-service/internal/infra/postgres"
	infraredis "esg-assessment-service/internal/infra/redis"
	"esg-assessment-service/internal/scoring"
	"esg-assessment-service/internal/telemetry"
	transport "esg-assessment-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const defaultCatalogPath = "config/catalog.yaml"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stack is everything the server wires together from config.
type stack struct {
	service  *app.AssessmentService
	recorder *telemetry.Recorder
	closers  []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	st := &stack{recorder: telemetry.NewRecorder(cfg.Telemetry.BufferSize, log.Default())}
	ok := false
	defer func() {
		if !ok {
			st.Close()
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st.closers = append(st.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
	}

	catalogPath := cfg.Catalog.Path
	if catalogPath == "" {
		catalogPath = defaultCatalogPath
	}
	var loader memory.CatalogLoader = file.NewCatalogLoader(catalogPath)
	if pool != nil {
		loader = postgres.NewCatalogLoader(pool)
	}

	catalogTTL := config.Duration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = infraredis.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var drafts app.DraftStore
	switch cfg.Drafts.Backend {
	case config.DraftsRedis:
		drafts = infraredis.NewDraftStore(redisClient, config.Duration(cfg.Drafts.TTL, 0))
	case config.DraftsFile:
		fileDrafts, err := file.NewDraftStore(cfg.Drafts.Dir)
		if err != nil {
			return nil, err
		}
		drafts = fileDrafts
	default:
		drafts = memory.NewDraftStore()
	}

	var records app.AssessmentRepository = memory.NewAssessmentRepository()
	if pool != nil {
		records = postgres.NewAssessmentRepository(pool)
	}

	var uploader app.Uploader = memory.NewUploader()
	if cfg.Uploads.Dir != "" {
		fileUploader, err := file.NewUploader(cfg.Uploads.Dir)
		if err != nil {
			return nil, err
		}
		uploader = fileUploader
	}

	weights := scoring.Weights(cfg.Assessment.Weights)
	if !weights.IsZero() && !weights.Valid() {
		log.Printf("warning: category weights sum to %.3f, not 1", weights.Environmental+weights.Social+weights.Governance)
	}

	st.service = app.NewAssessmentService(app.Dependencies{
		Sessions: sessions,
		Catalogs: catalogs,
		Drafts:   drafts,
		Records:  records,
		Uploader: uploader,
		Recorder: st.recorder,
	}, app.Settings{
		CatalogID:      cfg.Catalog.ID,
		Industry:       cfg.Assessment.Industry,
		Weights:        weights,
		AutoSaveDelay:  config.Duration(cfg.Assessment.AutoSave, app.DefaultAutoSaveDelay),
		SessionTimeout: config.Duration(cfg.Assessment.SessionTimeout, app.DefaultSessionTimeout),
		CheckInterval:  config.Duration(cfg.Assessment.SessionCheck, app.DefaultCheckInterval),
	})
	ok = true
	return st, nil
}

func newMux(st *stack) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(st.service).ServeWS)
	transport.NewAPIHandler(st.service, st.recorder).Register(mux)
	return mux
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Fail fast on a missing catalog instead of on the first connection.
	if _, err := st.service.Catalog(ctx); err != nil {
		return fmt.Errorf("catalog %s: %w", cfg.Catalog.ID, err)
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      newMux(st),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting assessment service on :%s (drafts=%s)", finalPort, cfg.Drafts.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
