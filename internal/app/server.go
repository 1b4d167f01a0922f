// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dealer-crm-service/internal/config"
	"dealer-crm-service/internal/db"
	"dealer-crm-service/internal/domain/view"
	leadHandler "dealer-crm-service/internal/handlers/lead"
	tableHandler "dealer-crm-service/internal/handlers/table"
	"dealer-crm-service/internal/middleware"
	"dealer-crm-service/internal/pkg/jwt"
	"dealer-crm-service/internal/repository/memory"
	"dealer-crm-service/internal/repository/postgres"
	redisrepo "dealer-crm-service/internal/repository/redis"
	leadservice "dealer-crm-service/internal/service/lead"
	tableservice "dealer-crm-service/internal/service/table"
	timelineservice "dealer-crm-service/internal/service/timeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	http    *http.Server
	closers []func()
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// stores is the persistence backend selected by STORAGE_BACKEND.
type stores struct {
	leads  leadservice.LeadRepository
	events timelineservice.EventRepository
}

func (s *Server) openStores(ctx context.Context) (stores, error) {
	if s.cfg.StorageBackend != config.BackendPostgres {
		leads := memory.NewLeadStore()
		s.logger.Info("using in-memory storage")
		return stores{leads: leads, events: memory.NewTimelineLog(leads)}, nil
	}

	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return stores{}, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.closers = append(s.closers, pool.Close)

	pg := postgres.NewDB(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		return stores{}, err
	}
	s.logger.Info("using PostgreSQL storage")
	return stores{leads: postgres.NewLeadRepository(pg), events: postgres.NewTimelineRepository(pg)}, nil
}

func (s *Server) openViewStore() (tableservice.ViewStore, error) {
	if !s.cfg.ViewPersistence {
		return nil, nil
	}

	client, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = client.Close() })
	s.logger.Info("column layouts persisted to Redis", zap.String("addr", s.cfg.RedisAddr))
	return redisrepo.NewViewStore(client, s.cfg.ViewTTL), nil
}

func (s *Server) openVerifier() (*jwt.Verifier, error) {
	if s.cfg.JWTPublicKeyPath == "" {
		s.logger.Warn("JWT_PUBLIC_KEY_PATH not set, trusting the X-Actor header")
		return nil, nil
	}
	pub, err := jwt.LoadRSAPublicKeyFromPEM(s.cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWT public key: %w", err)
	}
	s.logger.Info("bearer tokens name the actor, X-Actor header ignored")
	return jwt.NewVerifier(pub, s.cfg.JWTIssuer, s.cfg.JWTAudience), nil
}

// Setup connects the backends and registers every route.
func (s *Server) Setup(ctx context.Context) error {
	st, err := s.openStores(ctx)
	if err != nil {
		return err
	}
	views, err := s.openViewStore()
	if err != nil {
		return err
	}
	verifier, err := s.openVerifier()
	if err != nil {
		return err
	}

	// ----- Services -----
	leadService := leadservice.NewLeadService(st.leads, st.events, s.logger)
	timelineService := timelineservice.NewTimelineService(st.events, st.leads, s.logger)
	registry := tableservice.NewRegistry(
		map[string][]string{view.LeadTable: view.DefaultLeadColumns()},
		leadService,
		views,
		s.logger,
	)

	if s.cfg.SeedDemoData {
		if err := SeedDemoData(ctx, leadService, timelineService, s.logger); err != nil {
			s.logger.Error("failed to seed demo data", zap.Error(err))
		}
	}

	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.MetricsMiddleware(),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	SetupRouter(s.engine, &Handlers{
		LeadHandler:     leadHandler.NewLeadHandler(leadService, timelineService),
		TableHandler:    tableHandler.NewTableHandler(registry),
		ActorMiddleware: middleware.NewActorMiddleware(verifier),
	})

	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called. Setup must have succeeded.
func (s *Server) Start() error {
	if s.http == nil {
		return errors.New("server is not set up")
	}

	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
	return err
}
