package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"collaboratex/internal/auth"
	"collaboratex/internal/config"
	"collaboratex/internal/editor"
	"collaboratex/internal/handler"
	"collaboratex/internal/metrics"
	"collaboratex/internal/middleware"
	"collaboratex/internal/repository/postgres"
	postgresDocsys "collaboratex/internal/repository/postgres/docsystem"
	serviceAuth "collaboratex/internal/service/auth"
	serviceDocsys "collaboratex/internal/service/docsystem"
	"collaboratex/internal/session"
	"collaboratex/internal/web"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWKS keys let the resolver tell an expired token from a live one locally
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured", "tables", tables.All())
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresDocsys.NewDocumentRepository(repoConfig)
	linkRepo := postgresDocsys.NewAnonymousLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	checker := serviceAuth.NewOwnershipChecker(docRepo, linkRepo, nil, logger)
	docService := serviceDocsys.NewDocumentService(docRepo, linkRepo, checker, txManager, nil, logger)
	linkService := serviceDocsys.NewAnonymousLinkService(linkRepo, checker, cfg.PublicBaseURL, nil, logger)

	// Sessions: the resolver is the hub's only publisher
	hub := session.NewHub(logger)
	publisher, err := hub.Publisher()
	if err != nil {
		log.Fatalf("Failed to create session publisher: %v", err)
	}
	hub.Subscribe(session.AuditLogger(logger))
	hub.Subscribe(func(e session.Event) {
		metrics.SessionEvents.WithLabelValues(string(e.Type)).Inc()
	})

	identityClient := auth.NewIdentityClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.IdentityTimeout, logger)
	credentialStore := session.NewCredentialStore(cfg.ProjectRef(), cfg.SessionCookieMaxAge, cfg.SecureCookies())
	resolver := session.NewResolver(identityClient, jwtVerifier, credentialStore, publisher, logger)

	routes, err := config.LoadRoutes()
	if err != nil {
		log.Fatalf("Failed to load route table: %v", err)
	}

	languages, err := editor.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load editor languages: %v", err)
	}

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	anonLimiter := middleware.NewIPRateLimiter(cfg.AnonRateLimit, cfg.AnonRateBurst, nil)

	logger.Info("services initialized",
		"auth_cookie", credentialStore.Name(),
		"oauth_providers", cfg.OAuthProviders,
	)

	rt := &handler.Routes{
		Pages:     handler.NewPageHandler(renderer, docService, resolver, hub, routes, cfg.OAuthProviders, cfg.PublicBaseURL, logger),
		Auth:      handler.NewAuthHandler(resolver, logger),
		Documents: handler.NewDocumentHandler(docService, logger),
		Links:     handler.NewAnonymousLinkHandler(linkService, logger),
		Anon:      handler.NewAnonHandler(docService, logger),
		Editor:    handler.NewEditorHandler(languages, logger),
		Health:    handler.NewHealthHandler(pool, logger),
		AnonLimit: anonLimiter.Middleware,
		Metrics:   promhttp.Handler(),
	}

	// Build middleware chain
	var h http.Handler = rt.NewMux()

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Guard → APIAuth → Metrics → Routes
	h = middleware.Metrics(h)
	h = middleware.APIAuth(resolver, logger)(h)
	h = middleware.Guard(routes, resolver, logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Anonymous-Token"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
