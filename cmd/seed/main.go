package main

import (
	"context"
	"flag"
	"log"

	"collaboratex/internal/auth"
	"collaboratex/internal/config"
	"collaboratex/internal/domain/models"
	"collaboratex/internal/repository/postgres"
	postgresDocsys "collaboratex/internal/repository/postgres/docsystem"
	"collaboratex/internal/seed"
	serviceAuth "collaboratex/internal/service/auth"
	serviceDocsys "collaboratex/internal/service/docsystem"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed documents")
	clearData := flag.Bool("clear-data", false, "Delete the demo user's documents and exit (keep schema)")
	email := flag.String("email", "demo@example.com", "Demo user email")
	password := flag.String("password", "demo-password", "Demo user password (used only when the user is created)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// The demo user lives in the identity service; documents reference its id
	if cfg.SupabaseServiceKey == "" {
		log.Fatalf("SUPABASE_SERVICE_KEY is required to create the demo user")
	}
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)
	userID, err := admin.EnsureUser(ctx, *email, *password)
	if err != nil {
		log.Fatalf("Failed to ensure demo user: %v", err)
	}
	owner := &models.Identity{ID: userID, Email: *email}
	log.Printf("👤 Demo user %s (ID: %s)", owner.Email, owner.ID)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresDocsys.NewDocumentRepository(repoConfig)
	linkRepo := postgresDocsys.NewAnonymousLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	checker := serviceAuth.NewOwnershipChecker(docRepo, linkRepo, nil, logger)
	docService := serviceDocsys.NewDocumentService(docRepo, linkRepo, checker, txManager, nil, logger)
	linkService := serviceDocsys.NewAnonymousLinkService(linkRepo, checker, cfg.PublicBaseURL, nil, logger)
	seeder := seed.NewDocumentSeeder(docService, linkService, logger)

	log.Println("⚠️  Clearing the demo user's documents...")
	cleared, err := seeder.Clear(ctx, owner)
	if err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	log.Printf("✅ Removed %d documents", cleared)
	if *clearData {
		return
	}

	log.Println("📝 Seeding documents...")
	result, err := seeder.Seed(ctx, owner, seed.DefaultSamples())
	if err != nil {
		log.Fatalf("❌ Seeding failed after %d documents: %v", len(result.Documents), err)
	}
	for i, doc := range result.Documents {
		log.Printf("✅ Created document %d/%d: %s (ID: %s)", i+1, len(result.Documents), doc.Title, doc.ID)
	}
	for _, u := range result.ShareURLs {
		log.Printf("🔗 Anonymous link: %s", u)
	}

	log.Println("🎉 Seeding complete!")
}
