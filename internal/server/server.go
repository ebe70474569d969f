package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"pbi_migration/internal/config"
	"pbi_migration/internal/database"
	"pbi_migration/internal/handlers"
	"pbi_migration/internal/logging"
	"pbi_migration/internal/repositories"
	"pbi_migration/internal/routes"
	"pbi_migration/internal/services"
)

func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to prepare work directories: %v", err)
	}

	pool, err := database.Connect()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.EnsureSchema(pool); err != nil {
		log.Fatalf("failed to ensure database schema: %v", err)
	}

	// Redis is optional: without REDIS_ADDR the pipeline reads parsed
	// metadata and source configs from disk on every stage.
	var cache *repositories.CacheRepository
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to Redis at %s: %v", addr, err)
		}
		log.Println("Connected to Redis successfully")
		cache = repositories.NewCacheRepository(rdb)
	}

	// Dependency injection
	runRepo := repositories.NewReportRunRepository(pool)
	parserService := services.NewParserService(logger, cfg.ParsedDir, cache)
	sourceService := services.NewSourceService(logger, cfg.SourcesDir, cache)
	artifactService := services.NewArtifactService(logger, cfg.ArtifactsDir)
	scriptService := services.NewScriptService(logger, cfg.TE3Dir)
	layoutService := services.NewLayoutService(logger, cfg.LayoutDir)
	applyService := services.NewApplyService(logger)
	workbookService := services.NewWorkbookService(logger)

	tableauHandler := handlers.NewTableauHandler(parserService, runRepo, cfg.UploadDir, logger)
	sourceHandler := handlers.NewSourceHandler(sourceService, workbookService)
	artifactHandler := handlers.NewArtifactHandler(parserService, sourceService, artifactService, runRepo, logger)
	scriptHandler := handlers.NewScriptHandler(scriptService, artifactService, runRepo, logger)
	layoutHandler := handlers.NewLayoutHandler(layoutService, artifactService, runRepo, logger)
	modelHandler := handlers.NewModelHandler(applyService, artifactService, runRepo, logger)

	// Initialize Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20 // workbook uploads

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = []string{origins}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-API-Key")
	router.Use(cors.New(corsConfig))

	routes.RegisterRoutes(router, tableauHandler, sourceHandler, artifactHandler, scriptHandler, layoutHandler, modelHandler)

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
