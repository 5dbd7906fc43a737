// underwriter orchestrates multi-agent loan application assessment —
// provides an HTTP API over the orchestration engine, wiring configuration,
// LLM providers, MCP tool servers, and audit persistence together.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/lendwell/underwriter/pkg/agent"
	"github.com/lendwell/underwriter/pkg/agent/controller"
	"github.com/lendwell/underwriter/pkg/agent/prompt"
	"github.com/lendwell/underwriter/pkg/audit"
	"github.com/lendwell/underwriter/pkg/config"
	"github.com/lendwell/underwriter/pkg/database"
	"github.com/lendwell/underwriter/pkg/llm"
	"github.com/lendwell/underwriter/pkg/mcp"
	"github.com/lendwell/underwriter/pkg/orchestrate"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	recorder, closeRecorder := newRecorder(ctx)
	defer closeRecorder()

	personas, err := agent.LoadPersonas(*configDir, cfg.AgentRegistry.GetAll())
	if err != nil {
		log.Fatalf("failed to load agent personas: %v", err)
	}

	clientFactory := mcp.NewClientFactory(cfg.ToolServerRegistry)
	toolExecutor, _, err := clientFactory.CreateToolExecutor(ctx, cfg.ToolServerRegistry.ServerIDs(), nil)
	if err != nil {
		log.Fatalf("failed to initialize MCP tool servers: %v", err)
	}
	defer func() { _ = toolExecutor.Close() }()

	healthMonitor := mcp.NewHealthMonitor(clientFactory, cfg.ToolServerRegistry)
	healthMonitor.Start(ctx)
	defer healthMonitor.Stop()

	promptBuilder := prompt.NewBuilder(cfg.ToolServerRegistry)
	llmRegistry := llm.NewRegistry()
	defer func() { _ = llmRegistry.Close() }()

	agentFactory := agent.NewAgentFactory(controller.NewFactory())

	engine := orchestrate.NewEngine(cfg, agentFactory, promptBuilder, llmRegistry, toolExecutor, personas, recorder)

	router := gin.Default()
	registerRoutes(router, cfg, engine, healthMonitor)

	log.Printf("underwriter HTTP server listening on :%s", httpPort)
	if err := router.Run(":" + httpPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// newRecorder selects the audit.Recorder implementation from the
// environment: a Postgres-backed recorder when DB_PASSWORD is set (a real
// deployment), the in-memory recorder otherwise (local runs, demos). The
// returned closer always joins Recorder.Close for a clean shutdown.
func newRecorder(ctx context.Context) (audit.Recorder, func()) {
	if os.Getenv("DB_PASSWORD") == "" {
		slog.Info("no DB_PASSWORD set, using in-memory audit recorder")
		rec := audit.NewMemoryRecorder()
		return rec, func() { _ = rec.Close(ctx) }
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load database config: %v", err)
	}
	dbClient, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to audit database: %v", err)
	}
	slog.Info("connected to PostgreSQL audit database")

	rec := audit.NewPostgresRecorder(dbClient)
	return rec, func() { _ = rec.Close(ctx) }
}

// runRequest is the POST /applications request body.
type runRequest struct {
	ApplicantID     string `json:"applicant_id" binding:"required"`
	ApplicationType string `json:"application_type" binding:"required"`
	ApplicationData string `json:"application_data" binding:"required"`
}

func registerRoutes(router *gin.Engine, cfg *config.Config, engine *orchestrate.Engine, healthMonitor *mcp.HealthMonitor) {
	router.GET("/health", func(c *gin.Context) {
		stats := cfg.Stats()
		statuses := healthMonitor.GetStatuses()

		// A degraded tool server doesn't fail the liveness probe — its
		// status is reported under tool_servers, and calls to it come back
		// to the agent as tool errors.
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"configuration": gin.H{
				"agents":        stats.Agents,
				"patterns":      stats.Patterns,
				"tool_servers":  stats.ToolServers,
				"llm_providers": stats.LLMProviders,
			},
			"tool_servers": statuses,
		})
	})

	router.POST("/applications", func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		runCtx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
		defer cancel()

		decision, ledger, err := engine.Run(runCtx, orchestrate.RunInput{
			RunID:           uuid.NewString(),
			ApplicantID:     req.ApplicantID,
			ApplicationType: req.ApplicationType,
			ApplicationData: req.ApplicationData,
		})
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "ledger": ledger})
			return
		}

		c.JSON(http.StatusOK, gin.H{"decision": decision, "ledger": ledger})
	})
}
