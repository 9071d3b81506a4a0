// Package container wires configuration, storage, the credential pool and
// the analysis services into one dependency graph.
package container

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"

	"postureai/adapters/llm"
	"postureai/adapters/postgres"
	"postureai/ai"
	"postureai/app"
	"postureai/domain/assess"
	"postureai/domain/intake"
	"postureai/internal"
	"postureai/internal/benchmark"
	"postureai/internal/cache"
	"postureai/internal/config"
	"postureai/internal/errors"
	"postureai/internal/keypool"
	"postureai/internal/metrics"
	"postureai/internal/redact"
	"postureai/internal/report"
	"postureai/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    *internal.Logger
	DB     *sqlx.DB

	// Repositories
	CredentialRepo ports.CredentialRepository
	CacheRepo      ports.CacheRepository
	ArtifactRepo   ports.ArtifactRepository
	MetricsRepo    ports.MetricsRepository
	IntakeRepo     ports.IntakeRepository

	// Infrastructure
	Cipher    *keypool.Cipher
	Pool      *keypool.Pool
	LLMClient ports.LLMClient
	Runner    *ai.Runner

	// Services
	CacheService   *cache.Service
	MetricsService *metrics.Service
	Benchmarks     *benchmark.Service
	Redactor       *redact.Redactor
	Renderer       *report.Renderer
	ReportService  *app.ReportService
	IntakeService  *app.IntakeService

	// Structure is the parsed question library. Empty when no library
	// path is configured.
	Structure assess.Structure
}

// New creates a container from configuration
func New(cfg *config.Config, log *internal.Logger) *Container {
	return &Container{
		Config: cfg,
		Log:    log,
	}
}

// InitWithDatabase wires everything on top of an open database connection.
// A missing or unreadable encryption key is fatal: without it no stored
// credential can ever be decrypted.
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	c.DB = db
	c.initRepositories()

	cipher, err := keypool.LoadCipher(c.Config.Pool.EncryptionKey, c.Config.Pool.EncryptionKeyFile)
	if err != nil {
		return errors.Wrap(err, "failed to load credential encryption key")
	}
	c.Cipher = cipher

	c.Pool = keypool.NewPool(c.CredentialRepo, c.Cipher, c.Config.Pool, c.Log)
	c.LLMClient = llm.NewOpenAIClient(c.Config.AI.RequestTimeout)
	c.Runner = ai.NewRunner(c.LLMClient, c.Pool, c.Config.AI, c.Log)

	bench, err := benchmark.NewService()
	if err != nil {
		return errors.Wrap(err, "failed to load benchmark library")
	}
	c.Benchmarks = bench

	c.CacheService = cache.NewService(c.CacheRepo, c.Log)
	c.MetricsService = metrics.NewService(c.MetricsRepo, c.Log)
	for _, override := range c.Config.AI.PricingOverrides {
		metrics.SetPriceOverride(override.Model, override.PromptPer1K, override.CompletionPer1K)
		c.Log.Info("pricing override applied for model %s", override.Model)
	}
	c.Redactor = redact.NewRedactor(c.Config.Redact.Enabled)
	c.Renderer = report.NewRenderer()

	if err := c.loadQuestionLibrary(); err != nil {
		return err
	}

	c.ReportService = app.NewReportService(
		*c.Config,
		c.Runner,
		c.CacheService,
		c.Redactor,
		c.Benchmarks,
		c.ArtifactRepo,
		c.MetricsService,
		c.Log,
	)
	c.IntakeService = app.NewIntakeService(c.Config.AI, c.Runner, intake.DefaultCatalogue(), c.IntakeRepo, c.Log)

	return nil
}

func (c *Container) initRepositories() {
	c.CredentialRepo = postgres.NewCredentialRepository(c.DB)
	c.CacheRepo = postgres.NewCacheRepository(c.DB)
	c.ArtifactRepo = postgres.NewArtifactRepository(c.DB)
	c.MetricsRepo = postgres.NewMetricsRepository(c.DB)
	c.IntakeRepo = postgres.NewIntakeRepository(c.DB)
}

func (c *Container) loadQuestionLibrary() error {
	path := c.Config.Server.QuestionLibraryPath
	if path == "" {
		c.Log.Warn("QUESTION_LIBRARY_PATH not set, report generation disabled")
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read question library")
	}
	c.Structure = assess.ParseStructure(string(data))
	c.Log.Info("loaded question library: %d sections", len(c.Structure.Sections))
	return nil
}

// Shutdown releases held resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
