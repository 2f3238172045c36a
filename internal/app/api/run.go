package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	portraitserver "github.com/Apurer/portrait-customizer/go"

	platformclient "github.com/Apurer/portrait-customizer/internal/clients/http/platform"
	custmemory "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/memory"
	custobs "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/observability"
	custpostgres "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/persistence/postgres"
	custplatform "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/platform"
	custworkflows "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/workflows"
	custapp "github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	custports "github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
	"github.com/Apurer/portrait-customizer/internal/domains/prompts/adapters/yamlfile"
	promptsapp "github.com/Apurer/portrait-customizer/internal/domains/prompts/application"
	"github.com/Apurer/portrait-customizer/internal/platform/imageprep"
	"github.com/Apurer/portrait-customizer/internal/platform/migrations"
	platformobservability "github.com/Apurer/portrait-customizer/internal/platform/observability"
	platformpostgres "github.com/Apurer/portrait-customizer/internal/platform/postgres"
)

const serviceName = "portrait-customizer-api"

// Run boots the portrait customization HTTP API with observability, persistence, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.SettingsFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	gateway, err := NewPlatformGateway(cfg, logger)
	if err != nil {
		return err
	}

	db, cleanupDB := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	history, idempotency := BuildHistory(db, logger)

	templates, err := yamlfile.Load(cfg.PromptTemplatesFile)
	if err != nil {
		return fmt.Errorf("failed to load prompt templates: %w", err)
	}
	prompts := promptsapp.NewService(templates, promptsapp.WithLogger(logger))

	var enrichment custports.EnrichmentOrchestrator = custworkflows.NewInlineEnrichment(custapp.NewEnricher(gateway, history))
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running description enrichment inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		enrichment = custworkflows.NewTemporalEnrichment(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	core := custapp.NewService(
		custapp.Dependencies{
			Catalog:     gateway,
			Credits:     gateway,
			Generator:   gateway,
			Sessions:    custmemory.NewSessionStore(cfg.SessionTTL),
			History:     history,
			Idempotency: idempotency,
			Enrichment:  enrichment,
			Images:      imageprep.New(imageprep.WithMaxDimension(cfg.ImageMaxDimension)),
			Prompts:     prompts,
		},
		custapp.WithLogger(logger),
		custapp.WithZeroCostGeneration(cfg.AllowZeroCostGeneration),
		custapp.WithPurchaseURL(cfg.CreditsPurchaseURL),
		custapp.WithProgressTimeout(cfg.ProgressTimeout),
		custapp.WithGenerationTimeout(cfg.GenerationTimeout),
	)
	service := custobs.New(
		core,
		custobs.WithLogger(logger),
		custobs.WithTracer(instruments.Tracer("internal.customization.application")),
		custobs.WithMeter(instruments.Meter("internal.customization.application")),
	)

	handlers := portraitserver.ApiHandleFunctions{
		WizardAPI:      portraitserver.NewWizardAPI(service),
		GenerationsAPI: portraitserver.NewGenerationsAPI(service),
		PromptsAPI:     portraitserver.NewPromptsAPI(prompts),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	portraitserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("portrait customizer API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("portrait customizer API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down portrait customizer API")
		return server.Shutdown(shutdownCtx)
	}
}

// NewPlatformGateway builds the instrumented, rate-limited platform client behind the outbound ports.
func NewPlatformGateway(cfg Config, logger *slog.Logger) (*custplatform.Gateway, error) {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	httpClient := &http.Client{Timeout: cfg.PlatformTimeout, Transport: transport}
	generationClient := &http.Client{Timeout: cfg.GenerationTimeout, Transport: transport}
	platform, err := platformclient.NewClient(
		cfg.PlatformBaseURL,
		platformclient.WithHTTPClient(httpClient),
		platformclient.WithGenerationHTTPClient(generationClient),
		platformclient.WithAPIKey(cfg.PlatformAPIKey),
		platformclient.WithRateLimit(cfg.PlatformRateLimitRPS, int(cfg.PlatformRateLimitRPS)+1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure platform client: %w", err)
	}
	return custplatform.NewGateway(platform, logger), nil
}

// BuildHistory selects PostgreSQL-backed history and idempotency stores when db is usable,
// falling back to in-memory adapters otherwise.
func BuildHistory(db *gorm.DB, logger *slog.Logger) (custports.GenerationLog, custports.IdempotencyStore) {
	if db == nil {
		return custmemory.NewGenerationLog(), custmemory.NewIdempotencyStore()
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to memory", slog.String("error", err.Error()))
		return custmemory.NewGenerationLog(), custmemory.NewIdempotencyStore()
	}
	logger.Info("generation history configured with postgres")
	return custpostgres.NewGenerationLog(db), custpostgres.NewIdempotencyStore(db)
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
