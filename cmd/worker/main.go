package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/portrait-customizer/internal/app/api"
	custapp "github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	enrichmentworkflow "github.com/Apurer/portrait-customizer/internal/durable/temporal/workflows/enrichment"
	platformobservability "github.com/Apurer/portrait-customizer/internal/platform/observability"
	platformpostgres "github.com/Apurer/portrait-customizer/internal/platform/postgres"
	enrichmentactivities "github.com/Apurer/portrait-customizer/internal/platform/temporal/activities/enrichment"
)

const serviceName = "portrait-customizer-worker"

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// run polls the enrichment task queue until the process is interrupted.
func run(ctx context.Context) error {
	if err := api.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.SettingsFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	logger := instruments.Logger
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Error("observability shutdown failed", slog.String("error", err.Error()))
		}
	}()

	gateway, err := api.NewPlatformGateway(cfg, logger)
	if err != nil {
		return fmt.Errorf("configure platform gateway: %w", err)
	}
	db, closeDB := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	defer closeDB()
	history, _ := api.BuildHistory(db, logger)
	activities := enrichmentactivities.NewActivities(custapp.NewEnricher(gateway, history))

	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		return fmt.Errorf("configure Temporal tracing: %w", err)
	}
	temporalClient, err := client.Dial(client.Options{
		HostPort:     cfg.TemporalAddress,
		Namespace:    cfg.TemporalNamespace,
		Logger:       workerlog.NewStructuredLogger(logger),
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return fmt.Errorf("dial Temporal at %s: %w", cfg.TemporalAddress, err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, enrichmentworkflow.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(enrichmentworkflow.Workflow, workflow.RegisterOptions{Name: enrichmentworkflow.WorkflowName})
	w.RegisterActivityWithOptions(activities.Describe, activity.RegisterOptions{Name: enrichmentactivities.DescribeActivityName})
	w.RegisterActivityWithOptions(activities.Persist, activity.RegisterOptions{Name: enrichmentactivities.PersistActivityName})

	logger.Info("enrichment worker polling",
		slog.String("taskQueue", enrichmentworkflow.TaskQueue),
		slog.String("namespace", cfg.TemporalNamespace),
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("enrichment worker: %w", err)
	}
	logger.Info("enrichment worker stopped")
	return nil
}
