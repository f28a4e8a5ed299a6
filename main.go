package main

import (
	"log"

	"github.com/joho/godotenv"

	"saevis/app"
	"saevis/domain/threshold"
	"saevis/internal"
	"saevis/internal/coalesce"
	"saevis/internal/config"
	"saevis/internal/testkit"
	"saevis/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	provider := testkit.NewDemoProvider(appConfig.Demo.Seed, appConfig.Demo.FeatureCount)
	sched := coalesce.NewScheduler(coalesce.NewSystemClock(), appConfig.Engine.DebounceDelay)
	sessions := app.NewSessionManager(map[threshold.Metric]float64{
		threshold.MetricFeatureSplitting: appConfig.Engine.DefaultFeatureSplitting,
		threshold.MetricSemDistMean:      appConfig.Engine.DefaultSemDistMean,
		threshold.MetricScoreFuzz:        appConfig.Engine.DefaultScore,
		threshold.MetricScoreSimulation:  appConfig.Engine.DefaultScore,
		threshold.MetricScoreDetection:   appConfig.Engine.DefaultScore,
	})
	service := app.NewDashboardService(provider, sched, sessions, logger, appConfig)

	server := ui.NewServer(appConfig, service, logger)
	if err := server.Run(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
