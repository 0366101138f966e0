package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/crossfire-games/crossfire/pkg/api"
	"github.com/crossfire-games/crossfire/pkg/game"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/gateway"
	"github.com/crossfire-games/crossfire/pkg/log"
	"github.com/crossfire-games/crossfire/pkg/prefs"
	"github.com/crossfire-games/crossfire/pkg/sensors"
	"github.com/crossfire-games/crossfire/pkg/version"
)

type envConfig struct {
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	SessionCollection string `env:"CROSSFIRE_SESSION_COLLECTION" envDefault:"sessions"`
	PrefsPath         string `env:"CROSSFIRE_PREFS_PATH" envDefault:"crossfire-prefs.db"`
}

func main() {
	httpPort := flag.Int("http-port", 8777, "Bridge HTTP port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	store := flag.String("store", "firestore", "Session store backend (firestore or memory)")
	simulate := flag.Bool("simulate", false, "Simulate sensors instead of reading bridge reports")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting client version %s", version.Get())

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		panic(fmt.Sprintf("Failed to parse environment: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sessionGateway gateway.Gateway
	switch *store {
	case "firestore":
		if cfg.FirebaseProjectID == "" {
			panic("FIREBASE_PROJECT_ID environment variable must be set")
		}
		firestoreGateway, err := gateway.NewFirestoreGateway(ctx, gateway.NewFirestoreGatewayOptions{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.GoogleCredentials,
			Collection:      cfg.SessionCollection,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create firestore gateway: %v", err))
		}
		sessionGateway = firestoreGateway
	case "memory":
		sessionGateway = gateway.NewMemoryGateway()
	default:
		panic(fmt.Sprintf("Unknown session store backend: %s", *store))
	}
	defer sessionGateway.Close(ctx)

	prefsStore, err := prefs.NewSQLiteStore(ctx, cfg.PrefsPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to open prefs store: %v", err))
	}
	defer prefsStore.Close(ctx)

	var locationSource sensors.LocationSource
	var orientationSource sensors.OrientationSource
	var reportedSource *sensors.ReportedSource
	if *simulate {
		simulatedSource := sensors.NewSimulatedSource(sensors.NewSimulatedSourceOptions{
			Origin:     types.Location{},
			StepMeters: 2,
			Interval:   time.Second,
		})
		go simulatedSource.Start(ctx)
		locationSource = simulatedSource
		orientationSource = simulatedSource
	} else {
		reportedSource = sensors.NewReportedSource()
		locationSource = reportedSource
		orientationSource = reportedSource
	}

	feature := game.NewFeature(game.NewFeatureOptions{
		Gateway:           sessionGateway,
		LocationSource:    locationSource,
		OrientationSource: orientationSource,
	})

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:    *httpPort,
		Feature: feature,
		Sensors: reportedSource,
		Prefs:   prefsStore,
	})
	go apiServer.Start(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop bridge server: %v", err)
		}
	}()

	if err := feature.Start(ctx); err != nil {
		log.Error("Game feature exited with error: %v", err)
	}
}
