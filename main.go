package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/appetiteclub/reserve/internal/cache"
	"github.com/appetiteclub/reserve/internal/mongo"
	"github.com/appetiteclub/reserve/internal/monitoring"
	"github.com/appetiteclub/reserve/internal/schedule"
	"github.com/appetiteclub/reserve/pkg"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "RESERVE"
	appName      = "reserve"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	err = tableRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}
	lifecycle = append(lifecycle, apt.LifecycleHooks{OnStop: tableRepo.Stop})

	db := tableRepo.GetDatabase()
	if db == nil {
		err := errors.New("cannot get table repo database")
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, err)
	}

	bookingRepo := mongo.NewBookingRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	}
	lifecycle = append(lifecycle, publisherLifecycle)

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}
	lifecycle = append(lifecycle, subLifecycle)

	// Availability responses are cached in Redis when a URL is configured.
	// Without one the service computes every request from scratch.
	var availability *cache.Availability
	redisURL, _ := config.GetString("redis.url")
	if redisURL != "" {
		redisClient, err := cache.NewClient(ctx, redisURL)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to redis: %v", appName, appVersion, err)
		}

		ttl := 5 * time.Minute
		if raw := config.GetStringOrDef("cache.availability_ttl", ""); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				log.Fatalf("%s(%s) invalid cache.availability_ttl: %v", appName, appVersion, err)
			}
			ttl = parsed
		}

		availability = cache.NewAvailability(redisClient, ttl, logger)
		lifecycle = append(lifecycle, apt.LifecycleHooks{
			OnStop: func(context.Context) error {
				return availability.Close()
			},
		})
	}

	venueURL, _ := config.GetString("services.venue.url")
	venueClient := apt.NewServiceClient(venueURL)
	hoursCache := schedule.NewHoursCache(venueClient, logger)

	hoursLifecycle := apt.LifecycleHooks{
		OnStart: func(ctx context.Context) error {
			if venueURL == "" {
				logger.Info("No venue service configured, availability assumes always open")
				return nil
			}
			if err := hoursCache.Warm(ctx); err != nil {
				// The estimator fails open until the cache warms; do not
				// block startup on the venue service being reachable.
				logger.Errorf("Cannot warm opening hours cache: %v", err)
			}
			return nil
		},
	}
	lifecycle = append(lifecycle, hoursLifecycle)

	ranker := schedule.NewRankerFromConfig(config)
	thresholds := schedule.ThresholdsFromConfig(config)
	detector := schedule.NewDetector(ranker, thresholds, logger)
	estimator := schedule.NewEstimator(hoursCache, thresholds)

	reservationSub := schedule.NewReservationChangeSubscriber(sub, availability, logger)
	lifecycle = append(lifecycle, reservationSub)

	repos := schedule.Repos{
		BookingRepo: bookingRepo,
		TableRepo:   tableRepo,
	}

	hd := schedule.HandlerDeps{
		Repos:        repos,
		Detector:     detector,
		Estimator:    estimator,
		Availability: availability,
		Publisher:    publisher,
	}

	handler := schedule.NewHandler(
		hd,
		config,
		logger,
	)

	metrics := monitoring.NewMetrics()

	// Choose seeding strategy based on config
	demoEnabled, _ := config.GetString("seeding.demo")
	var seedingFunc func(ctx context.Context) error
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled for reserve service")
		seedingFunc = schedule.DemoSeedingFunc(seedCtx, repos, db, seedFS, logger)
	} else {
		seedingFunc = schedule.SeedingFunc(seedCtx, tableRepo, seedFS, logger)
	}

	seedHooks := apt.LifecycleHooks{
		OnStart: seedingFunc,
		OnStop:  schedule.StopFunc(cancelSeeds),
	}
	lifecycle = append(lifecycle, seedHooks)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	// Defense-in-depth: restrict to internal networks only.
	// This complements (does not replace) network policies at the infrastructure level.
	stack = append(stack, middleware.InternalOnly())

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler, metrics),
		apt.WithLifecycle(lifecycle...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
