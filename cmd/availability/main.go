package main

import (
	_ "time/tzdata"

	"lilo/internal/availability/handler"
	"lilo/internal/availability/repository"
	"lilo/internal/availability/service"
	"lilo/internal/availability/validator"
	"lilo/internal/slots/cache"
	"lilo/pkg/app"
	"lilo/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAvailabilityHandler(availabilityService, cfg.OperatorAPIKey, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	availabilityService := service.NewAvailabilityService(
		repository.NewMongoRuleRepository(cfg),
		repository.NewMongoBlockedDateRepository(cfg),
		validator.NewAvailabilityValidator(cfg.Log),
		cache.New(cfg.Client.Redis, cfg.SlotCacheTTL, cfg.Log),
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}
