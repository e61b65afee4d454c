package main

import (
	_ "time/tzdata"

	availabilityrepo "lilo/internal/availability/repository"
	"lilo/internal/bookings/events"
	"lilo/internal/bookings/handler"
	"lilo/internal/bookings/repository"
	"lilo/internal/bookings/service"
	"lilo/internal/bookings/validator"
	"lilo/internal/slots/cache"
	slothandler "lilo/internal/slots/handler"
	slotservice "lilo/internal/slots/service"
	"lilo/pkg/app"
	"lilo/pkg/config"
	"lilo/pkg/kafka"
	kafka_config "lilo/pkg/kafka/config"
	kafka_middleware "lilo/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	publisher := initPublisher(cfg)
	slotService, bookingService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		slothandler.NewSlotHandler(slotService, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.OperatorAPIKey, cfg.Log),
	)
	serverApp.OnShutdown(publisher)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Warn("Kafka brokers not configured, booking events will not be published")
		return events.NewNoopPublisher()
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	return events.NewKafkaPublisher(producer)
}

func initServices(cfg *config.Config, publisher events.Publisher) (slotservice.SlotService, service.BookingService) {
	ruleRepo := availabilityrepo.NewMongoRuleRepository(cfg)
	blockedRepo := availabilityrepo.NewMongoBlockedDateRepository(cfg)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	slotCache := cache.New(cfg.Client.Redis, cfg.SlotCacheTTL, cfg.Log)

	generator := slotservice.NewGenerator(ruleRepo, blockedRepo, cfg)
	window := slotservice.NewDateWindow(cfg)
	slotService := slotservice.NewSlotService(
		generator,
		slotservice.NewChecker(bookingRepo),
		window,
		slotCache,
		cfg,
	)

	bookingService := service.NewBookingService(
		bookingRepo,
		generator,
		window,
		slotCache,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return slotService, bookingService
}
