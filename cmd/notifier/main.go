package main

import (
	_ "time/tzdata"

	"lilo/internal/notifications/repository"
	"lilo/internal/notifications/service"
	"lilo/internal/notifications/templates"
	"lilo/pkg/app"
	"lilo/pkg/config"
	"lilo/pkg/email"
	"lilo/pkg/kafka"
	kafka_config "lilo/pkg/kafka/config"
	kafka_middleware "lilo/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Notifier service")
	consumer := initConsumer(cfg, initNotifier(cfg))

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp()
	serverApp.AddWorker("booking-events", consumer)
	serverApp.Run()
}

func initNotifier(cfg *config.Config) *service.Notifier {
	emailCfg, err := email.LoadConfig()
	if err != nil {
		cfg.Log.Fatal("Invalid email configuration", "error", err)
	}
	if !emailCfg.Enabled {
		cfg.Log.Warn("SMTP host not configured, emails will be logged as failed")
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		cfg.Log.Fatal("Failed to parse email templates", "error", err)
	}

	return service.NewNotifier(
		email.New(emailCfg),
		repository.NewMongoEmailLogRepository(cfg),
		renderer,
		emailCfg,
		cfg.Log,
	)
}

func initConsumer(cfg *config.Config, notifier *service.Notifier) *kafka.Consumer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Fatal("Notifier requires KAFKA_BROKERS")
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, notifier.HandleMessage, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	return consumer
}
