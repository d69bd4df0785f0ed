package protocal

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"messenger-connect/configs"
	httpAdapter "messenger-connect/internal/adapters/input/http"
	"messenger-connect/internal/adapters/output/algolia"
	"messenger-connect/internal/adapters/output/memory"
	messengerAdapter "messenger-connect/internal/adapters/output/messenger"
	"messenger-connect/internal/adapters/output/wit"
	"messenger-connect/internal/application"
	"messenger-connect/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	logrus.Info(configs.GetViper().Env)
	if err := validator.New().ValidateStruct(configs.GetViper()); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	// Wire up the hexagonal architecture layers
	// Output adapters
	sessionStore := memory.NewMemorySessionStore()
	messengerClient, err := messengerAdapter.NewMessengerClientAdapter(configs.GetViper().Messenger)
	if err != nil {
		logrus.Fatalf("Failed to create messenger client: %v", err)
	}
	converseClient, err := wit.NewConverseClientAdapter(configs.GetViper().Wit)
	if err != nil {
		logrus.Fatalf("Failed to create converse client: %v", err)
	}
	merchantIndex, err := algolia.NewMerchantIndexAdapter(configs.GetViper().Algolia)
	if err != nil {
		logrus.Fatalf("Failed to create merchant index client: %v", err)
	}

	// Application services (use cases)
	runner := application.NewActionRunner(converseClient, configs.GetViper().Wit.MaxSteps)
	actions := application.NewActions(
		sessionStore,
		messengerClient,
		merchantIndex,
		configs.GetViper().Algolia.Filters,
		time.Duration(configs.GetViper().Messenger.Timeout)*time.Second,
	)
	actions.RegisterAll(runner)
	if err := runner.ValidateRegistry(configs.GetViper().Wit.Actions); err != nil {
		logrus.Fatalf("Action registry mismatch: %v", err)
	}
	webhookSrv := application.NewWebhookService(sessionStore, messengerClient, runner, 0)

	// Input adapters (HTTP handlers)
	hdl := httpAdapter.New()
	webhookHdl := httpAdapter.NewWebhookHandler(
		webhookSrv,
		configs.GetViper().Messenger.AppSecret,
		configs.GetViper().Messenger.VerifyToken,
	)

	app.Get("/health", hdl.HealthCheck)

	// Messenger webhook endpoints
	app.Get("/webhook", webhookHdl.Verify)
	app.Post("/webhook", webhookHdl.HandleWebhook)

	err = app.Listen(":" + configs.GetViper().App.Port)
	if err != nil {
		return err
	}

	logrus.Println("Listerning on port: ", configs.GetViper().App.Port)
	return nil
}
