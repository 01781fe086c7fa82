package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/webshop-labs/checkout/internal/dal/delivery"
	"github.com/webshop-labs/checkout/internal/dal/postgres"
	"github.com/webshop-labs/checkout/internal/dal/rabbitmq"
	"github.com/webshop-labs/checkout/internal/dal/repositories/orderevents"
	outboxrepo "github.com/webshop-labs/checkout/internal/dal/repositories/outbox/postgres"
	"github.com/webshop-labs/checkout/internal/jaeger"
	"github.com/webshop-labs/checkout/internal/service/services/checkoutsvc"
	httptransport "github.com/webshop-labs/checkout/internal/transport/http"
	outboxworker "github.com/webshop-labs/checkout/internal/worker/outbox"
	"github.com/webshop-labs/checkout/pkg/uricomposer"
)

// App represents the application.
type App struct {
	checkoutSvc    *checkoutsvc.CheckoutService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerProvider := mustNewTracerProvider()
	otel.SetTracerProvider(tracerProvider)

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	outboxRepo := outboxrepo.NewOutboxRepository(postgresClient)
	eventsRepo := orderevents.NewOrderEventsRabbitMQRepository(rabbitClient, outboxRepo)
	deliveryClient := delivery.NewClient()
	composer := uricomposer.New(viper.GetString("catalog.picture_base_url"))

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithPostgresClient(postgresClient),
		checkoutsvc.WithURIComposer(composer),
		checkoutsvc.WithNotificationFanout(
			checkoutsvc.NewNotificationFanout(eventsRepo, deliveryClient),
		),
	)

	outboxWorker := outboxworker.NewWorker(outboxRepo, rabbitClient)

	transport := httptransport.NewHTTPTransport(checkoutSvc)
	transport.RegisterRoutes()

	return &App{
		checkoutSvc:    checkoutSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   outboxWorker,
		tracerProvider: tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func mustNewTracerProvider() *sdktrace.TracerProvider {
	exporter := jaeger.MustNewJaeger()

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("checkout-svc"),
		)),
	)
}
