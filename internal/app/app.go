package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/internal/controller"
	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/handler"
	"github.com/alimikegami/astromart/internal/infrastructure/mail"
	"github.com/alimikegami/astromart/internal/infrastructure/markup"
	"github.com/alimikegami/astromart/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/astromart/internal/infrastructure/tracing"
	appmiddleware "github.com/alimikegami/astromart/internal/middleware"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/internal/store"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/go-co-op/gocron/v2"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

const healthInterval = 10 * time.Second

type App struct {
	Mongo  *mongo.Database
	DB     *sqlx.DB
	Config *config.Config
	Server *echo.Echo
	GRPC   *grpc.Server
}

// Start serves the HTTP API until ctx is cancelled or the server fails.
func (app *App) Start(ctx context.Context) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	traceProvider, err := tracing.InitTracing(app.Config.TracingConfig.CollectorHost, "astromart")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown tracing")
		}
	}()

	tracer := traceProvider.Tracer("astromart")

	var publisher service.EventPublisher = kafka.DiscardPublisher{}
	brokerEnabled := app.Config.KafkaConfig.BrokerAddress != ""
	if brokerEnabled {
		conn, err := kafka.CreateKafkaProducer(ctx, app.Config.KafkaConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to the broker")
		}
		kafkaPublisher := kafka.CreatePublisher(conn)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn().Msg("BROKER_ADDRESS is not set, events will not be published")
	}

	catalog := store.CreateStore[domain.Product]()
	defer catalog.Close()
	carts := store.CreateStore[domain.Cart]()
	defer carts.Close()

	productRepo := repository.CreateProductRepository(app.Mongo)
	cartRepo := repository.CreateCartRepository(app.Mongo)
	discountRepo := repository.CreateDiscountRepository(app.Mongo)
	orderRepo := repository.CreateOrderRepository(app.Mongo)
	userRepo := repository.CreateUserRepository(app.DB)
	imageRepo, err := repository.CreateImageRepository(app.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open the image bucket")
	}

	var mailer service.Mailer = mail.LogMailer{}
	if app.Config.SMTPConfig.Enabled() {
		mailer = mail.CreateSMTPMailer(app.Config.SMTPConfig)
	}

	productSvc := service.CreateProductService(productRepo, imageRepo, catalog, publisher, markup.CreateClient(app.Config.MarkupConfig))
	cartSvc := service.CreateCartService(cartRepo, productRepo, carts)
	discountSvc := service.CreateDiscountService(discountRepo)
	orderSvc := service.CreateOrderService(orderRepo, productRepo, cartRepo, discountRepo, catalog, carts, publisher)
	userSvc := service.CreateUserService(userRepo, *app.Config)
	notificationSvc := service.CreateNotificationService(mailer, app.Config.SMTPConfig.Sender)

	err = productSvc.ResyncCatalog(logger.WithContext(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load the catalog")
	}

	if brokerEnabled {
		hostname, _ := os.Hostname()
		catalogReader := kafka.CreateKafkaReader(app.Config.KafkaConfig, fmt.Sprintf("%s-catalog-%s", app.Config.KafkaConfig.GroupID, hostname))
		defer catalogReader.Close()
		notificationReader := kafka.CreateKafkaReader(app.Config.KafkaConfig, app.Config.KafkaConfig.GroupID)
		defer notificationReader.Close()

		go service.ConsumeEvents(ctx, catalogReader, "catalog", productSvc.HandleEvent)
		go service.ConsumeEvents(ctx, notificationReader, "notification", notificationSvc.HandleEvent)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			// add the context to the request
			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))

	metrics := echo.New()
	metrics.HideBanner = true
	metrics.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := metrics.Start(fmt.Sprintf(":%s", app.Config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()
	defer metrics.Close()

	g := e.Group("/api/v1")
	g.Use(appmiddleware.Logger)

	isLoggedIn := appmiddleware.IsLoggedIn(app.Config.JWTSecret)
	admin := g.Group("/admin", isLoggedIn, appmiddleware.IsAdmin)

	controller.CreateUserController(g, admin, userSvc)
	controller.CreateProductController(g, admin, productSvc)
	controller.CreateCartController(g, cartSvc, isLoggedIn)
	controller.CreateOrderController(g, admin, orderSvc, isLoggedIn)
	controller.CreateDiscountController(g, admin, discountSvc, isLoggedIn)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "Hello, World!", nil)
	})

	healthHandler := handler.CreateGRPCHandler(
		handler.Check{Name: "mongodb", Probe: func(ctx context.Context) error {
			return app.Mongo.Client().Ping(ctx, nil)
		}},
		handler.Check{Name: "postgres", Probe: app.DB.PingContext},
	)
	healthHandler.Refresh(ctx)

	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create the scheduler")
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			app.Config.CatalogResync,
		),
		gocron.NewTask(
			func() {
				if err := productSvc.ResyncCatalog(logger.WithContext(ctx)); err != nil {
					logger.Error().Err(err).Str("component", "ResyncCatalog").Msg("")
				}
			},
		),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule the catalog resync")
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			healthInterval,
		),
		gocron.NewTask(
			healthHandler.Refresh,
			ctx,
		),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule the health refresh")
	}

	s.Start()
	defer func() {
		if err := s.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop the scheduler")
		}
	}()

	app.GRPC = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthHandler.Register(app.GRPC)

	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", app.Config.GRPCPort))
		if err != nil {
			log.Error().Err(err).Str("port", app.Config.GRPCPort).Msg("Failed to listen for gRPC")
			return
		}
		log.Info().Str("port", app.Config.GRPCPort).Msg("gRPC server started")
		if err := app.GRPC.Serve(lis); err != nil {
			log.Error().Err(err).Msg("Failed to serve gRPC server")
		}
	}()
	defer healthHandler.Shutdown()

	app.Server = e
	closeOnShutdown(e, catalog.Close, carts.Close)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		if err := app.StopServer(); err != nil {
			logger.Error().Err(err).Msg("Failed to stop the server")
		}
	}()

	if err := e.Start(fmt.Sprintf(":%s", app.Config.ServicePort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("Failed to start the server")
		cancel()
	}

	<-stopped
}

// closeOnShutdown runs closers as soon as the HTTP server starts shutting
// down, which ends the open event streams so Shutdown does not wait on them.
func closeOnShutdown(e *echo.Echo, closers ...func()) {
	for _, closer := range closers {
		e.Server.RegisterOnShutdown(closer)
	}
}

func (app *App) StopServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.GRPC != nil {
		app.GRPC.GracefulStop()
	}

	return app.Server.Shutdown(ctx)
}
