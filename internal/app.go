package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cache_adapter "easystay-service/internal/adapters/cache"
	token_adapter "easystay-service/internal/adapters/jwt"
	logger_adapter "easystay-service/internal/adapters/logger"
	postgres_adapter "easystay-service/internal/adapters/postgres"
	rabbitmq_adapter "easystay-service/internal/adapters/rabbitmq"
	"easystay-service/internal/adapters/rest"
	"easystay-service/internal/configs"
	"easystay-service/internal/constants"
	"easystay-service/internal/core/port"
	"easystay-service/internal/core/usecase"
	fluentlogger "easystay-service/pkg/fluent_logger"
	"easystay-service/pkg/postgres"
	"easystay-service/pkg/rabbitmq/rabbitmq_common"
	"easystay-service/pkg/rabbitmq/rabbitmq_consumer"
	"easystay-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	rabbitReconnectInterval = 5 * time.Second
	shutdownTimeout         = 15 * time.Second
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	rateLimiter  *rest.RateLimiter
	searchCache  *cache_adapter.SearchCache
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	// Брокер опционален, без него поля остаются nil
	connManager               *rabbitmq_common.ConnectionManager
	referralEventsProducer    *rabbitmq_producer.Publisher
	reservationEventsListener port.EventListenerPort
}

// NewLogger собирает stdout-логгер и, если включен, Fluent Bit.
// Возвращенный клиент Fluent нужно закрыть при остановке.
func NewLogger(appConfig *configs.AppConfig) (port.LoggerPort, *fluent.Fluent, error) {
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			_ = fluentClient.Close()
			return nil, nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			_ = fluentClient.Close()
		}
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	return baseLogger, fluentClient, nil
}

// NewDBPool - пул PostgreSQL с настройками из конфигурации
func NewDBPool(ctx context.Context, appConfig *configs.AppConfig) (*pgxpool.Pool, error) {
	return postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		MaxConns:    int32(appConfig.Database.MaxConns),
	})
}

// NewApp - точка сборки всех зависимостей
func NewApp(appConfig *configs.AppConfig) (*App, error) {
	baseLogger, fluentClient, err := NewLogger(appConfig)
	if err != nil {
		return nil, err
	}

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{"fluent_enabled": appConfig.FluentBit.Enabled})

	application := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
	}
	if err := application.build(baseLogger); err != nil {
		application.closeResources()
		return nil, err
	}
	return application, nil
}

// build создает адаптеры, use case'ы и сервер. При ошибке уже созданное закрывает NewApp.
func (a *App) build(baseLogger port.LoggerPort) error {
	appConfig := a.config

	// --- ИСХОДЯЩИЕ АДАПТЕРЫ ---
	dbPool, err := NewDBPool(context.Background(), appConfig)
	if err != nil {
		a.logger.Error("Failed to connect to PostgreSQL", err, nil)
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	propertyStorage, err := postgres_adapter.NewPostgresStorageAdapter(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create postgres storage adapter: %w", err)
	}
	reservationStorage, err := postgres_adapter.NewReservationStorageAdapter(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create reservation storage adapter: %w", err)
	}
	affiliateRepository, err := postgres_adapter.NewAffiliateRepository(dbPool)
	if err != nil {
		return fmt.Errorf("failed to create affiliate repository: %w", err)
	}
	a.logger.Info("Postgres storage adapters initialized.", nil)

	// Выключенный кэш передаем настоящим nil-интерфейсом
	var searchCache port.SearchCachePort
	if appConfig.Cache.Enabled {
		a.searchCache = cache_adapter.NewSearchCache(cache_adapter.Config{
			LocalMaxSize:   appConfig.Cache.LocalMaxSize,
			TTL:            appConfig.Cache.TTL,
			MemcachedHosts: appConfig.Cache.MemcachedHosts,
		})
		searchCache = a.searchCache
		a.logger.Info("Search cache initialized.", port.Fields{
			"ttl":       appConfig.Cache.TTL.String(),
			"memcached": len(appConfig.Cache.MemcachedHosts) > 0,
		})
	}

	tokenService, err := token_adapter.NewTokenService(appConfig.Auth.JWTSigningKey)
	if err != nil {
		a.logger.Error("Failed to create token service", err, nil)
		return fmt.Errorf("failed to create token service: %w", err)
	}

	var referralEvents port.ReferralEventsPort
	if appConfig.RabbitMQ.Enabled {
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
		a.connManager, err = rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}, rabbitReconnectInterval, connManagerBridge)
		if err != nil {
			a.logger.Error("Failed to create connection manager", err, nil)
			return fmt.Errorf("failed to create connection manager: %w", err)
		}
		a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

		a.referralEventsProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ReferralsExchange,
			ExchangeType:             "topic",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, a.connManager)
		if err != nil {
			a.logger.Error("Failed to create referral events producer", err, nil)
			return fmt.Errorf("failed to create referral events producer: %w", err)
		}

		referralEvents, err = rabbitmq_adapter.NewReferralEventsPublisherAdapter(a.referralEventsProducer)
		if err != nil {
			return err
		}
		a.logger.Info("RabbitMQ referral events producer initialized.", nil)
	}
	a.logger.Info("All outgoing adapters initialized.", nil)

	// --- USE CASES ---
	searchPropertiesUseCase := usecase.NewSearchPropertiesUseCase(propertyStorage, reservationStorage, searchCache, appConfig.Search.ResultLimit)
	getPropertyBySlugUseCase := usecase.NewGetPropertyBySlugUseCase(propertyStorage)
	invalidateSearchCacheUseCase := usecase.NewInvalidateSearchCacheUseCase(searchCache)
	trackReferralClickUseCase := usecase.NewTrackReferralClickUseCase(affiliateRepository, referralEvents)
	loginAffiliateUseCase := usecase.NewLoginAffiliateUseCase(affiliateRepository, tokenService, appConfig.Auth.JWTTTL)
	getAffiliateDashboardUseCase := usecase.NewGetAffiliateDashboardUseCase(affiliateRepository)
	a.logger.Info("All use cases initialized.", nil)

	// --- ВХОДЯЩИЕ АДАПТЕРЫ ---
	if appConfig.RabbitMQ.Enabled {
		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:          rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:       constants.QueueSearchReservations,
			DurableQueue:    true,
			ExchangeName:    constants.ReservationsExchange,
			ExchangeType:    "topic",
			DeclareExchange: true,
			DurableExchange: true,
			RoutingKey:      constants.RoutingKeyReservationChange,
			PrefetchCount:   10,
			ConsumerTag:     "search-cache-invalidator",

			Retry: rabbitmq_consumer.RetryConfig{
				Enabled:            true,
				RetryExchange:      constants.ReservationsRetryExchange,
				RetryQueue:         constants.ReservationsWaitQueue,
				RetryTTLMillis:     constants.ReservationsRetryTTL,
				FinalDLXExchange:   constants.ReservationsFinalDLX,
				FinalDLQ:           constants.ReservationsFinalDLQ,
				FinalDLQRoutingKey: constants.ReservationsDLQRoutingKey,
				MaxRetries:         constants.ReservationsMaxRetries,
			},
		}
		a.reservationEventsListener, err = rabbitmq_adapter.NewReservationEventsConsumerAdapter(consumerCfg, invalidateSearchCacheUseCase, baseLogger, a.connManager)
		if err != nil {
			a.logger.Error("Failed to create reservation events listener", err, nil)
			return err
		}
		a.logger.Info("Reservation Events Listener initialized.", nil)
	} else {
		a.logger.Warn("RabbitMQ disabled, search cache relies on TTL only", nil)
	}

	a.rateLimiter = rest.NewRateLimiter(appConfig.Referral.RateRPS, appConfig.Referral.RateBurst)

	routes := rest.Routes{
		Search:    rest.NewSearchHandler(searchPropertiesUseCase, getPropertyBySlugUseCase),
		Affiliate: rest.NewAffiliateHandler(trackReferralClickUseCase, loginAffiliateUseCase, getAffiliateDashboardUseCase, appConfig.Referral.SiteBaseURL),
		Health:    rest.NewHealthHandler(propertyStorage),
		Auth:      rest.NewAuthMiddleware(tokenService),
		Limiter:   a.rateLimiter,
	}
	a.apiServer = rest.NewServer(rest.ServerConfig{
		Port:              appConfig.Rest.PORT,
		AllowedOrigins:    appConfig.Rest.CORSAllowedOrigins,
		TrustProxyHeaders: appConfig.Rest.TrustProxyHeaders,
	}, routes, baseLogger)
	a.logger.Info("REST API server configured.", nil)

	return nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.apiServer.Stop(shutdownCtx); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
			cancel()
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.reservationEventsListener != nil {
		wg.Add(1)
		go startListener("Reservation Events Listener", a.reservationEventsListener)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	// Отмена контекста останавливает слушателей
	cancelApp()

	return runErr
}

// closeResources закрывает все, что успели создать. Безопасна для частично собранного App.
func (a *App) closeResources() {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	if a.reservationEventsListener != nil {
		if err := a.reservationEventsListener.Close(); err != nil {
			a.logger.Error("Error closing reservation events listener", err, nil)
		}
	}

	if a.referralEventsProducer != nil {
		if err := a.referralEventsProducer.Close(); err != nil {
			a.logger.Error("Error closing referral events producer", err, nil)
		}
	}

	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}

	if a.searchCache != nil {
		a.searchCache.Close()
	}

	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Fprintf(os.Stderr, "ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
