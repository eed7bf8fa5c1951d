package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"send-to-print/internal/integrations"
	"send-to-print/internal/integrations/mock"
	"send-to-print/internal/integrations/yookassa"
	"send-to-print/internal/listeners"
	"send-to-print/internal/reconcile"
	"send-to-print/internal/repositories"
	"send-to-print/internal/routes"
	"send-to-print/internal/services"
	"send-to-print/pkg/config"
	"send-to-print/pkg/database/postgresql"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/eventbus"
	"send-to-print/pkg/filestorage"
	applogger "send-to-print/pkg/logger"
	appmiddleware "send-to-print/pkg/middleware"
	"send-to-print/pkg/scheduler"
	"send-to-print/pkg/secretbox"
	"send-to-print/pkg/service"
	"send-to-print/pkg/telegram"
	"send-to-print/pkg/utils"
	"send-to-print/pkg/validation"
	"send-to-print/pkg/websocket"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Bot-Key"},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))
	e.Validator = validation.New()

	// --- 1. ХРАНИЛИЩА ---
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.Migrate(ctx, dbConn, logger); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	box, err := secretbox.NewFromHex(cfg.Payment.MasterKey)
	if err != nil {
		logger.Fatal("PAYMENT_MASTER_KEY не задан или некорректен", zap.Error(err))
	}

	// --- 2. ПЛАТЁЖНЫЕ ШЛЮЗЫ ---
	registry := integrations.NewRegistry()
	mustRegister(logger, registry, yookassa.New(cfg.Payment.BaseURL, cfg.Payment.Timeout, logger))
	mustRegister(logger, registry, mock.NewProvider(3))
	if err := registry.SetActive(cfg.Payment.Provider); err != nil {
		logger.Fatal("неизвестный платёжный провайдер", zap.String("provider", cfg.Payment.Provider), zap.Error(err))
	}

	// --- 3. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	shopRepo := repositories.NewShopRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	outboxRepo := repositories.NewRedisOutboxRepository(redisClient)

	// --- 4. СОБЫТИЯ И УВЕДОМЛЕНИЯ ---
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewNotificationListener(shopRepo, outboxRepo, hub, logger).Register(bus)

	tg := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	worker := listeners.NewDeliveryWorker(outboxRepo, tg, cfg.Notify.Workers, cfg.Notify.MaxAttempts, cfg.Notify.BaseBackoff, logger)
	worker.Start(ctx)

	// --- 5. СЕРВИСЫ ---
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)
	vault := services.NewCredentialVault(shopRepo, box, logger)
	orderService := services.NewOrderService(txManager, orderRepo, shopRepo, fileStorage, bus, logger)
	paymentService := services.NewPaymentService(txManager, orderRepo, vault, registry, bus, services.PaymentSettings{
		Currency:  cfg.Payment.Currency,
		ReturnURL: cfg.Payment.ReturnURL,
	}, logger)
	authService := services.NewAuthService(shopRepo, cacheRepo, jwtSvc, logger, cfg.Auth)
	reportService := services.NewReportService(orderService, logger)
	shopService := services.NewShopService(shopRepo, logger)

	sched := scheduler.New(logger.Named("scheduler"))
	svc := &routes.Services{
		Auth:        authService,
		Order:       orderService,
		Payment:     paymentService,
		Shop:        shopService,
		Report:      reportService,
		JWT:         jwtSvc,
		FileStorage: fileStorage,
		Hub:         hub,
		BotAPIKey:   cfg.Bot.APIKey,
	}
	if cfg.Reconcile.InProcess {
		reconcileLogger := logger.Named("reconcile")
		svc.Poller = reconcile.NewPoller(paymentService, sched, reconcile.Schedule{
			HotInterval:  cfg.Reconcile.HotInterval,
			HotWindow:    cfg.Reconcile.HotWindow,
			WarmInterval: cfg.Reconcile.WarmInterval,
			WarmWindow:   cfg.Reconcile.WarmWindow,
		}, func(r reconcile.Result) {
			if r.Err != nil {
				reconcileLogger.Warn("Сверка оплаты завершилась ошибкой", zap.Uint64("order_id", r.OrderID), zap.Error(r.Err))
				return
			}
			reconcileLogger.Info("Сверка оплаты завершена", zap.Uint64("order_id", r.OrderID), zap.String("status", r.Status))
		}, logger)
	}

	// --- 6. РОУТЫ ---
	routes.InitRouter(e, svc, &routes.Loggers{
		Main:    logger,
		Auth:    logger.Named("auth"),
		Order:   logger.Named("order"),
		Payment: logger.Named("payment"),
	})

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	sched.Stop()
	bus.Wait()
	worker.Wait()
	logger.Info("Сервер остановлен")
}

func mustRegister(logger *zap.Logger, registry integrations.RegistryInterface, provider integrations.PaymentGateway) {
	if err := registry.Register(provider); err != nil {
		logger.Fatal("не удалось зарегистрировать платёжный провайдер", zap.String("provider", provider.Name()), zap.Error(err))
	}
}
