package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"send-to-print/internal/controllers"
	"send-to-print/internal/services"
	"send-to-print/pkg/filestorage"
	"send-to-print/pkg/middleware"
	"send-to-print/pkg/service"
	"send-to-print/pkg/websocket"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Order   *zap.Logger
	Payment *zap.Logger
}

// Services собираются в main и раздаются контроллерам.
type Services struct {
	Auth        services.AuthServiceInterface
	Order       services.OrderServiceInterface
	Payment     services.PaymentServiceInterface
	Shop        services.ShopServiceInterface
	Report      services.ReportServiceInterface
	JWT         service.JWTService
	FileStorage filestorage.FileStorageInterface
	Hub         *websocket.Hub
	// Poller == nil, если сверку ведёт чат-клиент
	Poller    controllers.PollStarter
	BotAPIKey string
}

func InitRouter(e *echo.Echo, svc *Services, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(svc.JWT, svc.BotAPIKey, loggers.Auth)

	secureGroup := api.Group("", authMW.Auth)
	botGroup := api.Group("/bot", authMW.BotAuth)

	runAuthRouter(api, svc.Auth, loggers.Auth)
	runOrderRouter(secureGroup, svc, loggers.Order)
	runBotRouter(botGroup, svc, loggers.Payment)
	if svc.Hub != nil {
		runWebSocketRouter(api, svc.Hub, svc.JWT, loggers.Main)
	}

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

func runAuthRouter(api *echo.Group, authService services.AuthServiceInterface, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(authService, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
	}
}

func runOrderRouter(secureGroup *echo.Group, svc *Services, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(svc.Order, svc.FileStorage, logger)
	reportCtrl := controllers.NewReportController(svc.Report, logger)
	{
		secureGroup.GET("/orders", orderCtrl.GetOrders)
		secureGroup.GET("/orders/export", reportCtrl.ExportOrders)
		secureGroup.GET("/orders/:id/file", orderCtrl.DownloadFile)
		secureGroup.POST("/orders/:id/ready", orderCtrl.MarkReady)
		secureGroup.POST("/orders/:id/complete", orderCtrl.Complete)
	}
}

func runBotRouter(botGroup *echo.Group, svc *Services, logger *zap.Logger) {
	botCtrl := controllers.NewBotOrderController(svc.Order, svc.Payment, svc.FileStorage, svc.Poller, logger)
	shopCtrl := controllers.NewShopController(svc.Shop, logger)
	{
		botGroup.GET("/shops", shopCtrl.GetShops)
		botGroup.GET("/shops/:id", shopCtrl.FindShop)
		botGroup.POST("/orders", botCtrl.CreateOrder)
		botGroup.GET("/orders/:id", botCtrl.FindOrder)
		botGroup.POST("/orders/:id/payment", botCtrl.CreatePayment)
		botGroup.GET("/orders/:id/payment/status", botCtrl.CheckPaymentStatus)
		botGroup.POST("/orders/:id/payment/timeout", botCtrl.CancelOnTimeout)
	}
}

func runWebSocketRouter(api *echo.Group, hub *websocket.Hub, jwtSvc service.JWTService, logger *zap.Logger) {
	wsCtrl := controllers.NewWebSocketController(hub, jwtSvc, logger)
	api.GET("/ws", wsCtrl.ServeWs)
}
