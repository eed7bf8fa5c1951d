package controllers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"send-to-print/config"
	"send-to-print/internal/dto"
	"send-to-print/internal/services"
	"send-to-print/pkg/api"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/filestorage"
	"send-to-print/pkg/utils"
	"send-to-print/pkg/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const orderUploadContext = "order_file"

// PollStarter запускает сверку оплаты внутри процесса (RECONCILE_IN_PROCESS).
type PollStarter interface {
	Start(orderID uint64)
}

// BotOrderController обслуживает чат-клиента: приём заказа и платёжные операции.
type BotOrderController struct {
	orderService   services.OrderServiceInterface
	paymentService services.PaymentServiceInterface
	fileStorage    filestorage.FileStorageInterface
	poller         PollStarter
	logger         *zap.Logger
}

func NewBotOrderController(
	orderService services.OrderServiceInterface,
	paymentService services.PaymentServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	poller PollStarter,
	logger *zap.Logger,
) *BotOrderController {
	return &BotOrderController{
		orderService:   orderService,
		paymentService: paymentService,
		fileStorage:    fileStorage,
		poller:         poller,
		logger:         logger,
	}
}

// CreateOrder принимает multipart (поле data с JSON и файл file) либо JSON,
// если файл уже лежит в хранилище и передан file_path.
func (c *BotOrderController) CreateOrder(ctx echo.Context) error {
	var payload dto.CreateOrderDTO
	var savedPath string

	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		dataString := ctx.FormValue("data")
		if dataString == "" {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "поле 'data' с JSON данными не найдено", nil, nil), c.logger)
		}
		if err := json.Unmarshal([]byte(dataString), &payload); err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "некорректный JSON в поле 'data'", nil, nil), c.logger)
		}

		file, err := ctx.FormFile("file")
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "файл заказа не передан", err, nil), c.logger)
		}
		src, err := file.Open()
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		if err := validation.ValidateFile(file, src, orderUploadContext); err != nil {
			src.Close()
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), c.logger)
		}
		savedPath, err = c.fileStorage.Save(src, file.Filename, config.UploadContexts[orderUploadContext].PathPrefix)
		src.Close()
		if err != nil {
			c.logger.Error("Не удалось сохранить файл заказа", zap.String("file", file.Filename), zap.Error(err))
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		payload.FilePath = savedPath
		payload.FileExtension = strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	} else if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных", err, nil), c.logger)
	}

	if err := ctx.Validate(&payload); err != nil {
		c.releaseFile(savedPath)
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.CreateOrder(ctx.Request().Context(), payload)
	if err != nil {
		c.releaseFile(savedPath)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Заказ принят", res)
}

func (c *BotOrderController) releaseFile(path string) {
	if path == "" {
		return
	}
	if err := c.fileStorage.Delete(path); err != nil {
		c.logger.Warn("Не удалось удалить файл отклонённого заказа", zap.String("path", path), zap.Error(err))
	}
}

func (c *BotOrderController) FindOrder(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orderService.FindOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ найден", res)
}

func (c *BotOrderController) CreatePayment(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.paymentService.CreatePayment(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if c.poller != nil && !res.Replayed {
		c.poller.Start(id)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Платёж создан", res)
}

func (c *BotOrderController) CheckPaymentStatus(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.paymentService.CheckPaymentStatus(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Статус оплаты получен", res)
}

func (c *BotOrderController) CancelOnTimeout(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.paymentService.CancelOnTimeout(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Отмена по таймауту обработана", res)
}
