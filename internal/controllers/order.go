package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"send-to-print/internal/dto"
	"send-to-print/internal/services"
	"send-to-print/pkg/api"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/filestorage"
	"send-to-print/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrderController обслуживает операции оператора точки. ShopID берётся из токена.
type OrderController struct {
	orderService services.OrderServiceInterface
	fileStorage  filestorage.FileStorageInterface
	logger       *zap.Logger
}

func NewOrderController(
	orderService services.OrderServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		orderService: orderService,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	res, err := c.orderService.GetOrders(ctx.Request().Context(), parseStatuses(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Заказы успешно получены", res)
}

// DownloadFile отдаёт файл заказа на печать.
func (c *OrderController) DownloadFile(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	file, err := c.orderService.GetOrderFile(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fullPath, err := c.fileStorage.Path(file.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Файл заказа отсутствует в хранилище", zap.Uint64("order_id", id), zap.String("file_path", file.FilePath))
			return utils.ErrorResponse(ctx, apperrors.ErrNotFound, c.logger)
		}
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	name := fmt.Sprintf("order-%d", id)
	if file.FileExtension != "" {
		name += "." + file.FileExtension
	}
	return ctx.Attachment(fullPath, name)
}

func (c *OrderController) MarkReady(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.MarkReady(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ готов к выдаче", res)
}

func (c *OrderController) Complete(ctx echo.Context) error {
	id, err := parseOrderID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CompleteOrderDTO
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&payload); err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных", err, nil), c.logger)
		}
		if err := ctx.Validate(&payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	}

	res, err := c.orderService.Complete(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Заказ выдан", res)
}
