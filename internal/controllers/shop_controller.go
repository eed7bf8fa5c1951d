package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"send-to-print/internal/services"
	"send-to-print/pkg/api"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/utils"
)

type ShopController struct {
	shopService services.ShopServiceInterface
	logger      *zap.Logger
}

func NewShopController(shopService services.ShopServiceInterface, logger *zap.Logger) *ShopController {
	return &ShopController{shopService: shopService, logger: logger}
}

func (c *ShopController) GetShops(ctx echo.Context) error {
	res, err := c.shopService.GetShops(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Точки успешно получены", res)
}

func (c *ShopController) FindShop(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID точки", nil, nil), c.logger)
	}

	res, err := c.shopService.FindShop(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Точка найдена", res)
}
