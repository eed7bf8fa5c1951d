package controllers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "send-to-print/pkg/errors"
)

func parseOrderID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(400, "Неверный ID заказа", nil, nil)
	}
	return id, nil
}

// parseStatuses принимает ?status=a&status=b, ?status[]=a и ?status=a,b
func parseStatuses(ctx echo.Context) []string {
	var raw []string
	if arr, ok := ctx.QueryParams()["status[]"]; ok {
		raw = arr
	} else {
		raw = ctx.QueryParams()["status"]
	}

	var statuses []string
	for _, item := range raw {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}
	return statuses
}
