package utils

import (
	"context"

	"send-to-print/pkg/contextkeys"
	apperrors "send-to-print/pkg/errors"
)

func GetShopIDFromCtx(ctx context.Context) (uint64, error) {
	shopID, ok := ctx.Value(contextkeys.ShopIDKey).(uint64)
	if !ok || shopID == 0 {
		return 0, apperrors.ErrShopIDNotFoundInContext
	}
	return shopID, nil
}

func WithShopID(ctx context.Context, shopID uint64) context.Context {
	return context.WithValue(ctx, contextkeys.ShopIDKey, shopID)
}
