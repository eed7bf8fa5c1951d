package services

import (
	"context"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	"send-to-print/internal/repositories"
	apperrors "send-to-print/pkg/errors"

	"go.uber.org/zap"
)

type ShopServiceInterface interface {
	GetShops(ctx context.Context) ([]dto.ShopResponseDTO, error)
	FindShop(ctx context.Context, id uint64) (*dto.ShopResponseDTO, error)
}

// ShopService отдаёт чат-клиенту каталог точек, принимающих заказы.
type ShopService struct {
	shopRepo repositories.ShopRepositoryInterface
	logger   *zap.Logger
}

func NewShopService(shopRepo repositories.ShopRepositoryInterface, logger *zap.Logger) ShopServiceInterface {
	return &ShopService{
		shopRepo: shopRepo,
		logger:   logger.Named("shop_service"),
	}
}

func (s *ShopService) GetShops(ctx context.Context) ([]dto.ShopResponseDTO, error) {
	shops, err := s.shopRepo.GetShops(ctx, true)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ShopResponseDTO, 0, len(shops))
	for i := range shops {
		result = append(result, *shopToResponse(&shops[i]))
	}
	return result, nil
}

// FindShop не различает отключённую и несуществующую точку.
func (s *ShopService) FindShop(ctx context.Context, id uint64) (*dto.ShopResponseDTO, error) {
	shop, err := s.shopRepo.FindShop(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shop.IsActive {
		s.logger.Debug("Запрошена отключённая точка", zap.Uint64("shop_id", id))
		return nil, apperrors.ErrNotFound
	}
	return shopToResponse(shop), nil
}

func shopToResponse(s *entities.Shop) *dto.ShopResponseDTO {
	return &dto.ShopResponseDTO{
		ID:         s.ID,
		Name:       s.Name,
		Address:    s.Address,
		WorkHours:  s.WorkHours,
		PriceBW:    s.PriceBW,
		PriceColor: s.PriceColor,
	}
}
