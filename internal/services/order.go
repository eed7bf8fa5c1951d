package services

import (
	"context"
	"errors"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	"send-to-print/internal/events"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/filestorage"
	"send-to-print/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, orderData dto.CreateOrderDTO) (*dto.OrderResponseDTO, error)
	FindOrder(ctx context.Context, id uint64) (*dto.OrderResponseDTO, error)
	GetOrderFile(ctx context.Context, id uint64) (*dto.OrderFileDTO, error)
	GetOrders(ctx context.Context, statuses []string) ([]dto.OrderResponseDTO, error)
	MarkReady(ctx context.Context, orderID uint64) (*dto.TransitionResultDTO, error)
	Complete(ctx context.Context, orderID uint64, data dto.CompleteOrderDTO) (*dto.TransitionResultDTO, error)
}

type OrderService struct {
	orderRepo   repositories.OrderRepositoryInterface
	shopRepo    repositories.ShopRepositoryInterface
	machine     *OrderStateMachine
	fileStorage filestorage.FileStorageInterface
	publisher   Publisher
	logger      *zap.Logger
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	shopRepo repositories.ShopRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	publisher Publisher,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orderRepo:   orderRepo,
		shopRepo:    shopRepo,
		machine:     NewOrderStateMachine(txManager, orderRepo),
		fileStorage: fileStorage,
		publisher:   publisher,
		logger:      logger.Named("order_service"),
	}
}

// CreateOrder принимает заказ от сервиса загрузки; файл к этому моменту уже сохранён.
// Цена считается по тарифу точки; переданная клиентом цена должна с ним совпасть.
func (s *OrderService) CreateOrder(ctx context.Context, orderData dto.CreateOrderDTO) (*dto.OrderResponseDTO, error) {
	if orderData.Price.IsNegative() {
		return nil, apperrors.NewInvalidInputError("цена заказа должна быть больше нуля")
	}

	shop, err := s.shopRepo.FindShop(ctx, orderData.ShopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("точка %d не найдена", orderData.ShopID)
		}
		return nil, err
	}
	if !shop.IsActive {
		return nil, apperrors.NewInvalidInputError("точка %d не принимает заказы", orderData.ShopID)
	}

	price, err := orderPrice(shop, orderData.Color, orderData.Pages)
	if err != nil {
		return nil, err
	}
	if !orderData.Price.IsZero() && !orderData.Price.Round(2).Equal(price) {
		return nil, apperrors.NewInvalidInputError("цена %s не совпадает с тарифом точки: %s",
			orderData.Price.StringFixed(2), price.StringFixed(2))
	}

	order := &entities.Order{
		ShopID:           shop.ID,
		Price:            price,
		Note:             orderData.Note,
		ConfirmationCode: orderData.ConfirmationCode,
		Color:            orderData.Color,
		Status:           constants.StatusCreated,
		FileExtension:    orderData.FileExtension,
		FilePath:         orderData.FilePath,
		UserID:           orderData.UserID,
		Pages:            orderData.Pages,
	}

	if _, err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Заказ принят",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("shop_id", order.ShopID),
		zap.Int("pages", order.Pages),
	)
	s.publisher.Publish(ctx, events.OrderCreatedEvent{Order: *order})
	return orderToResponse(order), nil
}

func (s *OrderService) FindOrder(ctx context.Context, id uint64) (*dto.OrderResponseDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

// GetOrderFile отдаёт ссылку на файл заказа точки оператора.
// Чужой заказ и заказ без файла неотличимы от несуществующего.
func (s *OrderService) GetOrderFile(ctx context.Context, id uint64) (*dto.OrderFileDTO, error) {
	shopID, err := utils.GetShopIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ShopID != shopID || order.FilePath == "" || order.Status == constants.StatusCompleted {
		return nil, apperrors.ErrNotFound
	}

	return &dto.OrderFileDTO{
		OrderID:       order.ID,
		FilePath:      order.FilePath,
		FileExtension: order.FileExtension,
	}, nil
}

// GetOrders возвращает заказы точки оператора с фильтром по статусам.
func (s *OrderService) GetOrders(ctx context.Context, statuses []string) ([]dto.OrderResponseDTO, error) {
	shopID, err := utils.GetShopIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if !constants.IsKnownStatus(st) {
			return nil, apperrors.NewInvalidInputError("неизвестный статус '%s'", st)
		}
	}

	orders, err := s.orderRepo.GetOrders(ctx, dto.OrderFilterDTO{ShopID: shopID, Statuses: statuses})
	if err != nil {
		return nil, err
	}

	result := make([]dto.OrderResponseDTO, 0, len(orders))
	for i := range orders {
		result = append(result, *orderToResponse(&orders[i]))
	}
	return result, nil
}

func (s *OrderService) MarkReady(ctx context.Context, orderID uint64) (*dto.TransitionResultDTO, error) {
	shopID, err := utils.GetShopIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.machine.Apply(ctx, Transition{
		OrderID: orderID,
		To:      constants.StatusReady,
		ShopID:  shopID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Заказ готов к выдаче", zap.Uint64("order_id", orderID), zap.String("from", res.From))
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{Order: res.Order, From: res.From, To: res.Order.Status})
	return &dto.TransitionResultDTO{OrderID: orderID, Status: res.Order.Status}, nil
}

// Complete выдаёт заказ. Файл удаляется после коммита; ошибка удаления только логируется.
func (s *OrderService) Complete(ctx context.Context, orderID uint64, data dto.CompleteOrderDTO) (*dto.TransitionResultDTO, error) {
	shopID, err := utils.GetShopIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.machine.Apply(ctx, Transition{
		OrderID: orderID,
		To:      constants.StatusCompleted,
		ShopID:  shopID,
		Check: func(order *entities.Order) error {
			if data.ConfirmationCode != "" && data.ConfirmationCode != order.ConfirmationCode {
				return apperrors.NewInvalidInputError("неверный код подтверждения")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.fileStorage.Delete(res.Order.FilePath); err != nil {
		s.logger.Warn("Не удалось удалить файл выданного заказа",
			zap.Uint64("order_id", orderID),
			zap.String("file_path", res.Order.FilePath),
			zap.Error(err),
		)
	}

	s.logger.Info("Заказ выдан", zap.Uint64("order_id", orderID))
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{Order: res.Order, From: res.From, To: res.Order.Status})
	return &dto.TransitionResultDTO{OrderID: orderID, Status: res.Order.Status}, nil
}

// orderPrice = страницы × тариф точки для выбранной цветности.
func orderPrice(shop *entities.Shop, color string, pages int) (decimal.Decimal, error) {
	if pages <= 0 {
		return decimal.Zero, apperrors.NewInvalidInputError("количество страниц должно быть больше нуля")
	}

	var rate decimal.Decimal
	switch color {
	case constants.ColorBW:
		rate = shop.PriceBW
	case constants.ColorColor:
		rate = shop.PriceColor
	default:
		return decimal.Zero, apperrors.NewInvalidInputError("неизвестная цветность '%s'", color)
	}
	if !rate.IsPositive() {
		return decimal.Zero, apperrors.NewInvalidInputError("точка %d не печатает в режиме '%s'", shop.ID, color)
	}
	return rate.Mul(decimal.NewFromInt(int64(pages))).Round(2), nil
}

func orderToResponse(o *entities.Order) *dto.OrderResponseDTO {
	resp := &dto.OrderResponseDTO{
		ID:               o.ID,
		ShopID:           o.ShopID,
		Status:           o.Status,
		Price:            o.Price,
		Pages:            o.Pages,
		Color:            o.Color,
		Note:             o.Note,
		ConfirmationCode: o.ConfirmationCode,
		FileExtension:    o.FileExtension,
		FilePath:         o.FilePath,
		UserID:           o.UserID,
		CreatedAt:        o.CreatedAt.Local().Format("2006-01-02 15:04:05"),
	}
	if o.PaymentStatus.Valid {
		resp.PaymentStatus = &o.PaymentStatus.String
	}
	if o.PaymentAmount.Valid {
		amount := o.PaymentAmount.Decimal
		resp.PaymentAmount = &amount
	}
	if o.PaidAt.Valid {
		paidAt := o.PaidAt.Time.Local().Format("2006-01-02 15:04:05")
		resp.PaidAt = &paidAt
	}
	return resp
}
