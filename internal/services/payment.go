package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	"send-to-print/internal/events"
	"send-to-print/internal/integrations"
	integrationsDTO "send-to-print/internal/integrations/dto"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/eventbus"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentServiceInterface interface {
	CreatePayment(ctx context.Context, orderID uint64) (*dto.PaymentCreatedDTO, error)
	CheckPaymentStatus(ctx context.Context, orderID uint64) (*dto.PaymentStatusDTO, error)
	CancelOnTimeout(ctx context.Context, orderID uint64) (*dto.TimeoutResultDTO, error)
}

// Publisher публикует события после коммита.
type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type PaymentSettings struct {
	Currency  string
	ReturnURL string
}

type PaymentService struct {
	txManager repositories.TxManagerInterface
	orderRepo repositories.OrderRepositoryInterface
	machine   *OrderStateMachine
	vault     CredentialVaultInterface
	gateways  integrations.RegistryInterface
	publisher Publisher
	settings  PaymentSettings
	now       func() time.Time
	logger    *zap.Logger
}

func NewPaymentService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	vault CredentialVaultInterface,
	gateways integrations.RegistryInterface,
	publisher Publisher,
	settings PaymentSettings,
	logger *zap.Logger,
) PaymentServiceInterface {
	return &PaymentService{
		txManager: txManager,
		orderRepo: orderRepo,
		machine:   NewOrderStateMachine(txManager, orderRepo),
		vault:     vault,
		gateways:  gateways,
		publisher: publisher,
		settings:  settings,
		now:       time.Now,
		logger:    logger.Named("payment_service"),
	}
}

// CreatePayment идемпотентен: ключ идемпотентности фиксируется до вызова шлюза,
// а повторный вызов для заказа в waiting_payment возвращает сохранённый платёж.
func (s *PaymentService) CreatePayment(ctx context.Context, orderID uint64) (*dto.PaymentCreatedDTO, error) {
	order, err := s.ensureIdempotencyKey(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == constants.StatusWaitingPayment {
		return paymentReplay(order), nil
	}

	gateway, creds, err := s.resolveGateway(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}

	var (
		created  *entities.Order
		replayed bool
	)
	// Шлюз вызывается под блокировкой строки намеренно: параллельный дубль дождётся
	// коммита и увидит waiting_payment, второго create в шлюз не будет. Отмена по
	// таймауту и MarkReady на этот заказ ждут тот же замок. Время удержания
	// ограничено таймаутом HTTP-клиента шлюза (PAYMENT_TIMEOUT); другие заказы не ждут.
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		o, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status == constants.StatusWaitingPayment && o.PaymentID.Valid {
			created, replayed = o, true
			return nil
		}
		if !CanTransition(o.Status, constants.StatusWaitingPayment) {
			return apperrors.NewTransitionError(o.ID, o.Status, constants.StatusWaitingPayment)
		}

		payment, err := gateway.CreatePayment(ctx, creds, integrationsDTO.CreatePaymentRequest{
			OrderID:        o.ID,
			Amount:         o.Price,
			Currency:       s.settings.Currency,
			IdempotencyKey: o.IdempotencyKey.String,
			ReturnURL:      s.settings.ReturnURL,
			Description:    fmt.Sprintf("Заказ №%d", o.ID),
		})
		if err != nil {
			return err
		}

		attrs := repositories.PaymentAttrs{
			PaymentID:       payment.ID,
			PaymentStatus:   payment.Status,
			ConfirmationURL: payment.ConfirmationURL,
		}
		if err := s.orderRepo.MarkWaitingPaymentInTx(ctx, tx, o.ID, attrs); err != nil {
			return err
		}

		o.Status = constants.StatusWaitingPayment
		o.PaymentID = null.StringFrom(payment.ID)
		o.PaymentStatus = null.StringFrom(payment.Status)
		o.ConfirmationURL = null.StringFrom(payment.ConfirmationURL)
		created = o
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось создать платёж", zap.Uint64("order_id", orderID), zap.Error(err))
		return nil, err
	}

	result := paymentReplay(created)
	result.Replayed = replayed
	if !replayed {
		s.logger.Info("Платёж создан",
			zap.Uint64("order_id", created.ID),
			zap.String("payment_id", created.PaymentID.String),
		)
	}
	return result, nil
}

// ensureIdempotencyKey коммитит ключ отдельной транзакцией, чтобы он пережил сбой шлюза.
func (s *PaymentService) ensureIdempotencyKey(ctx context.Context, orderID uint64) (*entities.Order, error) {
	var order *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		o, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status == constants.StatusWaitingPayment && o.PaymentID.Valid {
			order = o
			return nil
		}
		if !CanTransition(o.Status, constants.StatusWaitingPayment) {
			return apperrors.NewTransitionError(o.ID, o.Status, constants.StatusWaitingPayment)
		}
		if !o.IdempotencyKey.Valid {
			key := uuid.NewString()
			if err := s.orderRepo.SetIdempotencyKeyInTx(ctx, tx, o.ID, key); err != nil {
				return err
			}
			o.IdempotencyKey = null.StringFrom(key)
		}
		order = o
		return nil
	})
	return order, err
}

func paymentReplay(o *entities.Order) *dto.PaymentCreatedDTO {
	return &dto.PaymentCreatedDTO{
		OrderID:         o.ID,
		PaymentID:       o.PaymentID.String,
		PaymentStatus:   o.PaymentStatus.String,
		ConfirmationURL: o.ConfirmationURL.String,
		IdempotencyKey:  o.IdempotencyKey.String,
		Amount:          o.Price,
		Replayed:        true,
	}
}

// resolveGateway падает до любого сетевого вызова, если реквизиты не разрешились.
func (s *PaymentService) resolveGateway(ctx context.Context, shopID uint64) (integrations.PaymentGateway, integrationsDTO.Credentials, error) {
	creds, err := s.vault.Resolve(ctx, shopID)
	if err != nil {
		return nil, integrationsDTO.Credentials{}, err
	}
	gateway, err := s.gateways.GetActive()
	if err != nil {
		s.logger.Error("Платёжный шлюз не настроен", zap.Error(err))
		return nil, integrationsDTO.Credentials{}, fmt.Errorf("%w: %v", apperrors.ErrConfiguration, err)
	}
	return gateway, creds, nil
}

func (s *PaymentService) CheckPaymentStatus(ctx context.Context, orderID uint64) (*dto.PaymentStatusDTO, error) {
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != constants.StatusWaitingPayment || !order.PaymentID.Valid {
		return &dto.PaymentStatusDTO{OrderID: order.ID, Status: outcomeForStatus(order.Status), OrderStatus: order.Status}, nil
	}

	gateway, creds, err := s.resolveGateway(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}

	payment, err := gateway.FindPayment(ctx, creds, order.PaymentID.String)
	if err != nil {
		s.logger.Warn("Ошибка запроса статуса платежа",
			zap.Uint64("order_id", order.ID),
			zap.String("payment_id", order.PaymentID.String),
			zap.Error(err),
		)
		if errors.Is(err, apperrors.ErrServiceUnavailable) || errors.Is(err, apperrors.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrServiceUnavailable, err)
	}

	switch payment.Status {
	case constants.GatewaySucceeded:
		return s.applyPaid(ctx, order, payment)
	case constants.GatewayCanceled:
		return s.applyGatewayCanceled(ctx, order, payment)
	default:
		return s.recordPending(ctx, order, payment)
	}
}

func (s *PaymentService) applyPaid(ctx context.Context, order *entities.Order, payment *integrationsDTO.Payment) (*dto.PaymentStatusDTO, error) {
	amount := order.Price
	if payment.Amount.Valid {
		amount = payment.Amount.Decimal
	}
	paidAt := s.now()

	res, err := s.machine.Apply(ctx, Transition{
		OrderID: order.ID,
		To:      constants.StatusPaid,
		Apply: func(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
			if err := s.orderRepo.MarkPaidInTx(ctx, tx, o.ID, repositories.PaidAttrs{
				PaymentStatus: payment.Status,
				Amount:        amount,
				PaidAt:        paidAt,
			}); err != nil {
				return err
			}
			o.PaymentStatus = null.StringFrom(payment.Status)
			o.PaymentAmount = decimal.NewNullDecimal(amount)
			o.PaidAt = null.TimeFrom(paidAt)
			return nil
		},
	})
	if err != nil {
		return s.resolveLostRace(ctx, order.ID, constants.StatusPaid, err)
	}

	s.logger.Info("Заказ оплачен",
		zap.Uint64("order_id", res.Order.ID),
		zap.String("amount", amount.StringFixed(2)),
	)
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{Order: res.Order, From: res.From, To: res.Order.Status})
	return &dto.PaymentStatusDTO{OrderID: res.Order.ID, Status: dto.OutcomePaid, OrderStatus: res.Order.Status}, nil
}

func (s *PaymentService) applyGatewayCanceled(ctx context.Context, order *entities.Order, payment *integrationsDTO.Payment) (*dto.PaymentStatusDTO, error) {
	res, err := s.machine.Apply(ctx, Transition{
		OrderID: order.ID,
		To:      constants.StatusCanceled,
		Apply: func(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
			if err := s.orderRepo.UpdatePaymentStatusInTx(ctx, tx, o.ID, payment.Status); err != nil {
				return err
			}
			o.PaymentStatus = null.StringFrom(payment.Status)
			return s.orderRepo.UpdateStatusInTx(ctx, tx, o.ID, constants.StatusCanceled)
		},
	})
	if err != nil {
		return s.resolveLostRace(ctx, order.ID, constants.StatusCanceled, err)
	}

	s.logger.Info("Платёж отменён шлюзом", zap.Uint64("order_id", res.Order.ID))
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{Order: res.Order, From: res.From, To: res.Order.Status})
	return &dto.PaymentStatusDTO{OrderID: res.Order.ID, Status: dto.OutcomeCanceled, OrderStatus: res.Order.Status}, nil
}

// recordPending обновляет только payment_status, статус заказа не меняется.
func (s *PaymentService) recordPending(ctx context.Context, order *entities.Order, payment *integrationsDTO.Payment) (*dto.PaymentStatusDTO, error) {
	current := order.Status
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		o, err := s.orderRepo.FindOrderForUpdateInTx(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		current = o.Status
		if o.Status != constants.StatusWaitingPayment || o.PaymentStatus.String == payment.Status {
			return nil
		}
		return s.orderRepo.UpdatePaymentStatusInTx(ctx, tx, o.ID, payment.Status)
	})
	if err != nil {
		return nil, err
	}
	return &dto.PaymentStatusDTO{OrderID: order.ID, Status: outcomeForStatus(current), OrderStatus: current}, nil
}

// resolveLostRace: пока шёл запрос в шлюз, заказ успел сменить статус.
// Возвращаем то, что сейчас записано в БД.
func (s *PaymentService) resolveLostRace(ctx context.Context, orderID uint64, wanted string, cause error) (*dto.PaymentStatusDTO, error) {
	if !errors.Is(cause, apperrors.ErrInvalidTransition) {
		return nil, cause
	}
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if wanted == constants.StatusPaid && order.Status == constants.StatusCanceled {
		s.logger.Warn("Шлюз подтвердил оплату уже отменённого заказа",
			zap.Uint64("order_id", order.ID),
			zap.String("payment_id", order.PaymentID.String),
		)
	}
	return &dto.PaymentStatusDTO{OrderID: order.ID, Status: outcomeForStatus(order.Status), OrderStatus: order.Status}, nil
}

// CancelOnTimeout отменяет заказ по истечении окна опроса. Если заказ уже ушёл
// из waiting_payment, результат ignored, а не ошибка.
func (s *PaymentService) CancelOnTimeout(ctx context.Context, orderID uint64) (*dto.TimeoutResultDTO, error) {
	res, err := s.machine.Apply(ctx, Transition{
		OrderID: orderID,
		To:      constants.StatusCanceled,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			s.logger.Debug("Отмена по таймауту проигнорирована", zap.Uint64("order_id", orderID), zap.Error(err))
			return &dto.TimeoutResultDTO{OrderID: orderID, Status: dto.OutcomeIgnored}, nil
		}
		return nil, err
	}

	s.logger.Info("Заказ отменён по таймауту оплаты", zap.Uint64("order_id", orderID))
	s.publisher.Publish(ctx, events.OrderStatusChangedEvent{Order: res.Order, From: res.From, To: res.Order.Status})
	return &dto.TimeoutResultDTO{OrderID: orderID, Status: dto.OutcomeCanceled}, nil
}

// outcomeForStatus сводит статус заказа к тому, что видит чат-клиент.
func outcomeForStatus(status string) string {
	switch status {
	case constants.StatusPaid, constants.StatusReady, constants.StatusCompleted:
		return dto.OutcomePaid
	case constants.StatusCanceled:
		return dto.OutcomeCanceled
	default:
		return dto.OutcomePending
	}
}
