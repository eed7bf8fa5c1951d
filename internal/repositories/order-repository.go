package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	apperrors "send-to-print/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, shop_id, price, note, confirmation_code, color, status, file_extension, file_path,
	user_id, pages, payment_id, payment_status, confirmation_url, paid_at, payment_amount, idempotency_key,
	created_at, updated_at`

const uniqueViolation = "23505"

type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, order *entities.Order) (uint64, error)
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]entities.Order, error)

	FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error)
	SetIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, id uint64, key string) error
	MarkWaitingPaymentInTx(ctx context.Context, tx pgx.Tx, id uint64, payment PaymentAttrs) error
	MarkPaidInTx(ctx context.Context, tx pgx.Tx, id uint64, paid PaidAttrs) error
	UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, paymentStatus string) error
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string) error
}

// PaymentAttrs записываются на ребре created -> waiting_payment.
type PaymentAttrs struct {
	PaymentID       string
	PaymentStatus   string
	ConfirmationURL string
}

// PaidAttrs записываются на ребре waiting_payment -> paid.
type PaidAttrs struct {
	PaymentStatus string
	Amount        decimal.Decimal
	PaidAt        time.Time
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{
		storage: storage,
	}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(
		&o.ID, &o.ShopID, &o.Price, &o.Note, &o.ConfirmationCode, &o.Color, &o.Status,
		&o.FileExtension, &o.FilePath, &o.UserID, &o.Pages,
		&o.PaymentID, &o.PaymentStatus, &o.ConfirmationURL, &o.PaidAt, &o.PaymentAmount, &o.IdempotencyKey,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entities.Order) (uint64, error) {
	query := `
		INSERT INTO orders (shop_id, price, note, confirmation_code, color, status, file_extension, file_path, user_id, pages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.storage.QueryRow(ctx, query,
		order.ShopID, order.Price, order.Note, order.ConfirmationCode, order.Color, order.Status,
		order.FileExtension, order.FilePath, order.UserID, order.Pages,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания заказа: %w", mapWriteError(err))
	}
	return order.ID, nil
}

// FindOrder читает заказ без блокировки.
func (r *OrderRepository) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("ошибка получения заказа %d: %w", id, err)
	}
	return order, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]entities.Order, error) {
	builder := sq.Select(orderColumns).
		From("orders").
		Where(sq.Eq{"shop_id": filter.ShopID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса списка заказов: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заказа в списке: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// FindOrderForUpdateInTx берёт эксклюзивную блокировку строки до конца транзакции.
func (r *OrderRepository) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("не удалось заблокировать заказ %d: %w", id, err)
	}
	return order, nil
}

func (r *OrderRepository) SetIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, id uint64, key string) error {
	query := `UPDATE orders SET idempotency_key = $2, updated_at = NOW() WHERE id = $1 AND idempotency_key IS NULL`
	tag, err := tx.Exec(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("ошибка записи ключа идемпотентности: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ключ идемпотентности заказа %d уже задан", apperrors.ErrConflict, id)
	}
	return nil
}

func (r *OrderRepository) MarkWaitingPaymentInTx(ctx context.Context, tx pgx.Tx, id uint64, payment PaymentAttrs) error {
	query := `
		UPDATE orders
		SET status = 'waiting_payment', payment_id = $2, payment_status = $3, confirmation_url = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'created' AND payment_id IS NULL`
	tag, err := tx.Exec(ctx, query, id, payment.PaymentID, payment.PaymentStatus, payment.ConfirmationURL)
	if err != nil {
		return fmt.Errorf("ошибка перевода заказа в ожидание оплаты: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

func (r *OrderRepository) MarkPaidInTx(ctx context.Context, tx pgx.Tx, id uint64, paid PaidAttrs) error {
	query := `
		UPDATE orders
		SET status = 'paid', payment_status = $2, payment_amount = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'waiting_payment'`
	tag, err := tx.Exec(ctx, query, id, paid.PaymentStatus, paid.Amount, paid.PaidAt)
	if err != nil {
		return fmt.Errorf("ошибка отметки оплаты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

func (r *OrderRepository) UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, paymentStatus string) error {
	query := `UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, id, paymentStatus); err != nil {
		return fmt.Errorf("ошибка обновления статуса платежа: %w", err)
	}
	return nil
}

// UpdateStatusInTx пишет статус без проверки; проверку делает вызывающий под блокировкой.
func (r *OrderRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса заказа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
