package repositories

import (
	"context"
	"errors"
	"fmt"

	"send-to-print/internal/entities"
	apperrors "send-to-print/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShopRepositoryInterface interface {
	FindShop(ctx context.Context, id uint64) (*entities.Shop, error)
	GetShops(ctx context.Context, activeOnly bool) ([]entities.Shop, error)
	FindFranchise(ctx context.Context, id uint64) (*entities.Franchise, error)
	CreateFranchise(ctx context.Context, f *entities.Franchise) (uint64, error)
	CreateShop(ctx context.Context, s *entities.Shop) (uint64, error)
}

// ShopRepository читает справочные данные точек и франшиз.
type ShopRepository struct {
	storage *pgxpool.Pool
}

func NewShopRepository(storage *pgxpool.Pool) ShopRepositoryInterface {
	return &ShopRepository{storage: storage}
}

func (r *ShopRepository) FindShop(ctx context.Context, id uint64) (*entities.Shop, error) {
	query := `
		SELECT id, name, address, work_hours, price_bw, price_cl, credential_hash, franchise_id, is_active
		FROM shops WHERE id = $1`

	var s entities.Shop
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Address, &s.WorkHours, &s.PriceBW, &s.PriceColor,
		&s.CredentialHash, &s.FranchiseID, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения точки %d: %w", id, err)
	}
	return &s, nil
}

// GetShops возвращает каталог точек, упорядоченный по id.
func (r *ShopRepository) GetShops(ctx context.Context, activeOnly bool) ([]entities.Shop, error) {
	builder := sq.Select("id, name, address, work_hours, price_bw, price_cl, credential_hash, franchise_id, is_active").
		From("shops").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса списка точек: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка точек: %w", err)
	}
	defer rows.Close()

	shops := make([]entities.Shop, 0)
	for rows.Next() {
		var s entities.Shop
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Address, &s.WorkHours, &s.PriceBW, &s.PriceColor,
			&s.CredentialHash, &s.FranchiseID, &s.IsActive,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования точки: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) FindFranchise(ctx context.Context, id uint64) (*entities.Franchise, error) {
	query := `SELECT id, name, gateway_account_id, encrypted_secret, is_active FROM franchises WHERE id = $1`

	var f entities.Franchise
	err := r.storage.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.GatewayAccountID, &f.EncryptedSecret, &f.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения франшизы %d: %w", id, err)
	}
	return &f, nil
}

func (r *ShopRepository) CreateFranchise(ctx context.Context, f *entities.Franchise) (uint64, error) {
	query := `
		INSERT INTO franchises (name, gateway_account_id, encrypted_secret, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.storage.QueryRow(ctx, query, f.Name, f.GatewayAccountID, f.EncryptedSecret, f.IsActive).Scan(&f.ID); err != nil {
		return 0, fmt.Errorf("ошибка создания франшизы: %w", mapWriteError(err))
	}
	return f.ID, nil
}

func (r *ShopRepository) CreateShop(ctx context.Context, s *entities.Shop) (uint64, error) {
	query := `
		INSERT INTO shops (name, address, work_hours, price_bw, price_cl, credential_hash, franchise_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.storage.QueryRow(ctx, query,
		s.Name, s.Address, s.WorkHours, s.PriceBW, s.PriceColor, s.CredentialHash, s.FranchiseID, s.IsActive,
	).Scan(&s.ID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания точки: %w", mapWriteError(err))
	}
	return s.ID, nil
}
