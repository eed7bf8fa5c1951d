// Файл: internal/services/auth.go
package services

import (
	"context"
	"errors"
	"fmt"

	"send-to-print/internal/dto"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/config"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/service"
	"send-to-print/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
}

// AuthService выдаёт токен оператору точки по паролю точки.
type AuthService struct {
	shopRepo   repositories.ShopRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
	cfg        config.AuthConfig
}

func NewAuthService(
	shopRepo repositories.ShopRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		shopRepo:   shopRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		logger:     logger.Named("auth_service"),
		cfg:        cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	shop, err := s.shopRepo.FindShop(ctx, payload.ShopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !shop.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.checkLockout(ctx, shop.ID); err != nil {
		return nil, err
	}
	if err := utils.ComparePasswords(shop.CredentialHash, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, shop.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, shop.ID)

	token, expiresAt, err := s.jwtService.GenerateToken(shop.ID)
	if err != nil {
		return nil, fmt.Errorf("не удалось выпустить токен: %w", err)
	}

	s.logger.Info("Оператор вошёл", zap.Uint64("shop_id", shop.ID))
	return &dto.AuthResponseDTO{
		AccessToken: token,
		ShopID:      shop.ID,
		ShopName:    shop.Name,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, shopID uint64) error {
	if s.cacheRepo == nil {
		return nil
	}
	lockoutKey := fmt.Sprintf("lockout:shop:%d", shopID)

	// Пока ключ существует, вход заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, shopID uint64) {
	if s.cacheRepo == nil {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:shop:%d", shopID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:shop:%d", shopID)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Вход для точки временно заблокирован", zap.Uint64("shop_id", shopID))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, shopID uint64) {
	if s.cacheRepo == nil {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:shop:%d", shopID)
	lockoutKey := fmt.Sprintf("lockout:shop:%d", shopID)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
