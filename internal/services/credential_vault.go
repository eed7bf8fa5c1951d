package services

import (
	"context"
	"errors"
	"fmt"

	integrationsDTO "send-to-print/internal/integrations/dto"
	"send-to-print/internal/repositories"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/secretbox"

	"go.uber.org/zap"
)

type CredentialVaultInterface interface {
	Resolve(ctx context.Context, shopID uint64) (integrationsDTO.Credentials, error)
}

// CredentialVault разрешает shop -> franchise -> расшифрованный секрет.
// Результат не кэшируется: каждый вызов шлюза получает свою копию.
// Мастер-ключ один на процесс, ротация ключа не поддерживается.
type CredentialVault struct {
	shopRepo repositories.ShopRepositoryInterface
	box      *secretbox.Box
	logger   *zap.Logger
}

func NewCredentialVault(shopRepo repositories.ShopRepositoryInterface, box *secretbox.Box, logger *zap.Logger) CredentialVaultInterface {
	return &CredentialVault{
		shopRepo: shopRepo,
		box:      box,
		logger:   logger.Named("credential_vault"),
	}
}

func (v *CredentialVault) Resolve(ctx context.Context, shopID uint64) (integrationsDTO.Credentials, error) {
	if v.box == nil {
		v.logger.Error("Мастер-ключ не загружен")
		return integrationsDTO.Credentials{}, apperrors.ErrConfiguration
	}

	shop, err := v.shopRepo.FindShop(ctx, shopID)
	if err != nil {
		return integrationsDTO.Credentials{}, v.resolutionError("точка не найдена", shopID, 0, err)
	}

	franchise, err := v.shopRepo.FindFranchise(ctx, shop.FranchiseID)
	if err != nil {
		return integrationsDTO.Credentials{}, v.resolutionError("франшиза не найдена", shopID, shop.FranchiseID, err)
	}
	if !franchise.IsActive {
		return integrationsDTO.Credentials{}, v.resolutionError("франшиза отключена", shopID, franchise.ID, nil)
	}
	if franchise.GatewayAccountID == "" || franchise.EncryptedSecret == "" {
		return integrationsDTO.Credentials{}, v.resolutionError("реквизиты франшизы не заполнены", shopID, franchise.ID, nil)
	}

	secret, err := v.box.Open(franchise.EncryptedSecret)
	if err != nil {
		return integrationsDTO.Credentials{}, v.resolutionError("не удалось расшифровать секрет", shopID, franchise.ID, err)
	}

	return integrationsDTO.Credentials{AccountID: franchise.GatewayAccountID, Secret: secret}, nil
}

func (v *CredentialVault) resolutionError(reason string, shopID, franchiseID uint64, cause error) error {
	fields := []zap.Field{
		zap.String("reason", reason),
		zap.Uint64("shop_id", shopID),
		zap.Uint64("franchise_id", franchiseID),
	}
	// ошибки secretbox не содержат секретов, но и их текст не нужен
	if cause != nil && !errors.Is(cause, secretbox.ErrDecryptionFailure) && !errors.Is(cause, secretbox.ErrMalformedCipher) {
		fields = append(fields, zap.Error(cause))
	}
	v.logger.Error("Ошибка разрешения платёжных реквизитов", fields...)
	return fmt.Errorf("%w: %s", apperrors.ErrConfiguration, reason)
}
