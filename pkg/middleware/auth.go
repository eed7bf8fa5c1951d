package middleware

import (
	"crypto/subtle"
	"strings"

	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/service"
	"send-to-print/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	botAPIKey  string
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, botAPIKey string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		botAPIKey:  botAPIKey,
		logger:     logger,
	}
}

// Auth проверяет bearer-токен оператора и кладёт ShopID в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		newCtx := utils.WithShopID(c.Request().Context(), claims.ShopID)
		c.SetRequest(c.Request().WithContext(newCtx))

		m.logger.Debug("AuthMiddleware: Точка аутентифицирована", zap.Uint64("shopID", claims.ShopID))
		return next(c)
	}
}

// BotAuth пропускает только чат-клиента с общим ключом в заголовке X-Bot-Key.
func (m *AuthMiddleware) BotAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(constants.BotKeyHeader)
		if m.botAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.botAPIKey)) != 1 {
			m.logger.Warn("AuthMiddleware: Неверный ключ бота", zap.String("ip", c.RealIP()))
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}
		return next(c)
	}
}
