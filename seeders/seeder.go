package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"send-to-print/internal/repositories"
	"send-to-print/pkg/config"
	"send-to-print/pkg/secretbox"
)

// SeedDevShop создаёт франшизу с зашифрованным секретом шлюза и одну точку с паролем оператора.
func SeedDevShop(db *pgxpool.Pool, cfg *config.Config, opts ShopSeedOptions) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания тестовой франшизы и точки...")

	box, err := secretbox.NewFromHex(cfg.Payment.MasterKey)
	if err != nil {
		log.Fatalf("❌ PAYMENT_MASTER_KEY не задан или некорректен: %v", err)
	}

	shopID, err := seedShop(ctx, repositories.NewShopRepository(db), box, opts)
	if err != nil {
		log.Fatalf("❌ Ошибка создания точки: %v", err)
	}

	log.Printf("✅ Точка создана: shop_id=%d", shopID)
}
