package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"send-to-print/pkg/config"
	"send-to-print/pkg/database/postgresql"
	"send-to-print/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runShop := flag.Bool("shop", false, "Создать франшизу и точку для разработки")
	franchiseName := flag.String("franchise-name", "Тестовая франшиза", "Название франшизы")
	shopName := flag.String("shop-name", "Точка печати №1", "Название точки")
	address := flag.String("address", "ул. Ленина, 1", "Адрес выдачи")
	workHours := flag.String("work-hours", "09:00-21:00", "Часы работы")
	priceBW := flag.String("price-bw", "15.00", "Цена ч/б страницы")
	priceColor := flag.String("price-color", "40.00", "Цена цветной страницы")

	flag.Parse()

	if !*runShop {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Секрет шлюза и пароль берутся из SEED_GATEWAY_ACCOUNT_ID, SEED_GATEWAY_SECRET, SEED_SHOP_PASSWORD")
		log.Println("  go run ./seeders/cmd/seed -shop")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	dbPool, err := postgresql.ConnectDB(context.Background(), cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	if err := postgresql.Migrate(context.Background(), dbPool, zap.NewNop()); err != nil {
		log.Fatalf("❌ Не удалось применить миграции: %v", err)
	}

	log.Println("======================================================")
	seeders.SeedDevShop(dbPool, cfg, seeders.ShopSeedOptions{
		FranchiseName:    *franchiseName,
		GatewayAccountID: os.Getenv("SEED_GATEWAY_ACCOUNT_ID"),
		GatewaySecret:    os.Getenv("SEED_GATEWAY_SECRET"),
		ShopName:         *shopName,
		Address:          *address,
		WorkHours:        *workHours,
		PriceBW:          decimal.RequireFromString(*priceBW),
		PriceColor:       decimal.RequireFromString(*priceColor),
		Password:         os.Getenv("SEED_SHOP_PASSWORD"),
	})

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
