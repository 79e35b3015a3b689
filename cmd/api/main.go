package main

import (
	"context"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	//.envは無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}

	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartLineGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//商品が空なら初期データを入れる
	if err := seedProducts(context.Background(), productRepo); err != nil {
		panic(err)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)

	//Server起動
	e := server.New(cfg, productH, cartH, orderH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := e.Start(addr); err != nil {
		e.Logger.Fatal(err)
	}
}

// 空のカタログに初期商品を入れる
func seedProducts(ctx context.Context, products repository.ProductRepository) error {
	n, err := products.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeds := []model.Product{
		{Name: "Coffe Beans", Description: "some coffee", Price: decimal.RequireFromString("11.20")},
		{Name: "Espresso Cup", Description: "cup", Price: decimal.RequireFromString("3.21")},
		{Name: "French Press", Description: "french press", Price: decimal.RequireFromString("231.60")},
	}

	for _, p := range seeds {
		if _, err := products.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
