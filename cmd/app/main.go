package main

import (
	"log"
	"os"

	"github.com/YoshikiFujii/FLcasher/internal/broadcast"
	"github.com/YoshikiFujii/FLcasher/internal/db"
	"github.com/YoshikiFujii/FLcasher/internal/metrics"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
	"github.com/YoshikiFujii/FLcasher/internal/services"
	"github.com/YoshikiFujii/FLcasher/internal/telemetry"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func main() {
	telemetry.InitLogger()

	// ======================
	// INFRA
	// ======================
	dbPath := os.Getenv("POS_DB")
	if dbPath == "" {
		dbPath = "flcasher.db"
	}
	imageDir := os.Getenv("POS_IMAGE_DIR")
	if imageDir == "" {
		imageDir = "images"
	}

	conn, err := db.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	reg := metrics.NewRegistry()
	hub := broadcast.NewHub()
	hub.OnDrop = reg.BroadcastDropped.Inc

	// ======================
	// REPOSITORIES
	// ======================
	productRepo := repository.NewProductRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)

	// ======================
	// SERVICES
	// ======================
	productSvc := services.NewProductService(productRepo)
	orderSvc := services.NewOrderService(orderRepo, hub, reg)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerProductRoutes(api, productSvc, imageDir)
	registerOrderRoutes(api, orderSvc)
	registerKitchenRoutes(api, orderSvc, hub)
	registerSalesRoutes(api, orderSvc)
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	// ======================
	// SERVER
	// ======================
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
