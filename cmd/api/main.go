package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/handler"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/store"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	envMissing := godotenv.Load() != nil

	cfg, err := config.Load()
	if err != nil {
		log := logger.WithComponent("main")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel)
	log := logger.WithComponent("main")
	if envMissing {
		log.Debug().Msg(".env file not found")
	}

	// 2. Setup Store
	fileStore, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open data dir")
	}

	// 3. Setup WebSocket Hub (advisory change notification)
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	ledgerRepo := repository.NewLedgerRepo()
	journalRepo := repository.NewJournalRepo()

	ledgerService := service.NewLedgerService(fileStore, ledgerRepo, wsHub)
	invoiceService := service.NewInvoiceService(fileStore, ledgerRepo, journalRepo, wsHub, cfg.DefaultMerchantName)
	journalService := service.NewJournalService(fileStore, journalRepo, wsHub)

	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, cfg.VATRate)
	salesHandler := handler.NewSalesHandler(journalService)
	monitorHandler := handler.NewMonitorHandler(ledgerService, journalService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Ledger v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 6. Routes
	api := app.Group("/api/v1")

	// Stock Ledger
	api.Get("/items", ledgerHandler.GetItems)
	api.Post("/items", ledgerHandler.UpsertItem)
	api.Delete("/items/:id", ledgerHandler.RemoveItem)

	// Invoice Transaction Engine
	api.Post("/invoices", invoiceHandler.CommitInvoice)

	// Sales Journal
	api.Get("/sales", salesHandler.GetSales)
	api.Get("/sales/stats", salesHandler.GetStats)
	api.Get("/sales/export", salesHandler.ExportXLSX)
	api.Get("/sales/:id/receipt", salesHandler.GetReceipt)
	api.Get("/sales/:id/qr", salesHandler.GetReceiptQR)
	api.Put("/sales/:id/deleted", salesHandler.ToggleDeleted)
	api.Delete("/sales", salesHandler.ResetAll)

	// Developer monitor
	api.Get("/monitor", monitorHandler.GetMonitor)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
