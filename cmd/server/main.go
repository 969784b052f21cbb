package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "millbooks/internal/adapters/web"
	"millbooks/internal/ai"
	"millbooks/internal/app"
	"millbooks/internal/core"
	"millbooks/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	ledger := core.NewLedger(pool)
	query := core.NewLedgerQuery(pool)
	accounts := core.NewAccountService(pool)
	procurement := core.NewProcurementService(pool, ledger)
	production := core.NewProductionService(pool)
	sales := core.NewSalesService(pool, ledger)
	stock := core.NewStockService(pool)
	reporting := core.NewReportingService(pool, query)

	var agent *ai.Agent
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, voucher suggestions disabled")
	}

	svc := app.NewAppService(pool, accounts, ledger, query,
		procurement, production, sales, stock, reporting, agent)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
