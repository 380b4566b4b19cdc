package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vitos/crypto_order_panel/internal/infrastructure/backend"
	"go.uber.org/zap"
)

// Probes the trading backend's endpoints so connectivity and signing
// can be verified before starting the panel.
func main() {
	restURL := flag.String("rest", "http://localhost:9000", "backend REST endpoint")
	symbol := flag.String("symbol", "BTCUSDT", "symbol for price lookup")
	flag.Parse()

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := backend.NewClient(
		os.Getenv("PANEL_API_KEY"),
		os.Getenv("PANEL_API_SECRET"),
		*restURL,
		"",
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("=== Backend check ===")

	price, err := client.GetTickerPrice(ctx, *symbol)
	if err != nil {
		fmt.Printf("Ticker price:  FAIL (%v)\n", err)
	} else {
		fmt.Printf("Ticker price:  OK (%s = %f)\n", *symbol, price)
	}

	gainers, err := client.GetTopGainers(ctx, 5)
	if err != nil {
		fmt.Printf("Top gainers:   FAIL (%v)\n", err)
	} else {
		fmt.Printf("Top gainers:   OK (%d rows)\n", len(gainers))
	}

	account, err := client.GetAccount(ctx)
	if err != nil {
		fmt.Printf("Account:       FAIL (%v)\n", err)
	} else {
		fmt.Printf("Account:       OK (%.2f %s available)\n", account.Available, account.Currency)
	}

	positions, err := client.GetPositions(ctx)
	if err != nil {
		fmt.Printf("Positions:     FAIL (%v)\n", err)
	} else {
		fmt.Printf("Positions:     OK (%d open)\n", len(positions))
	}

	status, err := client.GetBotStatus(ctx)
	if err != nil {
		fmt.Printf("Bot status:    FAIL (%v)\n", err)
	} else {
		fmt.Printf("Bot status:    OK (running=%v strategy=%s)\n", status.Running, status.Strategy)
	}
}
