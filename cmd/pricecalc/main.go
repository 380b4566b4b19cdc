package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vitos/crypto_order_panel/internal/domain"
	"github.com/vitos/crypto_order_panel/internal/usecase"
)

// Quick level check from the shell, same math as the panel:
//
//	pricecalc -price 10000 -entry 1 -stop 1.9 -target 4 -type short
func main() {
	price := flag.Float64("price", 0, "reference price")
	entry := flag.Float64("entry", 0, "entry offset percent")
	stop := flag.Float64("stop", 0, "stop-loss percent")
	target := flag.Float64("target", 0, "take-profit percent")
	orderType := flag.String("type", "short", "order type: long or short")
	precision := flag.Int("precision", 2, "display precision")
	flag.Parse()

	direction, ok := domain.ParseDirection(*orderType)
	if !ok {
		fmt.Printf("Unknown order type %q (want long or short)\n", *orderType)
		os.Exit(1)
	}

	calc := usecase.NewPriceCalculator()
	levels, err := calc.ComputeLevels(domain.LevelRequest{
		ReferencePrice: *price,
		EntryOffsetPct: *entry,
		StopLossPct:    *stop,
		TakeProfitPct:  *target,
		Direction:      direction,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	p := *precision
	fmt.Printf("Reference:   %.*f\n", p, *price)
	fmt.Printf("Entry:       %.*f (%+.2f%%)\n", p, usecase.RoundPrice(levels.EntryPrice, p), levels.EntryDeltaPct)
	fmt.Printf("Stop loss:   %.*f\n", p, usecase.RoundPrice(levels.StopLossPrice, p))
	fmt.Printf("Take profit: %.*f\n", p, usecase.RoundPrice(levels.TakeProfitPrice, p))
	fmt.Printf("Risk/unit:   %.*f\n", p, usecase.RoundPrice(levels.RiskPerUnit, p))
	fmt.Printf("Reward/unit: %.*f\n", p, usecase.RoundPrice(levels.RewardPerUnit, p))
}
