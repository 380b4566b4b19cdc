package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vitos/crypto_order_panel/internal/infrastructure/backend"
	"github.com/vitos/crypto_order_panel/internal/infrastructure/logger"
	"github.com/vitos/crypto_order_panel/internal/infrastructure/storage"
	"github.com/vitos/crypto_order_panel/internal/usecase"
	"github.com/vitos/crypto_order_panel/internal/web"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend struct {
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
		APIKey       string `yaml:"api_key"`
		APISecret    string `yaml:"api_secret"`
	} `yaml:"backend"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Display struct {
		PricePrecision int `yaml:"price_precision"`
	} `yaml:"display"`
	Watchlist []string `yaml:"watchlist"`
	Logging   struct {
		Level    string `yaml:"level"`
		AuditLog string `yaml:"audit_log"`
	} `yaml:"logging"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	// Credentials may come from the environment (.env) instead of the
	// config file, so the yaml can be committed without secrets.
	if v := os.Getenv("PANEL_API_KEY"); v != "" {
		cfg.Backend.APIKey = v
	}
	if v := os.Getenv("PANEL_API_SECRET"); v != "" {
		cfg.Backend.APISecret = v
	}

	return &cfg, nil
}

func main() {
	// Load .env file, but don't fail if it doesn't exist.
	_ = godotenv.Load()

	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		dbPath = "panel.db"
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	client := backend.NewClient(
		cfg.Backend.APIKey,
		cfg.Backend.APISecret,
		cfg.Backend.RESTEndpoint,
		cfg.Backend.WSEndpoint,
		log,
	)

	calc := usecase.NewPriceCalculator()
	market := usecase.NewMarketService(client)

	// Order submissions go to a separate audit log in addition to the
	// main logger.
	auditPath := cfg.Logging.AuditLog
	if auditPath == "" {
		auditPath = "orders.log"
	}
	auditLogger, err := logger.NewFileLogger(auditPath, "info")
	if err != nil {
		log.Error("Failed to init audit logger, using default", zap.Error(err))
		auditLogger = log
	}

	orders := usecase.NewOrderService(calc, client, store, auditLogger)
	backtests := usecase.NewBacktestService(calc, client, store, market, log)

	if len(cfg.Watchlist) > 0 {
		if err := market.Track(cfg.Watchlist); err != nil {
			log.Error("Failed to subscribe watchlist", zap.Strings("symbols", cfg.Watchlist), zap.Error(err))
		}
	}

	if err := web.InitTemplates("internal/web/templates"); err != nil {
		log.Fatal("Failed to initialize templates", zap.Error(err))
	}

	port := cfg.Server.Port
	if port == 0 {
		port = 8080 // Default
	}
	precision := cfg.Display.PricePrecision
	if precision == 0 {
		precision = 2
	}

	server := web.NewServer(port, orders, backtests, market, client, store, precision, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	server.Shutdown(context.Background())
}
