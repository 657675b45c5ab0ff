package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/linemk/shop-orders/internal/app"
	"github.com/linemk/shop-orders/internal/config"
	"github.com/linemk/shop-orders/internal/lib/logger"
	"github.com/linemk/shop-orders/internal/service"
	"github.com/linemk/shop-orders/internal/storage"
)

// promote выдаёт зарегистрированному пользователю роль operator или admin:
//
//	go run ./cmd/promote -config ./config/local.yaml -email ops@example.com -role operator
func main() {
	var configPath, email, role string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.StringVar(&email, "email", "", "user email")
	flag.StringVar(&role, "role", "admin", "role to grant: user, operator or admin")
	flag.Parse()

	_ = godotenv.Load()

	if configPath == "" || email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoadByPath(configPath)
	log := logger.SetupLogger(cfg.Env)

	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		os.Exit(1)
	}
	defer application.DB.Close()

	authService := service.NewAuthService(log, storage.NewUserRepository(application.DB), cfg.JWT.TokenTTLDuration(), cfg.JWT.Secret)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := authService.SetRole(ctx, email, role); err != nil {
		log.Error("failed to grant role", slog.Any("error", err))
		os.Exit(1)
	}
}
