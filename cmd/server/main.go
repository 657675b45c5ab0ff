package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/linemk/shop-orders/internal/app"
	"github.com/linemk/shop-orders/internal/app/handlers"
	"github.com/linemk/shop-orders/internal/config"
	"github.com/linemk/shop-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shop-orders/internal/lib/logger"
	"github.com/linemk/shop-orders/internal/lib/logger/handlers/urllog"
	"github.com/linemk/shop-orders/internal/service"
	"github.com/linemk/shop-orders/internal/storage"
)

func main() {
	// .env необязателен: в проде переменные приходят из окружения
	_ = godotenv.Load()

	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(pkgerrors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(log, userRepo, cfg.JWT.TokenTTLDuration(), cfg.JWT.Secret)
	cartService := service.NewCartService(log, cartRepo, productRepo)
	placeOrderService := service.NewPlaceOrderService(log, application.DB, cartRepo, productRepo, orderRepo)
	orderQueryService := service.NewOrderQueryService(log, orderRepo)
	orderStatusService := service.NewOrderStatusService(log, application.DB, orderRepo, cfg.Orders.AllowStatusOverride)

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.RegisterHandler(log, authService))
		r.Post("/auth/login", handlers.LoginHandler(log, authService, cfg.JWT.CookieName, cfg.JWT.TokenTTLDuration()))

		r.Group(func(r chi.Router) {
			r.Use(jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret, cfg.JWT.CookieName))

			r.Get("/cart", handlers.GetCartHandler(log, cartService))
			r.Post("/cart/items", handlers.AddCartItemHandler(log, cartService))
			r.Patch("/cart/items/{productID}", handlers.UpdateCartItemHandler(log, cartService))
			r.Delete("/cart/items/{productID}", handlers.RemoveCartItemHandler(log, cartService))

			r.Post("/orders", handlers.PlaceOrderHandler(log, placeOrderService))
			r.Get("/orders", handlers.ListMyOrdersHandler(log, orderQueryService))
			r.Get("/orders/{id}", handlers.GetOrderHandler(log, orderQueryService))

			// роль проверяется в сервисах
			r.Get("/admin/orders", handlers.ListAllOrdersHandler(log, orderQueryService))
			r.Patch("/admin/orders/{id}/status", handlers.UpdateOrderStatusHandler(log, orderStatusService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "server error")
		}
		return nil
	})
	// graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server gracefully stopped")
}
