// Command merchant runs the reference ACP seller backend: the checkout
// session API on one listener and the mock shared-payment token service on
// another, both backed by process-lifetime state.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	checkout "github.com/sumup/agentic-checkout"
	"github.com/sumup/agentic-checkout/catalog"
	"github.com/sumup/agentic-checkout/engine"
	"github.com/sumup/agentic-checkout/spt"
)

type appConfig struct {
	Env           string
	LogLevel      string
	Addr          string
	TokenAddr     string
	Currency      string
	PermalinkBase string
	APIKey        string
	WebhookURL    string
	WebhookSecret string
}

func loadConfig() appConfig {
	return appConfig{
		Env:           getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Addr:          getEnv("ADDR", ":8080"),
		TokenAddr:     getEnv("TOKEN_ADDR", ":8001"),
		Currency:      getEnv("CURRENCY", "usd"),
		PermalinkBase: getEnv("ORDER_PERMALINK_BASE", "https://merchant.example/orders"),
		APIKey:        os.Getenv("API_KEY"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(cfg appConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		"service", "merchant",
		"env", cfg.Env,
	)
	slog.SetDefault(logger)
	return logger
}

func demoCatalog() *catalog.Catalog {
	return catalog.New(
		checkout.Product{ID: "latte", Name: "Oat Milk Latte", Price: 650, Description: "Double shot, oat milk.", Stock: 40, Image: "https://merchant.example/img/latte.png"},
		checkout.Product{ID: "beans", Name: "Espresso Beans (1kg)", Price: 2400, Description: "Single-origin, medium roast.", Stock: 12, Image: "https://merchant.example/img/beans.png"},
		checkout.Product{ID: "mug", Name: "Stoneware Mug", Price: 1500, Description: "350ml, dishwasher safe.", Stock: 25, Image: "https://merchant.example/img/mug.png"},
		checkout.Product{ID: "gift-card", Name: "Gift Card", Price: 1000, Description: "Redeemable online.", Stock: 1000, Image: "https://merchant.example/img/gift-card.png", Digital: true},
	)
}

// simulatedProcessor approves every charge except payment methods carrying a
// "_declined" marker, which is how demo flows exercise the decline path.
func simulatedProcessor(logger *slog.Logger) engine.Processor {
	return engine.ProcessorFunc(func(ctx context.Context, paymentMethod string, amount int, currency string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.Contains(paymentMethod, "_declined") {
			logger.Warn("charge declined", "amount", amount, "currency", currency)
			return &engine.Decline{Reason: "card_declined"}
		}
		logger.Info("charge captured", "amount", amount, "currency", currency)
		return nil
	})
}

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	products := demoCatalog()
	tokens := spt.NewMemoryExchange()
	sessions := engine.New(engine.Config{
		Catalog:            products,
		Tokens:             tokens,
		Processor:          simulatedProcessor(logger),
		Currency:           cfg.Currency,
		OrderPermalinkBase: cfg.PermalinkBase,
	})

	var opts []checkout.Option
	if cfg.APIKey != "" {
		opts = append(opts, checkout.WithAuthenticator(checkout.StaticKeyAuthenticator{Keys: []string{cfg.APIKey}}))
	}
	if cfg.WebhookURL != "" {
		opts = append(opts, checkout.WithWebhookOptions(cfg.WebhookURL, "Merchant-Signature", []byte(cfg.WebhookSecret), nil))
	}

	checkoutHandler := checkout.NewCheckoutHandler(sessions, opts...)
	sessionMux := http.NewServeMux()
	sessionMux.Handle("/checkout_sessions", checkoutHandler)
	sessionMux.Handle("/checkout_sessions/", checkoutHandler)
	sessionMux.Handle("/products", checkout.NewProductsHandler(products))
	sessionMux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		checkout.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "merchant"})
	})

	sessionSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors(requestLog(logger, sessionMux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	tokenSrv := &http.Server{
		Addr:              cfg.TokenAddr,
		Handler:           requestLog(logger, spt.NewHandler(tokens)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("checkout API listening", "addr", cfg.Addr)
		if err := sessionSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Info("token service listening", "addr", cfg.TokenAddr)
		if err := tokenSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = sessionSrv.Shutdown(shutdownCtx)
		_ = tokenSrv.Shutdown(shutdownCtx)
		return nil
	})
	if err := group.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down cleanly")
}

// requestLog adds basic request logs.
func requestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Truncate(time.Millisecond).String(),
		)
	})
}

// cors allows the browser-based testbed to call the server directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Accept,Authorization,API-Version,Idempotency-Key,Request-Id,Signature,Timestamp")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code before forwarding to the real writer.
func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
