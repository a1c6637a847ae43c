package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"time"

	"tokobuku/internal/api"
	"tokobuku/internal/cart"
	"tokobuku/internal/catalog"
	"tokobuku/internal/config"
	"tokobuku/internal/ratelimit"
	"tokobuku/internal/server"
	"tokobuku/internal/session"
	"tokobuku/internal/util"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var tokens session.TokenStore
	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		tokens = session.NewRedisTokenStore(cfg.RedisAddr, cfg.RedisPassword)
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "tokobuku:ratelimit", 10, time.Minute)
	} else {
		tokens = session.NewFileTokenStore(cfg.TokenFile)
		limiter, err = ratelimit.NewFixedWindowLimiter(10, time.Minute)
	}
	if err != nil {
		log.Fatalf("failed to init rate limiter: %v", err)
	}

	client := api.NewClient(cfg.APIBaseURL, tokens)
	sess := session.NewManager(client, tokens)
	crt := cart.New()
	browser := catalog.NewBrowser(client, cfg.PageSize)

	httpServer, err := server.New(server.Config{
		Session:     sess,
		Cart:        crt,
		Catalog:     browser,
		API:         client,
		PageSize:    cfg.PageSize,
		AuthLimiter: limiter,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	// routes answer with a checking placeholder until this resolves
	go sess.ValidateOnStartup(context.Background())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr, "api", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
