package main

import (
	"context"
	"errors"

	"warimas-pos/internal/api"
	"warimas-pos/internal/cart"
	"warimas-pos/internal/config"
	"warimas-pos/internal/logger"
	"warimas-pos/internal/metrics"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app wires the request pipeline, the session manager, and the basket
// for one command invocation.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Manager
	metrics *metrics.Pipeline
}

func newApp() (*app, error) {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)

	m := metrics.NewPipeline()
	client, err := api.NewClient(api.Config{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.RequestTimeout,
		EnableBreaker: cfg.BreakerEnabled,
		Metrics:       m,
	})
	if err != nil {
		return nil, err
	}

	mgr := session.NewManager(client)
	mgr.SetNavigate(func(path string) {
		logger.L().Debug("navigate", zap.String("path", path))
	})

	return &app{cfg: cfg, client: client, session: mgr, metrics: m}, nil
}

// signIn authenticates with the credentials from the global flags.
func (a *app) signIn(ctx context.Context) (*session.Claims, error) {
	if flagUsername == "" || flagPassword == "" {
		return nil, errors.New("credentials missing, pass --username/--password or set POS_USERNAME and POS_PASSWORD")
	}
	return a.session.Login(ctx, flagUsername, flagPassword)
}

func (a *app) store() cart.Store {
	if a.cfg.CartStore == config.CartStoreRedis {
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		return cart.NewRedisStore(rdb, a.cfg.CartSlot)
	}
	return cart.NewFileStore(a.cfg.CartStorePath)
}

// basket restores the persisted lines and reconciles them against the
// live catalog, so a price that changed overnight never reaches a receipt.
func (a *app) basket(ctx context.Context) (*cart.Engine, error) {
	engine := cart.NewEngine(a.store())
	if err := engine.Restore(ctx); err != nil {
		return nil, err
	}

	catalog, err := product.NewClient(a.client).ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := engine.SetCatalog(ctx, catalog); err != nil {
		return nil, err
	}

	return engine, nil
}

// signedInApp builds the app and logs in, the preamble of almost every command.
func signedInApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	if _, err := a.signIn(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}
