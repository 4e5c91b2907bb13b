package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront/internal/config"
	"github.com/Sternrassler/storefront/pkg/cart"
	"github.com/Sternrassler/storefront/pkg/client"
	"github.com/Sternrassler/storefront/pkg/gate"
	"github.com/Sternrassler/storefront/pkg/logging"
	"github.com/Sternrassler/storefront/pkg/pagination"
	"github.com/Sternrassler/storefront/pkg/storefront"
	"github.com/Sternrassler/storefront/pkg/toast"
)

// app is one storefront session with its collaborators.
type app struct {
	cfg        *config.Config
	catalog    *client.Client
	redis      *redis.Client
	cart       *cart.Cart
	toasts     *toast.Queue
	storefront *storefront.Storefront
	logger     zerolog.Logger

	stopPersist func()
}

// newApp connects to the catalog and, when configured, Redis. The cart of
// userID is restored from Redis and saved back after every change.
func newApp(ctx context.Context, cfg *config.Config, userID string) (*app, error) {
	logger := logging.NewLogger(logging.ComponentServer)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	clientCfg := client.DefaultConfig(cfg.Catalog.BaseURL, cfg.Catalog.UserAgent)
	clientCfg.Timeout = cfg.Catalog.Timeout
	clientCfg.Redis = redisClient

	catalogClient, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	a := &app{
		cfg:         cfg,
		catalog:     catalogClient,
		redis:       redisClient,
		cart:        cart.New(),
		toasts:      toast.NewQueue(),
		logger:      logger,
		stopPersist: func() {},
	}

	if redisClient != nil {
		repo := cart.NewRedisRepository(redisClient, cfg.Redis.CartTTL)
		state, err := repo.Load(ctx, userID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("restore cart: %w", err)
		}
		a.cart = cart.NewWithState(state)
		a.stopPersist = cart.PersistOnChange(context.Background(), a.cart, repo, userID,
			logging.NewLogger(logging.ComponentCart))
	}

	paging := pagination.DefaultConfig()
	paging.DefaultLimit = cfg.Pagination.PageSize

	a.storefront, err = storefront.New(storefront.Deps{
		Source:     catalogClient,
		Creator:    catalogClient,
		Cart:       a.cart,
		Navigator:  storefront.NavigatorFunc(a.navigate),
		Notifier:   a.toasts,
		Pagination: paging,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// navigate records navigation. The HTTP caller follows the destination
// reported in the action outcome.
func (a *app) navigate(dest gate.Destination) {
	a.logger.Debug().Str("destination", string(dest)).Msg("Navigate")
}

// Close releases the catalog client and Redis.
func (a *app) Close() error {
	a.stopPersist()
	if err := a.catalog.Close(); err != nil {
		return err
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
