package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rl1809/cart-sync/internal/adapter/handler"
	"github.com/rl1809/cart-sync/internal/adapter/storage"
	"github.com/rl1809/cart-sync/internal/config"
	"github.com/rl1809/cart-sync/internal/core/service"
	"github.com/rl1809/cart-sync/internal/port"
)

const shutdownTimeout = 5 * time.Second

type storeOptions struct {
	configPath       string
	addr             string
	inventoryBackend string
	cartBackend      string
	verbose          bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &storeOptions{}

	cmd := &cobra.Command{
		Use:          "store",
		Short:        "Serve the inventory and cart record API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Store.Addr = opts.addr
			}
			if flags.Changed("inventory-backend") {
				cfg.Store.InventoryBackend = opts.inventoryBackend
			}
			if flags.Changed("cart-backend") {
				cfg.Store.CartBackend = opts.cartBackend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg.Store, opts.verbose)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.inventoryBackend, "inventory-backend", "", "inventory storage (memory|mysql|postgres)")
	cmd.Flags().StringVar(&opts.cartBackend, "cart-backend", "", "cart storage (memory|mysql|redis)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")

	return cmd
}

// backends holds the opened connections so they can be closed on shutdown.
type backends struct {
	inventory port.InventoryRepository
	cart      port.CartRepository
	closers   []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	memory := storage.NewMemoryAdapter()

	var mysqlAdapter *storage.MySQLAdapter
	openMySQL := func() (*storage.MySQLAdapter, error) {
		if mysqlAdapter != nil {
			return mysqlAdapter, nil
		}
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		b.closers = append(b.closers, func() { db.Close() })

		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		mysqlAdapter = storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		logger.Info("connected to mysql")
		return mysqlAdapter, nil
	}

	switch cfg.InventoryBackend {
	case config.BackendMySQL:
		adapter, err := openMySQL()
		if err != nil {
			return b, err
		}
		b.inventory = adapter
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return b, fmt.Errorf("failed to connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			return b, fmt.Errorf("failed to ping postgres: %w", err)
		}
		adapter := storage.NewPostgresAdapter(pool)
		if err := adapter.EnsureSchema(ctx); err != nil {
			return b, err
		}
		logger.Info("connected to postgres")
		b.inventory = adapter
	default:
		b.inventory = memory
	}

	switch cfg.CartBackend {
	case config.BackendMySQL:
		adapter, err := openMySQL()
		if err != nil {
			return b, err
		}
		b.cart = adapter
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		b.closers = append(b.closers, func() { rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return b, fmt.Errorf("failed to connect redis: %w", err)
		}
		logger.Info("connected to redis")
		b.cart = storage.NewRedisAdapter(rdb)
	default:
		b.cart = memory
	}

	return b, nil
}

func run(cfg config.StoreConfig, verbose bool) error {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	b, err := openBackends(ctx, cfg, logger)
	defer b.close()
	if err != nil {
		return err
	}

	storeService := service.NewStoreService(b.inventory, b.cart, logger)
	if len(cfg.Seed) > 0 {
		if err := storeService.SeedInventory(ctx, cfg.Seed); err != nil {
			return err
		}
	}

	router := mux.NewRouter()
	handler.NewStoreHandler(storeService, logger).Register(router)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("store listening",
			zap.String("addr", cfg.Addr),
			zap.String("inventory_backend", cfg.InventoryBackend),
			zap.String("cart_backend", cfg.CartBackend))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
	return nil
}
