package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/cart-sync/internal/adapter/gateway"
	"github.com/rl1809/cart-sync/internal/adapter/handler"
	"github.com/rl1809/cart-sync/internal/adapter/render"
	"github.com/rl1809/cart-sync/internal/config"
	"github.com/rl1809/cart-sync/internal/core/service"
	"github.com/rl1809/cart-sync/internal/core/state"
)

const shutdownTimeout = 5 * time.Second

type serverOptions struct {
	configPath string
	storeURL   string
	httpAddr   string
	grpcAddr   string
	renderText bool
	verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &serverOptions{}

	cmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Serve the cart storefront backed by a remote store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("store-url") {
				cfg.Storefront.StoreURL = opts.storeURL
			}
			if flags.Changed("http-addr") {
				cfg.Storefront.HTTPAddr = opts.httpAddr
			}
			if flags.Changed("grpc-addr") {
				cfg.Storefront.GRPCAddr = opts.grpcAddr
			}
			if flags.Changed("render-text") {
				cfg.Storefront.RenderText = opts.renderText
			}
			return run(cfg.Storefront, opts.verbose)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.storeURL, "store-url", "", "base URL of the remote store")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", "", "gRPC listen address")
	cmd.Flags().BoolVar(&opts.renderText, "render-text", false, "print the inventory and cart to stdout on every change")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config.StorefrontConfig, verbose bool) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := state.New()
	gw := gateway.NewHTTPGateway(cfg.StoreURL, nil, logger)
	cartService := service.NewCartService(gw, st, logger)

	// Single render callback: every collection replacement reaches both views.
	hub := render.NewHub(logger)
	var text *render.TextRenderer
	if cfg.RenderText {
		text = render.NewTextRenderer(os.Stdout)
	}
	st.Subscribe(func() {
		snap := st.Snapshot()
		if err := hub.Publish(snap); err != nil {
			logger.Warn("failed to publish snapshot", zap.Error(err))
		}
		if text != nil {
			if err := text.Render(snap); err != nil {
				logger.Warn("failed to render snapshot", zap.Error(err))
			}
		}
	})
	go hub.Run(ctx)

	if err := cartService.Initialize(ctx); err != nil {
		logger.Error("starting with empty state", zap.String("store_url", cfg.StoreURL), zap.Error(err))
	}

	// gRPC
	grpcServer := grpc.NewServer()
	handler.RegisterCartActionsServer(grpcServer, handler.NewGRPCHandler(cartService))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handler.CartActionsServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP
	router := mux.NewRouter()
	handler.NewHTTPHandler(cartService).Register(router)
	router.HandleFunc("/ws", hub.ServeWS)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	cancel()
	return nil
}
