package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/sui-passkey/internal/api"
	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/ceremony"
	"github.com/AlexZinkM/sui-passkey/internal/client"
	"github.com/AlexZinkM/sui-passkey/internal/config"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/logging"
	"github.com/AlexZinkM/sui-passkey/internal/metrics"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/storage"
	"github.com/AlexZinkM/sui-passkey/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet API and the ceremony page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	if err := config.Init(configFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	scope, closer, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := credential.NewStore(scope, log)
	b := bridge.New(log.Named("bridge"))
	provider := ceremony.NewProvider(b, store,
		model.RelyingParty{Name: cfg.RPName, ID: cfg.RPID},
		ceremony.WithLogger(log.Named("ceremony")),
		ceremony.WithMetrics(m),
	)
	sc := client.NewSuiClient(config.GetRPCURL(),
		client.WithPollInterval(cfg.PollInterval),
		client.WithWaitTimeout(cfg.WaitTimeout),
		client.WithLogger(log.Named("client")),
	)

	w, err := wallet.New(config.GetNetwork(), provider, store,
		wallet.WithExecutor(sc),
		wallet.WithIdentityLabel(cfg.DisplayName),
		wallet.WithLogger(log.Named("wallet")),
		wallet.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	router, err := api.SetupRouter(api.Deps{
		Wallet:         w,
		Store:          store,
		Bridge:         b,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log.Named("http"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("network", cfg.Network),
			zap.String("rpId", provider.RelyingParty().ID),
			zap.String("rpc", sc.URL()),
			zap.String("ceremonyPage", "http://localhost:"+cfg.Port+"/ceremony/"),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	w.Disconnect()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
