// Command server is the escrow coordinator's process entrypoint: it wires
// config -> logger -> ledger adapter -> state machine -> dispatcher ->
// router, then serves with graceful shutdown, in the shape of
// VidIsWandering-secure-payment-gateway/cmd/api/main.go.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/liquidityos/escrow-coordinator/config"
	"github.com/liquidityos/escrow-coordinator/dispatcher"
	"github.com/liquidityos/escrow-coordinator/escrow"
	httpHandler "github.com/liquidityos/escrow-coordinator/internal/adapter/http"
	"github.com/liquidityos/escrow-coordinator/ledger"
	"github.com/liquidityos/escrow-coordinator/ledger/mock"
	"github.com/liquidityos/escrow-coordinator/ledger/xrpl"
	"github.com/liquidityos/escrow-coordinator/pkg/logger"
	"github.com/liquidityos/escrow-coordinator/pkg/metrics"
	"github.com/liquidityos/escrow-coordinator/store"
	"github.com/liquidityos/escrow-coordinator/wallet"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Int("port", cfg.Server.ListenPort).Msg("starting escrow coordinator")

	ledgerClient, err := newLedgerClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ledger adapter")
	}

	escrowStore := store.New()
	walletMgr := wallet.New(ledgerClient, log)
	metricsReg := metrics.New()

	minReserve, err := uint256.FromDecimal(cfg.Ledger.EnsureFundedMinReserve)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Ledger.EnsureFundedMinReserve).Msg("invalid ledger.ensure_funded_min_reserve")
	}

	machine := escrow.New(escrowStore, walletMgr, ledgerClient, metricsReg, log, escrow.Config{
		RescueDelaySeconds:     cfg.Escrow.RescueDelaySeconds,
		PhaseSlackSeconds:      cfg.Escrow.PhaseSlackSeconds,
		EnsureFundedEnabled:    cfg.Ledger.EnsureFundedEnabled,
		EnsureFundedMinReserve: minReserve,
	})
	disp := dispatcher.New(machine)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Dispatcher: disp,
		Metrics:    metricsReg,
		Logger:     log,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.ListenPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

// newLedgerClient picks the XRPL JSON-RPC adapter when a network endpoint
// is configured, falling back to the in-memory mock for local runs and
// integration tests, per spec.md §9's testnet/faucet gating.
func newLedgerClient(cfg *config.Config, log zerolog.Logger) (ledger.Client, error) {
	if cfg.Ledger.NetworkEndpoint == "" {
		log.Warn().Msg("ledger.network_endpoint not set; using in-memory mock ledger")
		return mock.New(log), nil
	}
	timeout := time.Duration(cfg.Ledger.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return xrpl.New(xrpl.Config{
		RPCURL:  cfg.Ledger.NetworkEndpoint,
		Timeout: timeout,
	})
}
