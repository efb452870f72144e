// Command gateway is the soltrace streaming gateway entrypoint: it wires C1-C7
// together and serves the wallet-activity RPC over gRPC, plus a Prometheus
// scrape endpoint. Ported from ws/cmd/single/main.go's
// config-load/logger/automaxprocs/serve/signal-shutdown skeleton.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/adred-codev/soltrace/internal/config"
	"github.com/adred-codev/soltrace/internal/decoder"
	"github.com/adred-codev/soltrace/internal/gateway"
	"github.com/adred-codev/soltrace/internal/logging"
	"github.com/adred-codev/soltrace/internal/metrics"
	"github.com/adred-codev/soltrace/internal/offchain"
	"github.com/adred-codev/soltrace/internal/onchain"
	"github.com/adred-codev/soltrace/internal/rpc"
	"github.com/adred-codev/soltrace/internal/session"
	"github.com/adred-codev/soltrace/internal/tokenstore"
	"github.com/adred-codev/soltrace/internal/wsclient"
	"google.golang.org/grpc"

	_ "go.uber.org/automaxprocs"
)

func main() {
	var debug = flag.Bool("debug", false, "enable debug logging (overrides LOG_LEVEL)")
	flag.Parse()

	bootstrap := logging.New("info", "pretty")
	bootstrap.Info().Int("gomaxprocs", runtime.GOMAXPROCS(0)).Msg("starting soltrace gateway")

	cfg, err := config.Load(&bootstrap)
	if err != nil {
		bootstrap.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	cfg.Print()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	cfg.LogConfig(logger)

	tokens := tokenstore.New()
	onChain := onchain.NewRPCClient(cfg.SolanaRPCURL, http.DefaultClient)
	offChain := offchain.NewJupiterClient(cfg.JupiterBaseURL, http.DefaultClient)
	dec := decoder.New(onChain, offChain, tokens)
	sessions := session.New()

	wsFactory := func() gateway.UpstreamWS {
		return wsclient.NewClient(cfg.SolanaWSURL, logger)
	}
	svc := gateway.New(sessions, tokens, onChain, offChain, dec, wsFactory)
	rpcServer := rpc.NewServer(svc, logger)

	grpcServer := grpc.NewServer()
	rpc.RegisterServer(grpcServer, rpcServer)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Addr).Msg("failed to bind gRPC listener")
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("gRPC server listening")
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error().Err(err).Msg("gRPC server stopped unexpectedly")
		}
	}()

	metricsServer := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      metrics.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown error")
	}
}
