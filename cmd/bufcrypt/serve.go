package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybroslabs/libbufcrypt-go/kms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the kms gRPC server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "gRPC listen address, configured value when empty",
			},
			&cli.StringFlag{
				Name:  "metrics",
				Usage: "metrics listen address, configured value when empty",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	e := getEnv(c)
	if err := e.crypto.SelfTest(); err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}
	listen := e.cfg.Server.Listen
	if c.IsSet("listen") {
		listen = c.String("listen")
	}
	metricsAddr := e.cfg.Server.Metrics
	if c.IsSet("metrics") {
		metricsAddr = c.String("metrics")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv, err := kms.NewServer(&kms.ServerSettings{
		Logger:    e.logger,
		Crypto:    e.crypto,
		Registry:  registry,
		Algorithm: e.cfg.AlgorithmValue(),
	})
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return err
	}
	g := srv.NewGRPCServer()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		e.logger.Infof("kms listening on %s, %s backend", lis.Addr(), e.crypto.Backend().Name())
		return g.Serve(lis)
	})

	var metricsServer *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		eg.Go(func() error {
			e.logger.Infof("metrics listening on %s", metricsAddr)
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		e.logger.Infof("shutting down")
		g.GracefulStop()
		if metricsServer != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(sctx)
		}
		return nil
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
