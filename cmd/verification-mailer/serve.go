package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/go-verification-mailer/internal/application/notification"
	"github.com/go-verification-mailer/internal/infrastructure/awsclient"
	snsinfra "github.com/go-verification-mailer/internal/infrastructure/sns"
	"github.com/go-verification-mailer/internal/metrics"
	transporthttp "github.com/go-verification-mailer/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive SNS deliveries over an HTTP(S) subscription",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides APP_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.AppPort, _ = cmd.Flags().GetString("port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return err
	}
	snsClient := snsinfra.NewClient(awsCfg, cfg)

	deps := &transporthttp.Deps{Confirmer: snsClient, Logger: log}
	var observer notification.Observer = notification.NopObserver{}
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector := metrics.NewCollector(reg)
		observer = collector
		deps.Counter = collector
		deps.Gatherer = reg
	}
	if cfg.SNSVerifySigs {
		deps.Verifier = snsinfra.NewVerifier()
	} else {
		log.Warn("SNS signature verification disabled")
	}

	deps.Service, err = newService(cfg, awsCfg, observer, log)
	if err != nil {
		return err
	}

	router, stopRouter := transporthttp.NewRouter(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "forced shutdown:", err)
		return err
	}
	log.Info("server stopped")
	return nil
}
