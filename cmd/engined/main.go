// cmd/engined/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/uno/internal/config"
	"github.com/cardtable/uno/internal/engine"
	"github.com/cardtable/uno/internal/handlers"
	"github.com/cardtable/uno/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("UNO_DEBUG") == "true" {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, err := engine.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to initialize engine: %v", err)
	}
	defer e.Close()

	restored, err := e.Restore(ctx)
	if err != nil {
		logger.WithError(err).Warn("could not restore snapshot, starting empty")
	} else if restored > 0 {
		logger.WithField("sessions", restored).Info("restored sessions from snapshot")
	}

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		e.Run(ctx)
	}()

	mux := http.NewServeMux()
	mux.Handle("/health", middleware.LogMiddleware(logger)(
		handlers.HealthHandler(e),
	))
	mux.Handle("/ws", middleware.LogMiddleware(logger)(
		handlers.CommandWSHandler(logger, e),
	))

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
	}

	l, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ServicePort))
	if err != nil {
		logger.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("listening on %s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown")
	}
	// The engine cuts a final snapshot on its way out; wait for it.
	cancel()
	<-engineDone
}
