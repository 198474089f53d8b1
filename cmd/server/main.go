package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/booking-orchestrator/internal/app"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	ctx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	appConfig := app.SetAppConfig()
	addr := ":" + appConfig.Config.Port

	// periodic cache sweep runs until the root context is cancelled
	appConfig.Cache.StartSweeper(ctx, appConfig.Config.CacheSweepInterval, appConfig.Logger)

	srv := &http.Server{
		Addr:    addr,
		Handler: appConfig.Router,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("received signal %v, initiating graceful shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown error: %v", err)
		}
		// Cancel root context so ALL goroutines & requests stop
		rootCancel()
		close(idleConnsClosed)
	}()

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	<-idleConnsClosed
	log.Printf("server stopped")
}
