package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tenantgate.org/internal/httpapi"
	"tenantgate.org/internal/idp"
	"tenantgate.org/internal/obs"
	"tenantgate.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version)

	dsn := os.Getenv("TENANTGATE_PG_DSN")
	if dsn == "" {
		log.Fatal("TENANTGATE_PG_DSN is required")
	}
	secret := os.Getenv("TENANTGATE_AUTH_SECRET")
	if secret == "" {
		log.Fatal("TENANTGATE_AUTH_SECRET is required")
	}
	provider := os.Getenv("TENANTGATE_IDP_PROVIDER")
	if provider == "" {
		provider = "okta"
	}
	addr := os.Getenv("TENANTGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	verifier, err := idp.New(provider, secret)
	if err != nil {
		log.Fatalf("configure verifier: %v", err)
	}

	api, err := httpapi.New(httpapi.Config{
		Store:      store,
		Verifier:   verifier,
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Version:    version,
	})
	if err != nil {
		log.Fatalf("build api: %v", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tenantgate-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
