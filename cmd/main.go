// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/laengalba/studio-booking/internal/auth"
	"github.com/laengalba/studio-booking/internal/config"
	"github.com/laengalba/studio-booking/internal/database"
	"github.com/laengalba/studio-booking/internal/handler"
	"github.com/laengalba/studio-booking/internal/repository"
	"github.com/laengalba/studio-booking/internal/roster"
	"github.com/laengalba/studio-booking/internal/seed"
	"github.com/laengalba/studio-booking/internal/service"
)

const rosterSyncTimeout = 5 * time.Minute

func main() {
	ctx := context.Background()

	// ── 1. Configuration and store ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.UsesDefaultSecret() {
		log.Println("[config] warning: SESSION_SECRET is not set, sessions are signed with the default key")
	}
	store := repository.NewStore()

	start, end, err := cfg.SeedPeriod()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := seed.Run(ctx, store, start, end, seed.Accounts{
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
		TestStudent:   cfg.SeedTestStudent,
	}); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// ── 2. Roster import (optional) ──────────────────────────────────────
	var syncer service.RosterSyncer
	var stopRoster func()
	if cfg.RosterEnabled() {
		pool, err := database.NewPool(ctx, cfg.RosterDatabaseURL, database.DefaultOptions)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		log.Println("✓ Connected to roster database")

		s := roster.NewSyncer(roster.NewPostgresSource(pool), store, cfg.RosterDefaultPassword)
		go func() {
			syncCtx, cancel := context.WithTimeout(ctx, rosterSyncTimeout)
			defer cancel()
			s.Run(syncCtx)
		}()

		c, err := roster.Schedule(cfg.RosterSchedule, s, rosterSyncTimeout)
		if err != nil {
			log.Fatalf("roster: %v", err)
		}
		stopRoster = func() { <-c.Stop().Done() }
		syncer = s
	} else {
		log.Println("[roster] ROSTER_DATABASE_URL not set, roster sync disabled")
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	h := handler.New(
		service.NewAccountService(store),
		service.NewClassService(store),
		service.NewBookingService(store, time.Now),
		service.NewAdminService(store, syncer),
		sessions,
	)

	// ── 4. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger)          // access log
	r.Use(handler.CORS(cfg.CORSOrigin))

	h.Routes(r)

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server…")
	if stopRoster != nil {
		stopRoster()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
