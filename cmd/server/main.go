/*
main.go - HTTP server entry point

PURPOSE:
  Serves the planning API over a SQLite (or in-memory) snapshot.
  Handles configuration, optional CSV seeding, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (over the optional YAML config)
  2. Open the store
  3. Import seed CSVs if given
  4. Start the plan scheduler if an interval is set
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port            HTTP server port (default: 8080)
  -db              SQLite database path (default: outreach.db)
                   Use "" for a process-local in-memory store
  -config          YAML config with rule offsets and locale
  -seed-products   CSV files imported into the store at startup
  -seed-orders     (all three or none)
  -seed-items
  -schedule        Rebuild interval, e.g. 24h (default: 0, disabled)
  -log             dev | prod

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections and drain (30s timeout)
  3. Close the store

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/outreach-engine/api"
	"github.com/warp/outreach-engine/config"
	"github.com/warp/outreach-engine/logger"
	"github.com/warp/outreach-engine/outreach"
	"github.com/warp/outreach-engine/store/csvfile"
	"github.com/warp/outreach-engine/store/memory"
	"github.com/warp/outreach-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "outreach.db", "SQLite database path (empty for in-memory)")
	configPath := flag.String("config", "", "YAML config file")
	seedProducts := flag.String("seed-products", "", "products CSV to import at startup")
	seedOrders := flag.String("seed-orders", "", "orders CSV to import at startup")
	seedItems := flag.String("seed-items", "", "order items CSV to import at startup")
	schedule := flag.Duration("schedule", 0, "plan rebuild interval (0 disables)")
	logMode := flag.String("log", "", "log mode: dev or prod (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logMode != "" {
		cfg.Log = *logMode
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if _, err := outreach.TemplatesFor(cfg.Locale); err != nil {
		log.Fatal("invalid config", "error", err)
	}

	// Initialize store
	var store outreach.Store
	if *dbPath == "" {
		store = memory.NewMemory()
	} else {
		sqlStore, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatal("failed to initialize database", "error", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	if err := seed(context.Background(), store, *seedProducts, *seedOrders, *seedItems); err != nil {
		log.Fatal("failed to import seed data", "error", err)
	}

	handler := api.NewHandler(store, cfg.Rules, cfg.Locale, log)
	router := api.NewRouter(handler)

	scheduler := api.NewPlanScheduler(handler, *schedule)
	scheduler.Start()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func seed(ctx context.Context, store outreach.Store, products, orders, items string) error {
	if products == "" && orders == "" && items == "" {
		return nil
	}
	if products == "" || orders == "" || items == "" {
		return fmt.Errorf("-seed-products, -seed-orders and -seed-items must be given together")
	}
	ds, err := csvfile.NewSource(products, orders, items).LoadDataset(ctx)
	if err != nil {
		return err
	}
	return store.ReplaceDataset(ctx, ds)
}
