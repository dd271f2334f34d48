/*
main.go - Command-line planner

PURPOSE:
  Reads products, orders and order items from CSV files, computes which
  follow-up messages are due, and writes the plan and the outbox.

COMMAND-LINE FLAGS:
  -products             products CSV (default: data/products.csv)
  -orders               orders CSV (default: data/orders.csv)
  -items                order items CSV (default: data/order_items.csv)
  -out                  plan CSV (default: output/message_plan.csv)
  -outbox               outbox CSV (default: message_outbox.csv)
  -lead-days            days before a consumable runs out to remind (default: 3)
  -durable-after-days   days after purchase to offer accessories (default: 7)
  -mid-after-days       days after purchase to follow up (default: 30)
  -today                reference date YYYY-MM-DD (default: system date)
  -locale               message templates: tr | en (default: tr)
  -config               YAML file; explicit flags override it
  -db                   SQLite file to archive the run in (optional)
  -log                  dev | prod

EXIT STATUS:
  0 on success, 1 on any failure. On failure no output file is written.

EXAMPLES:
  outreach -today=2024-01-08
  outreach -config=outreach.yaml -locale=en -out=/tmp/plan.csv
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/warp/outreach-engine/config"
	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/logger"
	"github.com/warp/outreach-engine/outreach"
	"github.com/warp/outreach-engine/store/csvfile"
	"github.com/warp/outreach-engine/store/sqlite"
)

func main() {
	os.Exit(run(os.Args[1:], generic.SystemClock, os.Stderr, nil))
}

// run executes one planning run. log may be nil, in which case a logger is
// built from the configured mode.
func run(args []string, clock generic.Clock, stderr io.Writer, log *logger.Logger) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if log == nil {
		log, err = logger.New(cfg.Log)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer log.Sync()
	}

	if err := plan(context.Background(), cfg, clock, log); err != nil {
		log.Error("message plan failed", "error", err)
		return 1
	}
	return 0
}

// parseConfig layers defaults, the optional YAML file and explicit flags.
func parseConfig(args []string, stderr io.Writer) (config.Config, error) {
	def := config.Default()

	fs := flag.NewFlagSet("outreach", flag.ContinueOnError)
	fs.SetOutput(stderr)
	products := fs.String("products", def.Products, "products CSV")
	orders := fs.String("orders", def.Orders, "orders CSV")
	items := fs.String("items", def.Items, "order items CSV")
	out := fs.String("out", def.Out, "plan CSV to write")
	outbox := fs.String("outbox", def.Outbox, "outbox CSV to write")
	leadDays := fs.Int("lead-days", def.Rules.LeadDays, "days before consumable shelf life to remind")
	durableAfter := fs.Int("durable-after-days", def.Rules.DurableAfterDays, "days after purchase to suggest accessories")
	midAfter := fs.Int("mid-after-days", def.Rules.MidAfterDays, "days after purchase to send follow-up campaign")
	today := fs.String("today", "", "override today (YYYY-MM-DD)")
	locale := fs.String("locale", def.Locale, "message locale")
	configPath := fs.String("config", "", "YAML config file")
	dbPath := fs.String("db", "", "SQLite file to archive the run in")
	logMode := fs.String("log", def.Log, "log mode: dev or prod")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "products":
			cfg.Products = *products
		case "orders":
			cfg.Orders = *orders
		case "items":
			cfg.Items = *items
		case "out":
			cfg.Out = *out
		case "outbox":
			cfg.Outbox = *outbox
		case "lead-days":
			cfg.Rules.LeadDays = *leadDays
		case "durable-after-days":
			cfg.Rules.DurableAfterDays = *durableAfter
		case "mid-after-days":
			cfg.Rules.MidAfterDays = *midAfter
		case "today":
			cfg.Today = *today
		case "locale":
			cfg.Locale = *locale
		case "db":
			cfg.DB = *dbPath
		case "log":
			cfg.Log = *logMode
		}
	})

	return cfg, cfg.Validate()
}

func plan(ctx context.Context, cfg config.Config, clock generic.Clock, log *logger.Logger) error {
	templates, err := outreach.TemplatesFor(cfg.Locale)
	if err != nil {
		return err
	}
	today, err := outreach.ResolveToday(cfg.Today, clock)
	if err != nil {
		return err
	}

	ds, err := csvfile.NewSource(cfg.Products, cfg.Orders, cfg.Items).LoadDataset(ctx)
	if err != nil {
		return err
	}

	result, err := outreach.NewPlanner(cfg.Rules, templates).Build(ds, today)
	if err != nil {
		return err
	}

	if cfg.DB != "" {
		if err := archive(ctx, cfg, templates.Locale, result); err != nil {
			return err
		}
	}

	if err := csvfile.NewWriter(cfg.Out, cfg.Outbox).WritePlan(result); err != nil {
		return err
	}

	log.Info("message plan created", "path", cfg.Out)
	log.Info("outbox created", "path", cfg.Outbox)
	log.Info("plan summary", "today", today.String(), "due_messages", len(result.Entries))
	return nil
}

func archive(ctx context.Context, cfg config.Config, locale string, result *outreach.Plan) error {
	store, err := sqlite.New(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	run := outreach.NewPlanRun(uuid.NewString(), result, cfg.Rules, locale, time.Now().UTC())
	if err := store.SavePlanRun(ctx, run); err != nil {
		return fmt.Errorf("archive plan run: %w", err)
	}
	return nil
}
