/*
Package config holds run settings for the planner binaries.

PURPOSE:
  One place for file locations, rule offsets, locale and logging mode.
  Values come from built-in defaults, then an optional YAML file, then
  command-line flags (highest precedence, applied by the binaries).

YAML SCHEMA:
  products: data/products.csv
  orders: data/orders.csv
  items: data/order_items.csv
  out: output/message_plan.csv
  outbox: message_outbox.csv
  today: "2024-01-08"      # optional, default is the system date
  locale: tr
  log: dev
  db: ""                   # optional SQLite archive
  rules:
    lead_days: 3
    durable_after_days: 7
    mid_after_days: 30

SEE ALSO:
  - outreach/rules.go: RuleConfig
  - cmd/outreach/main.go: Flag overrides
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

type Config struct {
	Products string `yaml:"products"`
	Orders   string `yaml:"orders"`
	Items    string `yaml:"items"`
	Out      string `yaml:"out"`
	Outbox   string `yaml:"outbox"`
	Today    string `yaml:"today"`
	Locale   string `yaml:"locale"`
	Log      string `yaml:"log"`
	DB       string `yaml:"db"`

	Rules outreach.RuleConfig `yaml:"rules"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Products: "data/products.csv",
		Orders:   "data/orders.csv",
		Items:    "data/order_items.csv",
		Out:      "output/message_plan.csv",
		Outbox:   "message_outbox.csv",
		Locale:   outreach.DefaultLocale,
		Log:      "dev",
		Rules:    outreach.DefaultRuleConfig(),
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving unspecified fields untouched.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.Products == "" {
		return &generic.ConfigError{Field: "products", Reason: "path is required"}
	}
	if c.Orders == "" {
		return &generic.ConfigError{Field: "orders", Reason: "path is required"}
	}
	if c.Items == "" {
		return &generic.ConfigError{Field: "items", Reason: "path is required"}
	}
	if c.Out == "" {
		return &generic.ConfigError{Field: "out", Reason: "path is required"}
	}
	if c.Outbox == "" {
		return &generic.ConfigError{Field: "outbox", Reason: "path is required"}
	}
	if _, err := outreach.TemplatesFor(c.Locale); err != nil {
		return err
	}
	return nil
}
