/*
Package factory converts JSON plan requests into planner settings.

PURPOSE:
  Lets callers (HTTP clients, stored presets) describe a run as JSON
  without knowing the Go types. Fields left out fall back to the base
  settings the factory was created with.

JSON SCHEMA:
  {
    "today": "2024-01-08",
    "lead_days": 3,
    "durable_after_days": 7,
    "mid_after_days": 30,
    "locale": "tr"
  }

KEY FEATURES:
  - Rejects unknown fields
  - Parses "today" strictly (YYYY-MM-DD)
  - Resolves the locale to its templates up front

USAGE:
  f := factory.NewRunFactory(outreach.DefaultRuleConfig(), "tr", generic.SystemClock)
  run, err := f.ParseRun(body)
  planner := outreach.NewPlanner(run.Rules, run.Templates)
  plan, err := planner.Build(dataset, run.Today)

SEE ALSO:
  - outreach/rules.go: RuleConfig
  - api/handlers.go: CreatePlan endpoint
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

// RunJSON is the JSON representation of a plan request.
type RunJSON struct {
	Today            string `json:"today,omitempty"`
	LeadDays         *int   `json:"lead_days,omitempty"`
	DurableAfterDays *int   `json:"durable_after_days,omitempty"`
	MidAfterDays     *int   `json:"mid_after_days,omitempty"`
	Locale           string `json:"locale,omitempty"`
}

// RunSettings is a fully resolved plan request.
type RunSettings struct {
	Today     generic.Date
	Rules     outreach.RuleConfig
	Locale    string
	Templates outreach.Templates
}

// RunFactory resolves requests against base settings.
type RunFactory struct {
	Base   outreach.RuleConfig
	Locale string
	Clock  generic.Clock
}

func NewRunFactory(base outreach.RuleConfig, locale string, clock generic.Clock) *RunFactory {
	return &RunFactory{Base: base, Locale: locale, Clock: clock}
}

// ParseRun decodes a JSON request. An empty body uses the base settings and
// the clock's current day.
func (f *RunFactory) ParseRun(data []byte) (*RunSettings, error) {
	var req RunJSON
	if len(bytes.TrimSpace(data)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && err != io.EOF {
			return nil, &generic.ConfigError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
	}
	return f.Resolve(req)
}

// Resolve applies a decoded request over the base settings.
func (f *RunFactory) Resolve(req RunJSON) (*RunSettings, error) {
	rules := f.Base
	if req.LeadDays != nil {
		rules.LeadDays = *req.LeadDays
	}
	if req.DurableAfterDays != nil {
		rules.DurableAfterDays = *req.DurableAfterDays
	}
	if req.MidAfterDays != nil {
		rules.MidAfterDays = *req.MidAfterDays
	}

	locale := req.Locale
	if locale == "" {
		locale = f.Locale
	}
	templates, err := outreach.TemplatesFor(locale)
	if err != nil {
		return nil, err
	}

	today, err := outreach.ResolveToday(req.Today, f.Clock)
	if err != nil {
		return nil, err
	}

	return &RunSettings{
		Today:     today,
		Rules:     rules,
		Locale:    templates.Locale,
		Templates: templates,
	}, nil
}
