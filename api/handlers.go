package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/outreach-engine/factory"
	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/logger"
	"github.com/warp/outreach-engine/outreach"
)

const maxBodyBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      outreach.Store
	RunFactory *factory.RunFactory
	Log        *logger.Logger

	// Now stamps archived runs; NewID names them.
	Now   func() time.Time
	NewID func() string

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler planning with the given base rules and locale.
func NewHandler(store outreach.Store, base outreach.RuleConfig, locale string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Store:      store,
		RunFactory: factory.NewRunFactory(base, locale, generic.SystemClock),
		Log:        log,
		Now:        time.Now,
		NewID:      func() string { return uuid.NewString() },
	}
}

// RunPlan builds a plan from the stored snapshot and archives it.
func (h *Handler) RunPlan(ctx context.Context, settings *factory.RunSettings) (*outreach.PlanRun, error) {
	ds, err := h.Store.LoadDataset(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := outreach.NewPlanner(settings.Rules, settings.Templates).Build(ds, settings.Today)
	if err != nil {
		return nil, err
	}

	run := outreach.NewPlanRun(h.NewID(), plan, settings.Rules, settings.Locale, h.Now().UTC())
	if err := h.Store.SavePlanRun(ctx, run); err != nil {
		return nil, err
	}
	h.Log.With("run_id", run.ID).Info("plan archived",
		"today", run.Today.String(),
		"due", len(run.Entries),
	)
	return &run, nil
}

func (h *Handler) scenario() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// DATASET HANDLERS
// =============================================================================

// GetDataset returns record counts of the stored snapshot.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Store.LoadDataset(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, DatasetSummaryDTO{
		Products:   ds.Products.Len(),
		Orders:     ds.Orders.Len(),
		OrderItems: ds.Items.Len(),
	})
}

// ReplaceDataset swaps the stored snapshot for the request body.
func (h *Handler) ReplaceDataset(w http.ResponseWriter, r *http.Request) {
	var req DatasetRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ds := req.toDataset()
	if err := h.Store.ReplaceDataset(r.Context(), ds); err != nil {
		writeError(w, statusFor(err), "failed to replace dataset", err)
		return
	}
	h.setScenario("")

	h.Log.Info("dataset replaced",
		"products", ds.Products.Len(),
		"orders", ds.Orders.Len(),
		"order_items", ds.Items.Len(),
	)
	writeJSON(w, http.StatusOK, DatasetSummaryDTO{
		Products:   ds.Products.Len(),
		Orders:     ds.Orders.Len(),
		OrderItems: ds.Items.Len(),
	})
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// CreatePlan builds and archives a plan. The body (factory.RunJSON) is optional.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	settings, err := h.RunFactory.ParseRun(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan request", err)
		return
	}

	run, err := h.RunPlan(r.Context(), settings)
	if err != nil {
		h.Log.Warn("plan failed", "error", err)
		writeError(w, statusFor(err), "failed to build plan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlanRunDTO(run))
}

// ListPlans returns archived run headers, newest first.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListPlanRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans", err)
		return
	}

	dtos := make([]PlanRunSummaryDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toPlanRunSummaryDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPlan returns one archived run with entries and outbox.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.Store.GetPlanRun(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), "failed to get plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanRunDTO(run))
}

// =============================================================================
// HELPERS
// =============================================================================

// statusFor maps planner and store errors onto HTTP statuses. Bad stored
// data (including unparseable order dates) is 422; bad request
// parameters never reach here because they are rejected up front.
func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsDataError(err), errors.Is(err, generic.ErrDateParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generic.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
