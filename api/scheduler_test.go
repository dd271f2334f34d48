package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanScheduler_BuildsImmediately(t *testing.T) {
	// GIVEN: A scheduler with a long interval
	// WHEN: Starting it
	// THEN: One plan is archived right away; Stop returns

	h, _ := setupTestHandler(t)
	ps := NewPlanScheduler(h, time.Hour)

	ps.Start()
	require.Eventually(t, func() bool {
		runs, err := h.Store.ListPlanRuns(context.Background())
		return err == nil && len(runs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	ps.Stop()

	runs, err := h.Store.ListPlanRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", runs[0].Today.String())
}

func TestPlanScheduler_DisabledAndIdempotentStop(t *testing.T) {
	h, _ := setupTestHandler(t)
	ps := NewPlanScheduler(h, 0)

	ps.Start()
	ps.Stop()
	ps.Stop()

	runs, err := h.Store.ListPlanRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
