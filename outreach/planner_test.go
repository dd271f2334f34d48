package outreach_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

func newPlanner(t *testing.T) *outreach.Planner {
	t.Helper()
	templates, err := outreach.TemplatesFor("tr")
	require.NoError(t, err)
	return outreach.NewPlanner(outreach.RuleConfig{LeadDays: 3, DurableAfterDays: 7, MidAfterDays: 30}, templates)
}

// =============================================================================
// WORKED EXAMPLES
// =============================================================================

func TestPlanner_ConsumableDueOnTriggerDate(t *testing.T) {
	// GIVEN: Filter (shelf life 10) bought by Ayşe on 2024-01-01, lead 3
	// WHEN: Planning for 2024-01-08 and 2024-01-07
	// THEN: Due on the 8th, not on the 7th

	ds := generic.Dataset{
		Products: products("P1,Filter,consumable,10"),
		Orders:   orders("O1,Ayşe,2024-01-01"),
		Items:    items("O1,P1,1"),
	}
	p := newPlanner(t)

	plan, err := p.Build(ds, date(2024, time.January, 8))
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, outreach.PlanEntry{
		CustomerName: "Ayşe", ProductID: "P1", ProductName: "Filter", ProductType: "consumable",
		LastOrderDate: date(2024, time.January, 1),
		TriggerDate:   date(2024, time.January, 8),
		MessageType:   outreach.MessageReorderReminder,
	}, plan.Entries[0])

	plan, err = p.Build(ds, date(2024, time.January, 7))
	require.NoError(t, err)
	assert.Empty(t, plan.Entries)
	assert.Empty(t, plan.Outbox)
}

func TestPlanner_ConsumableWithoutShelfLifeColumn(t *testing.T) {
	ds := generic.Dataset{
		Products: table(generic.RecordSetProducts, "product_id,product_name,product_type", "P1,Filter,Consumable"),
		Orders:   orders("O1,Ayşe,2024-01-01"),
		Items:    items("O1,P1,1"),
	}

	plan, err := newPlanner(t).Build(ds, date(2024, time.January, 28))
	require.NoError(t, err)

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, date(2024, time.January, 28), plan.Entries[0].TriggerDate)
}

func TestPlanner_FullSample(t *testing.T) {
	// GIVEN: Filter due 01-08, Kettle (durable) due 01-08, Mug (blank) due 01-31
	// WHEN: Planning for 2024-01-31
	// THEN: All three, ordered by trigger date, customer, product

	plan, err := newPlanner(t).Build(sampleDataset(), date(2024, time.January, 31))
	require.NoError(t, err)

	require.Len(t, plan.Entries, 3)
	assert.Equal(t, "Filter", plan.Entries[0].ProductName)
	assert.Equal(t, "Kettle", plan.Entries[1].ProductName)
	assert.Equal(t, outreach.MessageAccessoryOffer, plan.Entries[1].MessageType)
	assert.Equal(t, "Mug", plan.Entries[2].ProductName)
	assert.Equal(t, date(2024, time.January, 31), plan.Entries[2].TriggerDate)
	assert.Equal(t, outreach.MessageCampaignFollowup, plan.Entries[2].MessageType)
	assert.Equal(t, "", plan.Entries[2].ProductType)

	require.Len(t, plan.Outbox, 3)
	assert.Equal(t, "Merhaba Ayşe, Filter ürününüz bitmek üzere olabilir. Yenilemek ister misiniz?", plan.Outbox[0].MessageText)
	assert.Equal(t, "Mehmet", plan.Outbox[2].CustomerName)
	assert.Equal(t, outreach.MessageCampaignFollowup, plan.Outbox[2].MessageType)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestPlanner_NothingAfterToday(t *testing.T) {
	p := newPlanner(t)
	for day := 1; day <= 60; day++ {
		today := date(2023, time.December, 25).AddDays(day)
		plan, err := p.Build(sampleDataset(), today)
		require.NoError(t, err)
		for _, e := range plan.Entries {
			assert.True(t, e.TriggerDate.BeforeOrEqual(today), "entry %+v after %s", e, today)
		}
	}
}

func TestPlanner_Deterministic(t *testing.T) {
	p := newPlanner(t)
	first, err := p.Build(sampleDataset(), date(2024, time.February, 1))
	require.NoError(t, err)
	second, err := p.Build(sampleDataset(), date(2024, time.February, 1))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlanner_ErrorsAbortWithoutPlan(t *testing.T) {
	cases := map[string]struct {
		mutate func(*generic.Dataset)
		target error
	}{
		"missing column": {
			mutate: func(ds *generic.Dataset) {
				ds.Products = table(generic.RecordSetProducts, "product_id,product_name", "P1,Filter")
			},
			target: generic.ErrMissingColumn,
		},
		"dangling order": {
			mutate: func(ds *generic.Dataset) { ds.Items = items("O7,P1,1") },
			target: generic.ErrDataIntegrity,
		},
		"blank customer and product": {
			mutate: func(ds *generic.Dataset) {
				ds.Orders = orders("O1,,2024-01-01", "O2,Ayşe,2023-12-01", "O3,Mehmet,2024-01-01")
				ds.Products = products("P1,Filter,consumable,10", "P2,,durable,", "P3,Mug,,")
			},
			target: generic.ErrDataIntegrity,
		},
		"bad order date": {
			mutate: func(ds *generic.Dataset) { ds.Orders = orders("O1,Ayşe,01.01.2024") },
			target: generic.ErrDateParse,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ds := sampleDataset()
			tc.mutate(&ds)

			plan, err := newPlanner(t).Build(ds, date(2024, time.December, 31))

			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestNewPlanner_DefaultRenderer(t *testing.T) {
	p := outreach.NewPlanner(outreach.DefaultRuleConfig(), nil)

	plan, err := p.Build(sampleDataset(), date(2024, time.December, 31))
	require.NoError(t, err)
	require.NotEmpty(t, plan.Outbox)
	assert.Contains(t, plan.Outbox[0].MessageText, "Merhaba")
}
