package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/logger"
	"github.com/warp/outreach-engine/store/sqlite"
)

var fixedClock = generic.Clock(func() time.Time { return time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC) })

type fixture struct {
	dir    string
	out    string
	outbox string
	args   []string
}

func newFixture(t *testing.T, orders string) fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	f := fixture{
		dir:    dir,
		out:    filepath.Join(dir, "output", "message_plan.csv"),
		outbox: filepath.Join(dir, "message_outbox.csv"),
	}
	f.args = []string{
		"-products", write("products.csv", "product_id,product_name,product_type,shelf_life_days\nP1,Filter,consumable,10\nP2,Kettle,durable,\n"),
		"-orders", write("orders.csv", orders),
		"-items", write("order_items.csv", "order_id,product_id,quantity\nO1,P1,1\nO2,P2,1\n"),
		"-out", f.out,
		"-outbox", f.outbox,
	}
	return f
}

const goodOrders = "order_id,customer_name,order_date\nO1,Ayşe,2024-01-01\nO2,Mehmet,2024-01-05\n"

func TestRun_WritesPlanAndOutbox(t *testing.T) {
	// GIVEN: Filter due 2024-01-08, Kettle due 2024-01-12
	// WHEN: Running on 2024-01-08 by the clock
	// THEN: Exit 0, only the filter reminder in both files

	f := newFixture(t, goodOrders)
	var stderr bytes.Buffer

	code := run(f.args, fixedClock, &stderr, logger.Nop())
	require.Equal(t, 0, code, stderr.String())

	plan, err := os.ReadFile(f.out)
	require.NoError(t, err)
	assert.Equal(t,
		"customer_name,product_name,product_type,last_order_date,trigger_date,message_type\n"+
			"Ayşe,Filter,consumable,2024-01-01,2024-01-08,reorder_reminder\n",
		string(plan))

	outbox, err := os.ReadFile(f.outbox)
	require.NoError(t, err)
	assert.Equal(t,
		"customer_name,message_type,message_text\n"+
			"Ayşe,reorder_reminder,\"Merhaba Ayşe, Filter ürününüz bitmek üzere olabilir. Yenilemek ister misiniz?\"\n",
		string(outbox))
}

func TestRun_TodayAndRuleFlags(t *testing.T) {
	f := newFixture(t, goodOrders)
	args := append(f.args, "-today", "2024-01-10", "-durable-after-days", "5", "-locale", "en")

	require.Equal(t, 0, run(args, fixedClock, &bytes.Buffer{}, logger.Nop()))

	plan, err := os.ReadFile(f.out)
	require.NoError(t, err)
	assert.Contains(t, string(plan), "Mehmet,Kettle,durable,2024-01-05,2024-01-10,accessory_offer")
	outbox, err := os.ReadFile(f.outbox)
	require.NoError(t, err)
	assert.Contains(t, string(outbox), "Hello Mehmet")
}

func TestRun_ConfigFileThenFlags(t *testing.T) {
	f := newFixture(t, goodOrders)
	cfgPath := filepath.Join(f.dir, "outreach.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("today: \"2024-01-01\"\nlocale: en\n"), 0o644))

	// The flag wins over the file for today; locale comes from the file.
	args := append(f.args, "-config", cfgPath, "-today", "2024-01-08")
	require.Equal(t, 0, run(args, fixedClock, &bytes.Buffer{}, logger.Nop()))

	outbox, err := os.ReadFile(f.outbox)
	require.NoError(t, err)
	assert.Contains(t, string(outbox), "Hello Ayşe")
}

func TestRun_FailuresWriteNothing(t *testing.T) {
	cases := map[string]struct {
		orders string
		extra  []string
	}{
		"bad order date": {orders: "order_id,customer_name,order_date\nO1,Ayşe,2024/01/01\nO2,Mehmet,2024-01-05\n"},
		"missing column": {orders: "order_id,order_date\nO1,2024-01-01\nO2,2024-01-05\n"},
		"dangling order": {orders: "order_id,customer_name,order_date\nO1,Ayşe,2024-01-01\n"},
		"bad today":      {orders: goodOrders, extra: []string{"-today", "8 Jan 2024"}},
		"unknown locale": {orders: goodOrders, extra: []string{"-locale", "xx"}},
		"unknown flag":   {orders: goodOrders, extra: []string{"-verbose"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, tc.orders)

			code := run(append(f.args, tc.extra...), fixedClock, &bytes.Buffer{}, logger.Nop())

			assert.Equal(t, 1, code)
			assert.NoFileExists(t, f.out)
			assert.NoFileExists(t, f.outbox)
		})
	}
}

func TestRun_ArchivesToSQLite(t *testing.T) {
	f := newFixture(t, goodOrders)
	dbPath := filepath.Join(f.dir, "outreach.db")

	require.Equal(t, 0, run(append(f.args, "-db", dbPath), fixedClock, &bytes.Buffer{}, logger.Nop()))

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.ListPlanRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2024-01-08", runs[0].Today.String())
	assert.Equal(t, 1, runs[0].EntryCount)
}
