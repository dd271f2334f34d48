/*
Package csvfile reads input record sets from CSV files and writes plan
and outbox files.

READING:
  Each file's first row names its fields; field order does not matter.
  A UTF-8 byte order mark on the header is ignored. The three files are
  read concurrently; the first failure cancels the others.

WRITING:
  Plan and outbox are encoded in memory, written to temporary files next
  to their targets, and renamed into place only after both temporary
  files are complete. A failure leaves neither output behind.

SEE ALSO:
  - generic/store.go: Source interface and field names
  - outreach/types.go: Plan
*/
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

// =============================================================================
// SOURCE
// =============================================================================

// Source reads the three input files.
type Source struct {
	ProductsPath string
	OrdersPath   string
	ItemsPath    string
}

var _ generic.Source = (*Source)(nil)

func NewSource(products, orders, items string) *Source {
	return &Source{ProductsPath: products, OrdersPath: orders, ItemsPath: items}
}

// LoadDataset reads all three files concurrently.
func (s *Source) LoadDataset(ctx context.Context) (generic.Dataset, error) {
	var ds generic.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Products, err = ReadTableFile(gctx, generic.RecordSetProducts, s.ProductsPath)
		return err
	})
	g.Go(func() (err error) {
		ds.Orders, err = ReadTableFile(gctx, generic.RecordSetOrders, s.OrdersPath)
		return err
	})
	g.Go(func() (err error) {
		ds.Items, err = ReadTableFile(gctx, generic.RecordSetItems, s.ItemsPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return generic.Dataset{}, err
	}
	return ds, nil
}

// ReadTableFile opens path and decodes it as a named record set.
func ReadTableFile(ctx context.Context, name, path string) (*generic.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	t, err := ReadTable(name, f)
	if err != nil {
		return nil, fmt.Errorf("read %s (%s): %w", name, path, err)
	}
	return t, nil
}

// ReadTable decodes CSV with a header row. An empty input yields a table
// with no columns, which then fails column validation.
func ReadTable(name string, r io.Reader) (*generic.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return generic.NewTable(name, nil, nil), nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return generic.NewTable(name, header, rows), nil
}

// =============================================================================
// WRITER
// =============================================================================

var (
	PlanHeader   = []string{"customer_name", "product_name", "product_type", "last_order_date", "trigger_date", "message_type"}
	OutboxHeader = []string{"customer_name", "message_type", "message_text"}
)

// Writer writes the plan and outbox files of one run.
type Writer struct {
	PlanPath   string
	OutboxPath string
}

func NewWriter(planPath, outboxPath string) *Writer {
	return &Writer{PlanPath: planPath, OutboxPath: outboxPath}
}

// EncodePlan renders plan rows as CSV.
func EncodePlan(entries []outreach.PlanEntry) ([]byte, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CustomerName,
			e.ProductName,
			e.ProductType,
			e.LastOrderDate.String(),
			e.TriggerDate.String(),
			string(e.MessageType),
		})
	}
	return encode(PlanHeader, rows)
}

// EncodeOutbox renders outbox rows as CSV.
func EncodeOutbox(messages []outreach.OutboxMessage) ([]byte, error) {
	rows := make([][]string, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, []string{m.CustomerName, string(m.MessageType), m.MessageText})
	}
	return encode(OutboxHeader, rows)
}

func encode(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePlan writes both files or neither.
func (w *Writer) WritePlan(plan *outreach.Plan) error {
	planData, err := EncodePlan(plan.Entries)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	outboxData, err := EncodeOutbox(plan.Outbox)
	if err != nil {
		return fmt.Errorf("encode outbox: %w", err)
	}

	planTmp, err := writeTemp(w.PlanPath, planData)
	if err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	outboxTmp, err := writeTemp(w.OutboxPath, outboxData)
	if err != nil {
		os.Remove(planTmp)
		return fmt.Errorf("write outbox: %w", err)
	}

	if err := os.Rename(planTmp, w.PlanPath); err != nil {
		os.Remove(planTmp)
		os.Remove(outboxTmp)
		return fmt.Errorf("write plan: %w", err)
	}
	if err := os.Rename(outboxTmp, w.OutboxPath); err != nil {
		os.Remove(outboxTmp)
		os.Remove(w.PlanPath)
		return fmt.Errorf("write outbox: %w", err)
	}
	return nil
}

func writeTemp(target string, data []byte) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
