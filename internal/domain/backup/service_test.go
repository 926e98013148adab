package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRepo struct {
	tables       map[string][]json.RawMessage
	restoreOrder []string
}

func newMemRepo() *memRepo {
	return &memRepo{tables: make(map[string][]json.RawMessage)}
}

func (r *memRepo) ExportTable(_ context.Context, table string) ([]json.RawMessage, error) {
	return r.tables[table], nil
}

func (r *memRepo) RestoreTable(_ context.Context, table string, rows []json.RawMessage) (int, error) {
	r.restoreOrder = append(r.restoreOrder, table)
	r.tables[table] = rows
	return len(rows), nil
}

func TestExportImportRoundTrip(t *testing.T) {
	source := newMemRepo()
	source.tables[TableSuppliers] = []json.RawMessage{
		json.RawMessage(`{"id":"s1","name":"LOIA FOODS","cnpj":"11222333000181"}`),
	}
	source.tables[TableItems] = []json.RawMessage{
		json.RawMessage(`{"id":"i1","code":"PC-20","name":"Potato Chips 20X300Gr"}`),
		json.RawMessage(`{"id":"i2","code":"SR-06","name":"Soy Sauce 6X500ML"}`),
	}

	var buf bytes.Buffer
	require.NoError(t, NewService(source, fakeTxManager{}).Export(context.Background(), &buf))

	target := newMemRepo()
	summary, err := NewService(target, fakeTxManager{}).Import(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Restored[TableSuppliers])
	assert.Equal(t, 2, summary.Restored[TableItems])
	assert.Empty(t, summary.Skipped)
	assert.JSONEq(t, string(source.tables[TableItems][0]), string(target.tables[TableItems][0]))
}

func TestImportRestoresParentTablesFirst(t *testing.T) {
	source := newMemRepo()
	source.tables[TableMovements] = []json.RawMessage{json.RawMessage(`{"id":"m1"}`)}
	source.tables[TableItems] = []json.RawMessage{json.RawMessage(`{"id":"i1"}`)}
	source.tables[TableSuppliers] = []json.RawMessage{json.RawMessage(`{"id":"s1"}`)}

	var buf bytes.Buffer
	require.NoError(t, NewService(source, fakeTxManager{}).Export(context.Background(), &buf))

	target := newMemRepo()
	_, err := NewService(target, fakeTxManager{}).Import(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{TableSuppliers, TableItems, TableMovements}, target.restoreOrder)
}

func TestImportSkipsUnknownTables(t *testing.T) {
	snapshot := Snapshot{
		Version: SnapshotVersion,
		Tables: map[string][]json.RawMessage{
			TableSuppliers: {json.RawMessage(`{"id":"s1"}`)},
			"legacy_notes": {json.RawMessage(`{"id":"n1"}`)},
		},
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	require.NoError(t, json.NewEncoder(gz).Encode(snapshot))
	require.NoError(t, gz.Close())

	target := newMemRepo()
	summary, err := NewService(target, fakeTxManager{}).Import(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Restored[TableSuppliers])
	assert.Equal(t, []string{"legacy_notes"}, summary.Skipped)
	assert.NotContains(t, target.tables, "legacy_notes")
}

func TestImportRejectsBadArchives(t *testing.T) {
	svc := NewService(newMemRepo(), fakeTxManager{})

	_, err := svc.Import(context.Background(), bytes.NewBufferString("not gzip at all"))
	assert.Error(t, err)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("not json"))
	require.NoError(t, gz.Close())
	_, err = svc.Import(context.Background(), &buf)
	assert.Error(t, err)

	buf.Reset()
	gz = gzip.NewWriter(&buf)
	require.NoError(t, json.NewEncoder(gz).Encode(Snapshot{Version: SnapshotVersion + 1, Tables: map[string][]json.RawMessage{}}))
	require.NoError(t, gz.Close())
	_, err = svc.Import(context.Background(), &buf)
	assert.Error(t, err)
}
