package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/placemap/internal/core"
	"github.com/JonMunkholm/placemap/internal/core/coretest"
)

type execRecorder struct{ calls int }

func (e *execRecorder) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	e.calls++
	return pgconn.CommandTag{}, nil
}

type harness struct {
	store  *coretest.MemStore
	exec   *execRecorder
	closed int
}

func newHarness() *harness {
	return &harness{store: coretest.NewMemStore(), exec: &execRecorder{}}
}

func (h *harness) connect(context.Context) (*backend, error) {
	return &backend{
		store: h.store,
		exec:  h.exec,
		close: func() { h.closed++ },
	}, nil
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(h.connect)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportCategories(t *testing.T) {
	h := newHarness()
	path := writeFile(t, "cats.csv", "name,icon,color\nFood,Utensils,#f00\nBad,,\n")

	out, err := h.run(t, "import", "categories", path)
	require.NoError(t, err)

	var report core.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Inserted)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, 1, h.closed)

	logs := h.store.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "cats.csv", logs[0].FileName)
}

func TestImportPlaces_AliasAndName(t *testing.T) {
	h := newHarness()
	path := writeFile(t, "export.csv",
		"name,category,address,latitude,longitude\nCafe,Food,1 Main St,40.7,-74\n")

	_, err := h.run(t, "import", "listings", "--name", "weekly.csv", path)
	require.NoError(t, err)

	assert.Equal(t, 1, h.store.PlaceCount())
	assert.Equal(t, []string{"Food"}, h.store.CategoryNames())
	logs := h.store.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "weekly.csv", logs[0].FileName)
	assert.Equal(t, "locations", logs[0].TableName)
}

func TestImport_Strict(t *testing.T) {
	h := newHarness()
	path := writeFile(t, "cats.csv", "name,icon,color\nFood,Utensils,#f00\nBad,,\n")

	out, err := h.run(t, "import", "categories", "--strict", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errRowsFailed)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, `"inserted": 1`)
}

func TestImport_Errors(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "import", "categories", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, core.ErrMissingFile)

	_, err = h.run(t, "import", "categories", writeFile(t, "cats.txt", "name\n"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "FILE002")

	_, err = h.run(t, "import", "places", writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, err, core.ErrMissingFile)
	assert.Contains(t, err.Error(), "FILE004")

	h.store.FailInsertCategories = errors.New("connection refused")
	out, err := h.run(t, "import", "categories", writeFile(t, "cats.csv", "name,icon,color\nA,B,#fff\n"))
	assert.True(t, core.IsStorageError(err))
	assert.Contains(t, err.Error(), "(Code: DB002)")
	assert.Contains(t, out, `"inserted": 0`)

	h.store.FailInsertCategories = errors.New("disk quota gone")
	_, err = h.run(t, "import", "categories", writeFile(t, "cats.csv", "name,icon,color\nA,B,#fff\n"))
	assert.True(t, core.IsStorageError(err))
	assert.NotContains(t, err.Error(), "Code:")
}

func TestLogs(t *testing.T) {
	h := newHarness()
	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		_, err := h.run(t, "import", "categories", writeFile(t, name, "name,icon,color\n"))
		require.NoError(t, err)
	}

	out, err := h.run(t, "logs", "--limit", "2")
	require.NoError(t, err)

	var entries []core.ImportLogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "c.csv", entries[0].FileName)
}

func TestBootstrap(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "bootstrap")
	require.NoError(t, err)
	assert.Equal(t, "schema applied\n", out)
	assert.Equal(t, 1, h.exec.calls)
}
