package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDatasetsListsBuiltins(t *testing.T) {
	out, err := run(t, "datasets", "--category", "liquidity")
	require.NoError(t, err)
	assert.Contains(t, out, "lcr-nsfr-trend")
	assert.NotContains(t, out, "npl-trend")
}

func TestSchemaUnknownDataset(t *testing.T) {
	_, err := run(t, "schema", "nope")
	assert.Error(t, err)
}

func TestQueryDateRange(t *testing.T) {
	out, err := run(t, "query", "--dataset", "npl-trend", "--from", "2025-06", "--to", "2025-08")
	require.NoError(t, err)

	var result struct {
		Data []models.Row `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Data, 3)
	assert.Greater(t, result.Meta.Total, len(result.Data))
}

func TestQueryFileWithLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "branches.csv")
	require.NoError(t, os.WriteFile(path, []byte("branch,amount\nA,10\nB,250\nC,300\n"), 0o600))

	out, err := run(t, "query", "--file", path, "--limit", "2")
	require.NoError(t, err)

	var result struct {
		Data []models.Row `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Data, 3, "custom datasets are returned unfiltered")
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("amount>=100")
	require.NoError(t, err)
	assert.Equal(t, models.Filter{Column: "amount", Operator: models.OpGte, Value: "100"}, f)

	f, err = parseFilter("sector~제조")
	require.NoError(t, err)
	assert.Equal(t, models.OpContains, f.Operator)

	_, err = parseFilter("nonsense")
	assert.Error(t, err)
}

func TestIngestPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.tsv")
	require.NoError(t, os.WriteFile(path, []byte("month\trate\n2025-01\t1.5\n2025-02\t1.7\n"), 0o600))

	out, err := run(t, "ingest", path, "--rows", "1")
	require.NoError(t, err)

	var preview struct {
		TotalRows   int          `json:"totalRows"`
		PreviewRows []models.Row `json:"previewRows"`
		Schema      models.Schema
	}
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, 2, preview.TotalRows)
	assert.Len(t, preview.PreviewRows, 1)
	assert.Equal(t, "month", preview.Schema.DefaultDateColumn)
}
