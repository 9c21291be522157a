package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/govpilot/internal/testutil"
)

func TestLoad_DuckDBOverCSV(t *testing.T) {
	dir := testutil.CatalogDir(t)

	fromDuck, err := Load(context.Background(), Config{Type: TypeDuckDB, DataDir: dir}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	fromCSV, err := Load(context.Background(), Config{Type: TypeCSV, DataDir: dir}, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, fromCSV.Datasets, fromDuck.Datasets)
	assert.ElementsMatch(t, fromCSV.Columns, fromDuck.Columns)
	assert.ElementsMatch(t, fromCSV.Lineage, fromDuck.Lineage)
	assert.ElementsMatch(t, fromCSV.Audits, fromDuck.Audits)
}

func TestLoad_DuckDBMissingCSV(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCatalog(t, dir, map[string]string{"lineage.csv": ""})

	_, err := Load(context.Background(), Config{Type: TypeDuckDB, DataDir: dir}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lineage.csv")
}
