package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestImporter_DryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.csv")
	require.NoError(t, os.WriteFile(path, []byte("Customer Code,amount\nCUST0001,100\n,5\n"), 0o600))

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--file", path, "--month", "2024-01", "--dry-run"})

	require.NoError(t, cmd.Execute())

	var summary map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, float64(2), summary["totalRows"])
	assert.Equal(t, float64(1), summary["keyedRows"])
	assert.Equal(t, float64(1), summary["skippedRows"])
}

func TestImporter_RequiresFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--month", "2024-01"})

	assert.Error(t, cmd.Execute())
}

func TestImporter_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "nope.csv"), "--dry-run"})

	assert.Error(t, cmd.Execute())
}
