package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestRead_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0o644))

	got, err := Read[item](path)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

func TestRead_Stdin(t *testing.T) {
	old := Stdin
	Stdin = strings.NewReader(`[{"name":"a"},{"name":"b"}]`)
	t.Cleanup(func() { Stdin = old })

	got, err := Read[[]item]("-")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read[item](filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = Read[item](path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode JSON")
}

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, item{Name: "a"}))
	require.NoError(t, WriteLine(&buf, item{Name: "b"}))

	assert.Equal(t, "{\"name\":\"a\"}\n{\"name\":\"b\"}\n", buf.String())
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteError(&buf, "boom", map[string]any{"file": "x.md"}))

	var got Error
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "boom", got.Message)
	assert.Equal(t, "x.md", got.Data["file"])
}
