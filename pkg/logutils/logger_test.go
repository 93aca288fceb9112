package logutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Fallback(t *testing.T) {
	var buf bytes.Buffer

	l, closer, err := NewWithWriter("info", "", &buf)
	require.NoError(t, err)
	defer closer()

	l.Debug().Msg("hidden")
	l.Info().Str("cmp", "test").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"time":`)
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "marksync.log")

	l, closer, err := New("debug", file)
	require.NoError(t, err)
	l.Debug().Msg("to file")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New("loud", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}
