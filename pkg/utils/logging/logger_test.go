package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := InitLogger(Options{Env: "test", Dir: dir})
	require.NoError(t, err)

	logger.Debug("debug reaches the file", zap.String("shift_id", "s1"))
	_ = logger.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "debug reaches the file", entry["msg"])
	assert.Equal(t, "s1", entry["shift_id"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestInitLogger_DefaultsEnvName(t *testing.T) {
	dir := t.TempDir()

	_, err := InitLogger(Options{Dir: dir})
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "local_*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
