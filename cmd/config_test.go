package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "mockshift", configBaseName)
	assert.Equal(t, "mockshift.yaml", configFileName)
	assert.Equal(t, ".mockshift-reports", defaultReportsDir)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "MOCKSHIFT", envPrefix)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestPipelineOptions_Defaults(t *testing.T) {
	opts := pipelineOptions()

	assert.Equal(t, "sinon", opts.SourceModule)
	assert.Equal(t, "createSandbox", opts.Passes.SandboxFactory)
	assert.Equal(t, "bolt/tests/utils/sandbox", opts.Passes.SandboxModule)
	assert.False(t, opts.Passes.ExactThrice)
}

func TestPipelineOptions_FromEnvironment(t *testing.T) {
	t.Setenv("MOCKSHIFT_SANDBOX_FACTORY", "makeSandbox")
	t.Setenv("MOCKSHIFT_ASSERTIONS_EXACT_THRICE", "true")

	opts := pipelineOptions()

	assert.Equal(t, "makeSandbox", opts.Passes.SandboxFactory)
	assert.True(t, opts.Passes.ExactThrice)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo), tt.value)
	}
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "test.log")

	configureLogger(logPath, true)
	require.NotNil(t, globalLogger)

	slog.Debug("debug line", "key", "value")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "debug line")
	assert.Contains(t, string(contents), "key=value")
}
