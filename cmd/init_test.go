package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestInitCmd_WritesMigrationSettings(t *testing.T) {
	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	t.Setenv("MOCKSHIFT_SANDBOX_FACTORY", "makeSandbox")

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init"})

	err = cmd.Execute()
	require.NoError(t, err)

	targetPath := filepath.Join(tempDir, configFileName)
	t.Cleanup(func() { _ = os.Remove(targetPath) })

	contents, err := os.ReadFile(targetPath)
	require.NoError(t, err)

	var written struct {
		Output string `yaml:"output"`
		Source struct {
			Module string `yaml:"module"`
		} `yaml:"source"`
		Sandbox struct {
			Factory string `yaml:"factory"`
			Module  string `yaml:"module"`
		} `yaml:"sandbox"`
		Assertions struct {
			ExactThrice bool `yaml:"exact_thrice"`
		} `yaml:"assertions"`
		Run struct {
			StrictImport bool `yaml:"strict_import"`
		} `yaml:"run"`
	}
	require.NoError(t, yaml.Unmarshal(contents, &written))

	// The file captures the effective settings, environment included.
	assert.Equal(t, defaultReportsDir, written.Output)
	assert.Equal(t, "sinon", written.Source.Module)
	assert.Equal(t, "makeSandbox", written.Sandbox.Factory)
	assert.Equal(t, "bolt/tests/utils/sandbox", written.Sandbox.Module)
	assert.False(t, written.Assertions.ExactThrice)
	assert.False(t, written.Run.StrictImport)
}

func TestInitCmd_ErrorsWhenFileExists(t *testing.T) {
	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	targetPath := filepath.Join(tempDir, configFileName)
	require.NoError(t, os.WriteFile(targetPath, []byte("existing: true\n"), 0o644))
	t.Cleanup(func() { _ = os.Remove(targetPath) })

	cmd := newRootCmd()
	cmd.AddCommand(newInitCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init"})

	err = cmd.Execute()
	require.Error(t, err)
}
