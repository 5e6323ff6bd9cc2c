package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mockshift.dev/pkg/mockshift/internal/domain"
	m "mockshift.dev/pkg/mockshift/internal/model"
)

func TestViewCmd_ShowsReportOfPreviousRun(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.test.js"), []byte(sinonTestSource), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.test.js"), []byte("it('works', () => {});\n"), 0o600))

	run, _ := newLocalRootCmd(t, newRunCmd())
	run.SetArgs([]string{"run", "./..."})
	require.NoError(t, run.Execute())

	cmd, out := newLocalRootCmd(t, newViewCmd())
	cmd.SetArgs([]string{"view"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "a.test.js")
	assert.Contains(t, out.String(), "plain.test.js")
	assert.Contains(t, out.String(), "migrated")
	assert.Contains(t, out.String(), "skipped")
}

func TestViewCmd_ReportsDirFromEnvironment(t *testing.T) {
	t.Setenv("MOCKSHIFT_OUTPUT", "./ci-reports")

	cmd, mockWorkflow := newTestRootCmd(t, newViewCmd())

	mockWorkflow.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Reports == m.Path("./ci-reports")
	})).Return(nil)

	cmd.SetArgs([]string{"view"})
	require.NoError(t, cmd.Execute())
}

func TestViewCmd_MissingReportsFail(t *testing.T) {
	chdirTemp(t)

	cmd, _ := newLocalRootCmd(t, newViewCmd())
	cmd.SetArgs([]string{"view"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), defaultReportsDir)
}

func TestViewCmd_PositionalArgsAreRejected(t *testing.T) {
	cmd, _ := newTestRootCmd(t, newViewCmd())

	cmd.SetArgs([]string{"view", "./custom-reports"})
	require.Error(t, cmd.Execute())
}
