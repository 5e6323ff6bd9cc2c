package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mockshift.dev/pkg/mockshift/internal/domain"
	m "mockshift.dev/pkg/mockshift/internal/model"
)

func TestListCmd_PassesPathsAndExcludes(t *testing.T) {
	cmd, mockWorkflow := newTestRootCmd(t, newListCmd())

	mockWorkflow.On("List", mock.Anything, mock.MatchedBy(func(args domain.ListArgs) bool {
		return len(args.Paths) == 1 &&
			args.Paths[0] == m.Path("./src/...") &&
			len(args.Exclude) == 1 &&
			args.Exclude[0] == "legacy"
	})).Return(nil)

	cmd.SetArgs([]string{"list", "-x", "legacy", "./src/..."})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestNewListCmd(t *testing.T) {
	cmd := newListCmd()

	assert.Equal(t, "list [paths...]", cmd.Use)
	assert.Equal(t, listLongDescription, cmd.Long)
}
