package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/pr-impact/cmd"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd(cmd.NewApp())

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"analyze", "show", "toggle", "progress", "query", "review", "version"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PR_IMPACT_STATE_DIR", t.TempDir())

	root := newRootCmd(cmd.NewApp())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "pr-impact version "+version+"\n", out.String())
}
