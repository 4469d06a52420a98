package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineageCommand(t *testing.T) {
	cmd := NewLineageCommand()
	assert.Equal(t, "lineage", cmd.Use)

	for _, flag := range []string{"dataset", "job", "direction", "depth", "schema", "output"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
	assert.Equal(t, "both", cmd.Flags().Lookup("direction").DefValue)
	assert.Equal(t, "3", cmd.Flags().Lookup("depth").DefValue)
}

func TestNewImpactCommand(t *testing.T) {
	cmd := NewImpactCommand()
	assert.Contains(t, cmd.Use, "impact")
	require.NotNil(t, cmd.Args)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"production.customers"}))
}

func TestNewExportCommand(t *testing.T) {
	cmd := NewExportCommand()
	assert.Equal(t, "export", cmd.Use)
	assert.Equal(t, "json", cmd.Flags().Lookup("format").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("out"))
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "today", "abc123")
	assert.Equal(t, "version", cmd.Use)
}
