package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdBindsConfigAndLogFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"root", "interval", "recursive", "brokerUrl", "queue", "logLevel", "logJson"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "expected flag %q to be bound", name)
	}
}

func TestRootCmdRejectsInvalidConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--root="})
	err := cmd.Execute()
	assert.Error(t, err)
}
