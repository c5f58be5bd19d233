package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stroniax/rabbit-eye/internal/config"
)

func bound(t *testing.T, args ...string) *config.Config {
	t.Helper()
	var c config.Config
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.Bind(flags)
	require.NoError(t, flags.Parse(args))
	return &c
}

func TestDefaultsMatchSpec(t *testing.T) {
	c := bound(t)
	assert.Equal(t, 5*time.Second, c.Interval)
	assert.Equal(t, config.AbortPrevious, c.OverlapBehavior)
	assert.Equal(t, ".", c.Root)
	assert.False(t, c.Recursive)
	assert.False(t, c.IncludeChildChanges)
	assert.Equal(t, 5*time.Second, c.GracePeriod)
	assert.Equal(t, "rabbit-eye-dev", c.Queue)
}

func TestPreflightRejectsEmptyRoot(t *testing.T) {
	c := bound(t, "--root=")
	assert.Error(t, c.Preflight())
}

func TestPreflightRejectsNonPositiveInterval(t *testing.T) {
	c := bound(t, "--interval=0s")
	assert.Error(t, c.Preflight())
}

func TestPreflightRejectsUnrecognizedOverlapBehavior(t *testing.T) {
	c := bound(t, "--overlapBehavior=Bogus")
	assert.Error(t, c.Preflight())
}

func TestPreflightRejectsUnimplementedOverlapBehavior(t *testing.T) {
	c := bound(t, "--overlapBehavior=SkipNew")
	assert.Error(t, c.Preflight())
}

func TestPreflightRejectsMissingBrokerUrlUnlessConsole(t *testing.T) {
	c := bound(t, "--brokerUrl=")
	assert.Error(t, c.Preflight())

	c2 := bound(t, "--brokerUrl=", "--console")
	assert.NoError(t, c2.Preflight())
}

func TestPreflightAcceptsDefaults(t *testing.T) {
	c := bound(t)
	assert.NoError(t, c.Preflight())
}
