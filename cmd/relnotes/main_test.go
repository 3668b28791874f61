package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/relnotes-go/internal/config"
	"github.com/quantmind-br/relnotes-go/internal/registry"
	"github.com/quantmind-br/relnotes-go/internal/utils"
)

func TestInitConfig(t *testing.T) {
	for _, file := range []string{"", "/test/config.yaml"} {
		cfgFile = file
		assert.NotPanics(t, initConfig)
	}
	cfgFile = ""
}

func TestRootCmdStructure(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"compile", "products", "versions", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCompileCmdFlags(t *testing.T) {
	for _, name := range []string{
		"from", "to", "include-prereleases", "output", "concurrency",
		"model", "no-cache", "cache-ttl", "timeout", "user-agent", "no-pr-links",
	} {
		assert.NotNil(t, compileCmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	from := compileCmd.Flags().Lookup("from")
	require.NotNil(t, from)
	assert.Contains(t, from.Annotations, cobraRequiredAnnotation)
}

// cobra marks required flags with this annotation key.
const cobraRequiredAnnotation = "cobra_annotation_bash_completion_one_required_flag"

func TestVersionsCmdArgs(t *testing.T) {
	assert.Error(t, versionsCmd.Args(versionsCmd, nil))
	assert.NoError(t, versionsCmd.Args(versionsCmd, []string{"elasticsearch"}))
}

func TestNewMapper(t *testing.T) {
	cfg := config.Default()

	cfg.Concurrency.Model = "pool"
	_, ok := newMapper(cfg).(*utils.PoolMapper)
	assert.True(t, ok)

	cfg.Concurrency.Model = "semaphore"
	_, ok = newMapper(cfg).(*utils.SemaphoreMapper)
	assert.True(t, ok)
}

func TestDisplayNames(t *testing.T) {
	names := displayNames(registry.Default())

	assert.Equal(t, "Elasticsearch", names["elasticsearch"])
	assert.Equal(t, "Kibana", names["kibana"])
}
