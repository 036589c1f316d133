package commands

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenz1481/web-deployment-website/config"
)

func TestRootHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["sweep"])
}

func TestCommandsSurfaceConfigErrors(t *testing.T) {
	orig := loadConfig
	defer func() { loadConfig = orig }()
	loadConfig = func() (*config.Config, error) { return nil, errors.New("PORT is required") }

	for _, name := range []string{"migrate", "sweep", "serve"} {
		rootCmd.SetArgs([]string{name})
		err := rootCmd.Execute()
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "PORT is required")
	}
}

func TestNewJanitorUsesConfig(t *testing.T) {
	cfg := &config.Config{
		Pipeline: config.PipelineConfig{StagingDir: "s", UploadsDir: "u"},
		Janitor:  config.JanitorConfig{Schedule: "not a schedule", MaxAge: time.Hour},
	}
	j := newJanitor(cfg, nil)
	assert.Error(t, j.Start())
}
