package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := LoadFrom(context.Background(), envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, Settings{
		Config:      "imgflow.yaml",
		Workflow:    "default",
		LogType:     "tint",
		LogLevel:    "info",
		Concurrency: 1,
	}, *s)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("IMGFLOW_CONFIG", "/etc/imgflow/flows.yml")
	t.Setenv("IMGFLOW_WORKFLOW", "blog")
	t.Setenv("IMGFLOW_LOG_TYPE", "json")
	t.Setenv("IMGFLOW_CONCURRENCY", "4")
	t.Setenv("IMGFLOW_STEP_TIMEOUT", "30s")
	t.Setenv("IMGFLOW_PLAIN", "true")

	s, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/etc/imgflow/flows.yml", s.Config)
	assert.Equal(t, "blog", s.Workflow)
	assert.Equal(t, "json", s.LogType)
	assert.Equal(t, 4, s.Concurrency)
	assert.Equal(t, 30*time.Second, s.StepTimeout)
	assert.True(t, s.Plain)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"IMGFLOW_CONCURRENCY": "many",
	}))
	assert.Error(t, err)
}

func TestLoad_ClampsConcurrency(t *testing.T) {
	s, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"IMGFLOW_CONCURRENCY": "0",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Concurrency)
}
