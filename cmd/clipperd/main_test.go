package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clipperai/config"
)

func TestApplyOverrides(t *testing.T) {
	cfg := config.Config{Port: "8080", OutputDir: "output"}

	out := applyOverrides(cfg, "", "")
	assert.Equal(t, "8080", out.Port)
	assert.Equal(t, "output", out.OutputDir)

	out = applyOverrides(cfg, "9090", "clips")
	assert.Equal(t, "9090", out.Port)
	assert.Equal(t, "clips", out.OutputDir)

	out = applyOverrides(cfg, "9090", "")
	assert.Equal(t, "9090", out.Port)
	assert.Equal(t, "output", out.OutputDir, "unset flags keep env values")
}
