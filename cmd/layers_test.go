//go:build !integration

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naaf-labs/naaf-cli/internal/framework"
)

func TestFormatLayers(t *testing.T) {
	var buf bytes.Buffer
	formatLayers(&buf, framework.All())

	output := buf.String()
	assert.Contains(t, output, "LAYER")
	assert.Contains(t, output, "WEIGHT")
	assert.Contains(t, output, "power")
	assert.Contains(t, output, "20%")
	assert.Contains(t, output, "chips")
	assert.Contains(t, output, "adoption")
	assert.Contains(t, output, "10%")
}

func TestFormatTiers(t *testing.T) {
	var buf bytes.Buffer
	formatTiers(&buf, framework.Tiers())

	output := buf.String()
	assert.Contains(t, output, "Tier 1: Hegemon")
	assert.Contains(t, output, "80-100")
	assert.Contains(t, output, "Tier 2: Strategic Specialist")
	assert.Contains(t, output, "50-79")
	assert.Contains(t, output, "Tier 4: Consumer")
	assert.Contains(t, output, "0-29")
}
