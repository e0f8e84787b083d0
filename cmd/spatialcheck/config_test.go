package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `rules: rules.csv
layers:
  - name: roads
    path: roads.fgb
  - name: zones
    path: zones.fgb
intersection_threshold: 4
angle_threshold_deg: 25
surface:
  sidewalk_layer: sidewalk
  flatland_spacing: 30
hole_layers: [ponds, lakes]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "rules.csv", cfg.Rules)
	require.Len(t, cfg.Layers, 2)
	assert.Equal(t, layerConfig{Name: "roads", Path: "roads.fgb"}, cfg.Layers[0])

	cc := cfg.checkConfig()
	assert.Equal(t, 4, cc.IntersectionThreshold)
	assert.Equal(t, 25.0, cc.AngleThresholdDeg)
	assert.Equal(t, "sidewalk", cc.Surface.SidewalkLayer)
	assert.Equal(t, 30.0, cc.Surface.FlatlandSpacing)
	// Values the file is silent on keep their defaults.
	assert.Equal(t, 0.01, cc.PercentTolerance)
	assert.Equal(t, 10.0, cc.Surface.SidewalkSpacing)
	assert.Equal(t, []string{"ponds", "lakes"}, cc.HoleLayers)
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	_, err := loadRunConfig("/nonexistent/run.yaml")
	assert.Error(t, err)
}

func TestParseLayerFlag(t *testing.T) {
	lc, err := parseLayerFlag("roads=data/roads.fgb")
	require.NoError(t, err)
	assert.Equal(t, layerConfig{Name: "roads", Path: "data/roads.fgb"}, lc)

	for _, bad := range []string{"roads", "=path", "roads=", ""} {
		_, err := parseLayerFlag(bad)
		assert.Error(t, err, bad)
	}
}
