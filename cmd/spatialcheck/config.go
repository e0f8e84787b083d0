package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/check"
)

// runConfig is the YAML configuration for the run command. Flags override
// file values.
type runConfig struct {
	Rules  string        `yaml:"rules"`
	Layers []layerConfig `yaml:"layers"`

	IntersectionThreshold int     `yaml:"intersection_threshold"`
	AngleThresholdDeg     float64 `yaml:"angle_threshold_deg"`
	PercentTolerance      float64 `yaml:"percent_tolerance"`

	Surface struct {
		SidewalkLayer   string  `yaml:"sidewalk_layer"`
		RoadwayLayer    string  `yaml:"roadway_layer"`
		SidewalkSpacing float64 `yaml:"sidewalk_spacing"`
		RoadwaySpacing  float64 `yaml:"roadway_spacing"`
		FlatlandSpacing float64 `yaml:"flatland_spacing"`
	} `yaml:"surface"`

	HoleLayers []string `yaml:"hole_layers"`
}

type layerConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

func loadRunConfig(path string) (*runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var cfg runConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// checkConfig maps the file values onto the engine heuristics, leaving
// defaults where the file is silent.
func (c *runConfig) checkConfig() check.Config {
	cfg := check.DefaultConfig()
	if c.IntersectionThreshold > 0 {
		cfg.IntersectionThreshold = c.IntersectionThreshold
	}
	if c.AngleThresholdDeg > 0 {
		cfg.AngleThresholdDeg = c.AngleThresholdDeg
	}
	if c.PercentTolerance > 0 {
		cfg.PercentTolerance = c.PercentTolerance
	}
	cfg.Surface.SidewalkLayer = c.Surface.SidewalkLayer
	cfg.Surface.RoadwayLayer = c.Surface.RoadwayLayer
	if c.Surface.SidewalkSpacing > 0 {
		cfg.Surface.SidewalkSpacing = c.Surface.SidewalkSpacing
	}
	if c.Surface.RoadwaySpacing > 0 {
		cfg.Surface.RoadwaySpacing = c.Surface.RoadwaySpacing
	}
	if c.Surface.FlatlandSpacing > 0 {
		cfg.Surface.FlatlandSpacing = c.Surface.FlatlandSpacing
	}
	cfg.HoleLayers = c.HoleLayers
	return cfg
}

// parseLayerFlag splits a --layer name=path argument.
func parseLayerFlag(arg string) (layerConfig, error) {
	name, path, ok := strings.Cut(arg, "=")
	if !ok || name == "" || path == "" {
		return layerConfig{}, fmt.Errorf("bad --layer %q, want name=path", arg)
	}
	return layerConfig{Name: name, Path: path}, nil
}
