// Package config handles probe configuration loading and management.
package config

import (
	"fmt"
)

// Index kinds accepted by MeshConfig.Index.
const (
	IndexAABB   = "aabb"
	IndexLinear = "linear"
)

// Config holds all probe settings.
type Config struct {
	Mesh     MeshConfig     `yaml:"mesh"`
	Normals  NormalsConfig  `yaml:"normals"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Sampling SamplingConfig `yaml:"sampling"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MeshConfig controls how the query structure is built.
type MeshConfig struct {
	Index          string  `yaml:"index"`           // aabb or linear
	LeafSize       int     `yaml:"leaf_size"`       // max triangles per AABB leaf
	SignedDistance bool    `yaml:"signed_distance"` // enable inside/outside queries
	GroundOffset   float64 `yaml:"ground_offset"`   // added to the computed ground level
	Resolution     int     `yaml:"resolution"`      // marching cubes cells for generated models
}

// NormalsConfig holds normal estimation settings.
type NormalsConfig struct {
	EdgeEpsilon float64 `yaml:"edge_epsilon"` // min distance from triangle edges
	Workers     int     `yaml:"workers"`      // 0 means GOMAXPROCS
}

// ClusterConfig holds support point clustering settings.
type ClusterConfig struct {
	Distance  float64 `yaml:"distance"`
	MaxPoints int     `yaml:"max_points"` // 0 means unbounded
}

// SamplingConfig controls candidate support point generation.
type SamplingConfig struct {
	Step       float64 `yaml:"step"`        // XY grid spacing for probe rays
	HeadRadius float64 `yaml:"head_radius"` // head front radius of generated points
}

// OutputConfig holds optional debug output paths.
type OutputConfig struct {
	OBJPath    string `yaml:"obj_path"`
	PlotPath   string `yaml:"plot_path"`
	PointsPath string `yaml:"points_path"` // msgpack-encoded support points
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Index:      IndexAABB,
			LeafSize:   4,
			Resolution: 120,
		},
		Normals: NormalsConfig{
			EdgeEpsilon: 0.05,
		},
		Cluster: ClusterConfig{
			Distance:  4.0,
			MaxPoints: 0,
		},
		Sampling: SamplingConfig{
			Step:       2.0,
			HeadRadius: 0.4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that would make a run meaningless.
func (c *Config) Validate() error {
	switch c.Mesh.Index {
	case IndexAABB, IndexLinear:
	default:
		return fmt.Errorf("mesh.index %q: want %q or %q", c.Mesh.Index, IndexAABB, IndexLinear)
	}
	if c.Mesh.LeafSize < 1 {
		return fmt.Errorf("mesh.leaf_size must be positive, got %d", c.Mesh.LeafSize)
	}
	if c.Normals.EdgeEpsilon < 0 {
		return fmt.Errorf("normals.edge_epsilon must not be negative, got %g", c.Normals.EdgeEpsilon)
	}
	if c.Cluster.Distance <= 0 {
		return fmt.Errorf("cluster.distance must be positive, got %g", c.Cluster.Distance)
	}
	if c.Cluster.MaxPoints < 0 {
		return fmt.Errorf("cluster.max_points must not be negative, got %d", c.Cluster.MaxPoints)
	}
	if c.Sampling.Step <= 0 {
		return fmt.Errorf("sampling.step must be positive, got %g", c.Sampling.Step)
	}
	return nil
}
