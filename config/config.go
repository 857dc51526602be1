// Package config defines the field geometry and every tunable used by planning and control,
// and loads them from JSON files with partial overrides on top of the defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// maxFileSize caps how much of a config file is read.
const maxFileSize = 1 << 20

// Config is one immutable snapshot of the static configuration. Components read it through a
// Store and must not modify it.
type Config struct {
	Field   FieldConfig   `json:"field"`
	Planner PlannerConfig `json:"planner"`
	Control ControlConfig `json:"control"`
	Motion  MotionConfig  `json:"motion"`
}

// MotionConfig tunes the service that ties planning and control together.
type MotionConfig struct {
	// StaleAfter drops robots from the obstacle set once they have not been seen for this long.
	// Zero disables the filter.
	StaleAfter time.Duration `json:"stale_after"`
	// PlanWorkerIdle is how long a per-robot planning worker waits for work before exiting.
	PlanWorkerIdle time.Duration `json:"plan_worker_idle"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Field:   DefaultField(),
		Planner: DefaultPlanner(),
		Control: DefaultControl(),
		Motion: MotionConfig{
			StaleAfter:     500 * time.Millisecond,
			PlanWorkerIdle: 5 * time.Second,
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Control.DistanceTable = append([]Breakpoint(nil), c.Control.DistanceTable...)
	out.Control.NeighborTable = append([]Breakpoint(nil), c.Control.NeighborTable...)
	if c.Control.RobotScales != nil {
		out.Control.RobotScales = make(map[string]float64, len(c.Control.RobotScales))
		for k, v := range c.Control.RobotScales {
			out.Control.RobotScales[k] = v
		}
	}
	return &out
}

// Validate checks every section and returns all problems found.
func (c *Config) Validate() error {
	return errors.Wrap(combine(
		c.Field.Validate(),
		c.Planner.Validate(),
		c.Control.Validate(),
		positiveDuration("motion.plan_worker_idle", c.Motion.PlanWorkerIdle),
	), "invalid configuration")
}

// Load reads a JSON file and applies it over Default. Fields omitted from the file keep their
// default values; slices and maps present in the file replace the default ones.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if info.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse applies JSON data over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	var attributes map[string]interface{}
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}

	cfg := Default()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     cfg,
		Metadata:   &md,
		ZeroFields: true,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if len(md.Unused) > 0 {
		return nil, errors.Errorf("unknown config keys: %v", md.Unused)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MarshalIndent renders c as indented JSON with durations as strings, which Load accepts.
func MarshalIndent(c *Config) ([]byte, error) {
	var generic map[string]interface{}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	if motion, ok := generic["motion"].(map[string]interface{}); ok {
		motion["stale_after"] = c.Motion.StaleAfter.String()
		motion["plan_worker_idle"] = c.Motion.PlanWorkerIdle.String()
	}
	return json.MarshalIndent(generic, "", "  ")
}
