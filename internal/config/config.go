/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable configuration: the geometry
// pipeline settings, export defaults, server address, history database
// location and logging options. The file lives in the user scope as YAML;
// environment variables are read-only overrides at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the configuration surface recognized by every pipeline
// stage. One immutable snapshot of these values is captured per run.
type PipelineConfig struct {
	ExtrudeDepth      float64 `yaml:"extrude_depth"`      // > 0
	BevelThickness    float64 `yaml:"bevel_thickness"`    // >= 0
	CurveSegments     int     `yaml:"curve_segments"`     // >= 1
	SimplifyTolerance float64 `yaml:"simplify_tolerance"` // >= 0
	MergeDistance     float64 `yaml:"merge_distance"`     // > 0; weld tolerance
	ScaleMeters       float64 `yaml:"scale_meters"`       // > 0; longest final dimension
	MeshColor         string  `yaml:"mesh_color"`         // #rrggbb, rgb(), or SVG color name
	Wireframe         bool    `yaml:"wireframe"`
}

type ExportConfig struct {
	Format      string `yaml:"format"`       // "glb" or "gltf"
	DoubleSided bool   `yaml:"double_sided"` // preview material policy
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type HistoryConfig struct {
	Path string `yaml:"path"` // sqlite file; empty disables the conversion log
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	Pipeline      PipelineConfig `yaml:"pipeline"`
	Export        ExportConfig   `yaml:"export"`
	Server        ServerConfig   `yaml:"server"`
	History       HistoryConfig  `yaml:"history"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults. Depth and tolerances are in
// SVG user units; scale_meters sets the physical size of the exported model.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Pipeline: PipelineConfig{
			ExtrudeDepth:      10,
			BevelThickness:    0,
			CurveSegments:     12,
			SimplifyTolerance: 0,
			MergeDistance:     1e-4,
			ScaleMeters:       1,
			MeshColor:         "#c8c8c8",
			Wireframe:         false,
		},
		Export:  ExportConfig{Format: "glb", DoubleSided: false},
		Server:  ServerConfig{Addr: ":8080"},
		History: HistoryConfig{Path: ""},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvExtrudeDepth   = "S2G_EXTRUDE_DEPTH"
	EnvBevel          = "S2G_BEVEL_THICKNESS"
	EnvCurveSegments  = "S2G_CURVE_SEGMENTS"
	EnvSimplifyTol    = "S2G_SIMPLIFY_TOLERANCE"
	EnvMergeDistance  = "S2G_MERGE_DISTANCE"
	EnvScaleMeters    = "S2G_SCALE_METERS"
	EnvMeshColor      = "S2G_MESH_COLOR"
	EnvWireframe      = "S2G_WIREFRAME"
	EnvExportFormat   = "S2G_EXPORT_FORMAT"
	EnvDoubleSided    = "S2G_DOUBLE_SIDED"
	EnvServerAddr     = "S2G_ADDR"
	EnvHistoryPath    = "S2G_HISTORY_PATH"
	EnvLogLevel       = "S2G_LOG_LEVEL"
	EnvLogFormat      = "S2G_LOG_FORMAT"
	EnvLogSource      = "S2G_LOG_SOURCE"
	EnvLogFile        = "S2G_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "svg2gltf")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "svg2gltf")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "svg2gltf")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the pipeline settings ranges from the configuration
// contract. It returns the first violation found.
func (p PipelineConfig) Validate() error {
	switch {
	case !(p.ExtrudeDepth > 0):
		return fmt.Errorf("extrude_depth must be > 0, got %g", p.ExtrudeDepth)
	case p.BevelThickness < 0:
		return fmt.Errorf("bevel_thickness must be >= 0, got %g", p.BevelThickness)
	case p.CurveSegments < 1:
		return fmt.Errorf("curve_segments must be >= 1, got %d", p.CurveSegments)
	case p.SimplifyTolerance < 0:
		return fmt.Errorf("simplify_tolerance must be >= 0, got %g", p.SimplifyTolerance)
	case !(p.MergeDistance > 0):
		return fmt.Errorf("merge_distance must be > 0, got %g", p.MergeDistance)
	case !(p.ScaleMeters > 0):
		return fmt.Errorf("scale_meters must be > 0, got %g", p.ScaleMeters)
	}
	return nil
}

// Validate checks the export defaults.
func (e ExportConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(e.Format)) {
	case "glb", "gltf":
		return nil
	}
	return fmt.Errorf("export format must be glb or gltf, got %q", e.Format)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// pipeline: zero means "not set" for the positive-only knobs; booleans
	// and the >=0 knobs copy through so user choices persist
	if src.Pipeline.ExtrudeDepth > 0 {
		dst.Pipeline.ExtrudeDepth = src.Pipeline.ExtrudeDepth
	}
	if src.Pipeline.BevelThickness > 0 {
		dst.Pipeline.BevelThickness = src.Pipeline.BevelThickness
	}
	if src.Pipeline.CurveSegments > 0 {
		dst.Pipeline.CurveSegments = src.Pipeline.CurveSegments
	}
	if src.Pipeline.SimplifyTolerance > 0 {
		dst.Pipeline.SimplifyTolerance = src.Pipeline.SimplifyTolerance
	}
	if src.Pipeline.MergeDistance > 0 {
		dst.Pipeline.MergeDistance = src.Pipeline.MergeDistance
	}
	if src.Pipeline.ScaleMeters > 0 {
		dst.Pipeline.ScaleMeters = src.Pipeline.ScaleMeters
	}
	if strings.TrimSpace(src.Pipeline.MeshColor) != "" {
		dst.Pipeline.MeshColor = strings.TrimSpace(src.Pipeline.MeshColor)
	}
	dst.Pipeline.Wireframe = src.Pipeline.Wireframe
	// export
	if strings.TrimSpace(src.Export.Format) != "" {
		dst.Export.Format = strings.ToLower(strings.TrimSpace(src.Export.Format))
	}
	dst.Export.DoubleSided = src.Export.DoubleSided
	// server / history
	if strings.TrimSpace(src.Server.Addr) != "" {
		dst.Server.Addr = strings.TrimSpace(src.Server.Addr)
	}
	if strings.TrimSpace(src.History.Path) != "" {
		dst.History.Path = strings.TrimSpace(src.History.Path)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	setFloat := func(env string, dst *float64) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	setBool := func(env string, dst *bool) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			lv := strings.ToLower(v)
			*dst = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
		}
	}
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}

	setFloat(EnvExtrudeDepth, &cfg.Pipeline.ExtrudeDepth)
	setFloat(EnvBevel, &cfg.Pipeline.BevelThickness)
	if v := strings.TrimSpace(os.Getenv(EnvCurveSegments)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.CurveSegments = n
		}
	}
	setFloat(EnvSimplifyTol, &cfg.Pipeline.SimplifyTolerance)
	setFloat(EnvMergeDistance, &cfg.Pipeline.MergeDistance)
	setFloat(EnvScaleMeters, &cfg.Pipeline.ScaleMeters)
	setString(EnvMeshColor, &cfg.Pipeline.MeshColor)
	setBool(EnvWireframe, &cfg.Pipeline.Wireframe)

	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	setBool(EnvDoubleSided, &cfg.Export.DoubleSided)
	setString(EnvServerAddr, &cfg.Server.Addr)
	setString(EnvHistoryPath, &cfg.History.Path)

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	setBool(EnvLogSource, &cfg.Logging.Source)
	setString(EnvLogFile, &cfg.Logging.File)
}
