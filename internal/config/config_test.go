/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Pipeline.Validate(); err != nil {
		t.Fatalf("default pipeline settings invalid: %v", err)
	}
	if err := cfg.Export.Validate(); err != nil {
		t.Fatalf("default export settings invalid: %v", err)
	}
}

func TestPipelineValidateRejectsBadRanges(t *testing.T) {
	cases := []func(*PipelineConfig){
		func(p *PipelineConfig) { p.ExtrudeDepth = 0 },
		func(p *PipelineConfig) { p.BevelThickness = -1 },
		func(p *PipelineConfig) { p.CurveSegments = 0 },
		func(p *PipelineConfig) { p.SimplifyTolerance = -0.1 },
		func(p *PipelineConfig) { p.MergeDistance = 0 },
		func(p *PipelineConfig) { p.ScaleMeters = -1 },
	}
	for i, mutate := range cases {
		p := Defaults().Pipeline
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestMergeIntoOverlaysFileValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	if err := yaml.Unmarshal([]byte("pipeline:\n  extrude_depth: 5\n  mesh_color: '#ff0000'\nexport:\n  format: GLTF\n"), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	mergeInto(&dst, &src)
	if dst.Pipeline.ExtrudeDepth != 5 {
		t.Fatalf("extrude_depth not merged: %g", dst.Pipeline.ExtrudeDepth)
	}
	if dst.Pipeline.MeshColor != "#ff0000" {
		t.Fatalf("mesh_color not merged: %q", dst.Pipeline.MeshColor)
	}
	if dst.Export.Format != "gltf" {
		t.Fatalf("format not normalized: %q", dst.Export.Format)
	}
	// untouched knobs keep defaults
	if dst.Pipeline.CurveSegments != Defaults().Pipeline.CurveSegments {
		t.Fatalf("curve_segments changed unexpectedly")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvExtrudeDepth, "2.5")
	t.Setenv(EnvCurveSegments, "7")
	t.Setenv(EnvWireframe, "yes")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Pipeline.ExtrudeDepth != 2.5 || cfg.Pipeline.CurveSegments != 7 || !cfg.Pipeline.Wireframe {
		t.Fatalf("env overrides not applied: %+v", cfg.Pipeline)
	}
}

func TestParseSettingsJSON(t *testing.T) {
	p, err := ParseSettingsJSON([]byte(`{"extrudeDepth": 3, "format": "gltf", "doubleSided": true}`))
	if err != nil {
		t.Fatalf("parse valid payload: %v", err)
	}
	cfg := p.Apply(Defaults())
	if cfg.Pipeline.ExtrudeDepth != 3 || cfg.Export.Format != "gltf" || !cfg.Export.DoubleSided {
		t.Fatalf("payload not applied: %+v", cfg)
	}
}

func TestParseSettingsJSONRejectsViolations(t *testing.T) {
	bad := [][]byte{
		[]byte(`{"extrudeDepth": 0}`),
		[]byte(`{"curveSegments": 0}`),
		[]byte(`{"format": "stl"}`),
		[]byte(`{"unknown": 1}`),
	}
	for _, raw := range bad {
		if _, err := ParseSettingsJSON(raw); err == nil {
			t.Fatalf("expected schema violation for %s", raw)
		}
	}
}
