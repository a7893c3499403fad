/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// settingsSchema validates the JSON settings payload accepted by the HTTP
// conversion endpoint. All fields are optional; present fields overlay the
// configured defaults.
const settingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "extrudeDepth":      {"type": "number", "exclusiveMinimum": 0},
    "bevelThickness":    {"type": "number", "minimum": 0},
    "curveSegments":     {"type": "integer", "minimum": 1},
    "simplifyTolerance": {"type": "number", "minimum": 0},
    "mergeDistance":     {"type": "number", "exclusiveMinimum": 0},
    "scaleMeters":       {"type": "number", "exclusiveMinimum": 0},
    "meshColor":         {"type": "string", "minLength": 1},
    "wireframe":         {"type": "boolean"},
    "format":            {"type": "string", "enum": ["glb", "gltf"]},
    "doubleSided":       {"type": "boolean"}
  }
}`

// SettingsPayload mirrors the JSON settings document.
type SettingsPayload struct {
	ExtrudeDepth      *float64 `json:"extrudeDepth,omitempty"`
	BevelThickness    *float64 `json:"bevelThickness,omitempty"`
	CurveSegments     *int     `json:"curveSegments,omitempty"`
	SimplifyTolerance *float64 `json:"simplifyTolerance,omitempty"`
	MergeDistance     *float64 `json:"mergeDistance,omitempty"`
	ScaleMeters       *float64 `json:"scaleMeters,omitempty"`
	MeshColor         *string  `json:"meshColor,omitempty"`
	Wireframe         *bool    `json:"wireframe,omitempty"`
	Format            *string  `json:"format,omitempty"`
	DoubleSided       *bool    `json:"doubleSided,omitempty"`
}

// ParseSettingsJSON validates raw JSON against the settings schema and
// decodes it. Validation failures are joined into a single error so the
// caller can surface every violation at once.
func ParseSettingsJSON(raw []byte) (SettingsPayload, error) {
	var p SettingsPayload
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(settingsSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return p, fmt.Errorf("validate settings: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return p, fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode settings: %w", err)
	}
	return p, nil
}

// Apply overlays the payload's present fields onto a config copy and
// returns it. The receiver is not modified.
func (p SettingsPayload) Apply(cfg AppConfig) AppConfig {
	if p.ExtrudeDepth != nil {
		cfg.Pipeline.ExtrudeDepth = *p.ExtrudeDepth
	}
	if p.BevelThickness != nil {
		cfg.Pipeline.BevelThickness = *p.BevelThickness
	}
	if p.CurveSegments != nil {
		cfg.Pipeline.CurveSegments = *p.CurveSegments
	}
	if p.SimplifyTolerance != nil {
		cfg.Pipeline.SimplifyTolerance = *p.SimplifyTolerance
	}
	if p.MergeDistance != nil {
		cfg.Pipeline.MergeDistance = *p.MergeDistance
	}
	if p.ScaleMeters != nil {
		cfg.Pipeline.ScaleMeters = *p.ScaleMeters
	}
	if p.MeshColor != nil {
		cfg.Pipeline.MeshColor = *p.MeshColor
	}
	if p.Wireframe != nil {
		cfg.Pipeline.Wireframe = *p.Wireframe
	}
	if p.Format != nil {
		cfg.Export.Format = *p.Format
	}
	if p.DoubleSided != nil {
		cfg.Export.DoubleSided = *p.DoubleSided
	}
	return cfg
}
