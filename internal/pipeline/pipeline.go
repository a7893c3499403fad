/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pipeline turns a parsed SVG document into one merged, welded and
// placed 3D mesh. A run is synchronous and operates on an immutable
// settings snapshot; a failing shape is skipped and counted, it never
// aborts the run.
package pipeline

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/extrude"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
	applog "github.com/atticusofsparta/svg-2-gltf-webapp/internal/log"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/mesh"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/svg"
)

// Settings is the validated per-run snapshot of the pipeline configuration.
type Settings struct {
	ExtrudeDepth      float64
	BevelThickness    float64
	CurveSegments     int
	SimplifyTolerance float64
	MergeDistance     float64
	ScaleMeters       float64
	MeshColor         color.RGBA
	Wireframe         bool
}

// SettingsFrom validates a pipeline configuration and captures it as a run
// snapshot, resolving the mesh color string.
func SettingsFrom(cfg config.PipelineConfig) (Settings, error) {
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	col, ok := svg.ParseColor(cfg.MeshColor)
	if !ok {
		return Settings{}, fmt.Errorf("pipeline: unparsable mesh color %q", cfg.MeshColor)
	}
	return Settings{
		ExtrudeDepth:      cfg.ExtrudeDepth,
		BevelThickness:    cfg.BevelThickness,
		CurveSegments:     cfg.CurveSegments,
		SimplifyTolerance: cfg.SimplifyTolerance,
		MergeDistance:     cfg.MergeDistance,
		ScaleMeters:       cfg.ScaleMeters,
		MeshColor:         col,
		Wireframe:         cfg.Wireframe,
	}, nil
}

// Result is the outcome of one run.
type Result struct {
	Mesh *mesh.Fragment
	// Shapes counts successfully extruded solids, Skipped those dropped
	// because their geometry failed to tessellate.
	Shapes  int
	Skipped int

	Vertices  int
	Triangles int

	MeshColor   color.RGBA
	Wireframe   bool
	FinalDepth  float64 // extrusion thickness after scaling, along the up axis
	ScaleFactor float64
}

// Run executes the full conversion: per record, fills become outlines with
// holes and strokes become flat ribbons; each cross-section is simplified
// and extruded; the fragments are merged, welded and cleaned; the merged
// mesh is recentered, scaled and laid on the ground plane. A document with
// no usable geometry yields an empty Result, not an error.
func Run(settings Settings, doc *svg.Document) (*Result, error) {
	log := applog.WithOperation(applog.WithComponent("pipeline"), "run")

	res := &Result{
		Mesh:      &mesh.Fragment{},
		MeshColor: settings.MeshColor,
		Wireframe: settings.Wireframe,
	}
	if doc == nil || len(doc.Records) == 0 {
		res.ScaleFactor = 1
		return res, nil
	}

	opts := extrude.Options{
		Depth:        settings.ExtrudeDepth,
		Bevel:        settings.BevelThickness,
		Quantization: settings.MergeDistance / 1000,
	}

	var fragments []*mesh.Fragment
	for _, rec := range doc.Records {
		for _, outline := range svg.ExtractOutlines(rec) {
			frag := extrudeShape(outline.Simplify(settings.SimplifyTolerance), opts)
			if frag == nil || frag.Empty() {
				res.Skipped++
				log.Warn("shape skipped", slog.String("id", rec.ID), slog.String("kind", "fill"))
				continue
			}
			res.Shapes++
			fragments = append(fragments, frag)
		}
		for _, stroke := range svg.ExtractStrokes(rec) {
			frag := extrudeStroke(stroke, settings, opts)
			if frag == nil || frag.Empty() {
				res.Skipped++
				log.Warn("shape skipped", slog.String("id", rec.ID), slog.String("kind", "stroke"))
				continue
			}
			res.Shapes++
			fragments = append(fragments, frag)
		}
	}

	if len(fragments) == 0 {
		res.ScaleFactor = 1
		return res, nil
	}

	merged := mesh.Merge(fragments)
	if merged == nil || merged.Empty() {
		return nil, fmt.Errorf("pipeline: merge produced no mesh from %d fragments", len(fragments))
	}
	merged.Unindex()
	merged.Weld(settings.MergeDistance)
	merged.RemoveDegenerates(mesh.MinTriangleArea)
	if merged.Empty() {
		return nil, fmt.Errorf("pipeline: all %d merged triangles were degenerate", len(fragments))
	}
	merged.ComputeNormals()

	res.ScaleFactor = finalize(merged, settings)
	res.FinalDepth = settings.ExtrudeDepth * res.ScaleFactor
	res.Mesh = merged
	res.Vertices = len(merged.Positions)
	res.Triangles = merged.TriangleCount()
	log.Info("run complete",
		slog.Int("shapes", res.Shapes),
		slog.Int("skipped", res.Skipped),
		slog.Int("vertices", res.Vertices),
		slog.Int("triangles", res.Triangles))
	return res, nil
}

// extrudeShape extrudes one fill outline. Tessellation of hostile input can
// panic deep inside the sweep; the recover turns that into a skipped shape.
func extrudeShape(outline geom.Outline, opts extrude.Options) (frag *mesh.Fragment) {
	defer func() {
		if recover() != nil {
			frag = nil
		}
	}()
	return extrude.Extrude(outline, opts)
}

// extrudeStroke converts one stroke to a flat ribbon and extrudes it.
// Closed strokes produce an annulus cross-section and go through the solid
// extruder; open ribbons may self-touch, so they use the boundary-edge
// extruder instead. Bevels apply to fills only.
func extrudeStroke(st svg.Stroke, settings Settings, opts extrude.Options) (frag *mesh.Fragment) {
	defer func() {
		if recover() != nil {
			frag = nil
		}
	}()
	pts := st.Points
	if st.Closed {
		pts = append(append([]geom.Vec2{}, pts...), pts[0])
	}
	pts = geom.Simplify(pts, settings.SimplifyTolerance)

	style := extrude.StrokeStyle{
		Width:      st.Width,
		Cap:        capStyle(st.Cap),
		Join:       joinStyle(st.Join),
		MiterLimit: st.MiterLimit,
		Segments:   settings.CurveSegments,
	}
	ribbon := extrude.StrokeRibbon(pts, style)
	if len(ribbon.Outer) < 3 {
		return nil
	}
	opts.Bevel = 0
	if len(ribbon.Holes) > 0 {
		return extrude.Extrude(ribbon, opts)
	}
	return extrude.ExtrudeRibbon(ribbon.Outer, opts)
}

func capStyle(s string) extrude.CapStyle {
	switch s {
	case "round":
		return extrude.CapRound
	case "square":
		return extrude.CapSquare
	}
	return extrude.CapButt
}

func joinStyle(s string) extrude.JoinStyle {
	switch s {
	case "round":
		return extrude.JoinRound
	case "bevel":
		return extrude.JoinBevel
	}
	return extrude.JoinMiter
}

// finalize recenters the mesh at the origin, scales its longest dimension
// to scaleMeters, flips Y to undo the SVG's downward axis and rotates the
// solid onto the ground plane, resting on it. Returns the applied scale.
func finalize(m *mesh.Fragment, settings Settings) float64 {
	lo, hi := m.Bounds()
	center := lo.Add(hi).Scale(0.5)
	m.Translate(center.Scale(-1))

	ext := hi.Sub(lo)
	maxDim := ext.X
	if ext.Y > maxDim {
		maxDim = ext.Y
	}
	if ext.Z > maxDim {
		maxDim = ext.Z
	}
	scale := 1.0
	if maxDim > 0 {
		scale = settings.ScaleMeters / maxDim
	}
	m.Scale(scale)

	m.FlipY()
	m.RotateX90()
	// the extrusion axis now points up; rest the solid on Y=0
	m.Translate(mesh.Vec3{Y: settings.ExtrudeDepth * scale / 2})
	return scale
}
