/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pipeline

import (
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/config"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/svg"
)

func testSettings(t *testing.T) Settings {
	t.Helper()
	s, err := SettingsFrom(config.Defaults().Pipeline)
	if err != nil {
		t.Fatalf("SettingsFrom(defaults): %v", err)
	}
	return s
}

func parseDoc(t *testing.T, src string) *svg.Document {
	t.Helper()
	doc, err := svg.Parse(strings.NewReader(src), 12)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestSettingsFrom(t *testing.T) {
	s := testSettings(t)
	if s.MeshColor != (color.RGBA{R: 200, G: 200, B: 200, A: 255}) {
		t.Fatalf("default mesh color = %v", s.MeshColor)
	}

	bad := config.Defaults().Pipeline
	bad.MeshColor = "not-a-color"
	if _, err := SettingsFrom(bad); err == nil {
		t.Fatalf("unparsable color accepted")
	}

	bad = config.Defaults().Pipeline
	bad.ExtrudeDepth = 0
	if _, err := SettingsFrom(bad); err == nil {
		t.Fatalf("zero depth accepted")
	}
}

func TestRunEmptyDocument(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`)
	res, err := Run(testSettings(t), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Mesh.Empty() || res.Shapes != 0 || res.Skipped != 0 {
		t.Fatalf("empty doc produced %d shapes, %d skipped", res.Shapes, res.Skipped)
	}
	if res.ScaleFactor != 1 {
		t.Fatalf("empty doc scale factor = %g", res.ScaleFactor)
	}

	res, err = Run(testSettings(t), nil)
	if err != nil {
		t.Fatalf("Run(nil): %v", err)
	}
	if !res.Mesh.Empty() {
		t.Fatalf("nil doc produced a mesh")
	}
}

const squareDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M0 0 H10 V10 H0 Z"/>
</svg>`

func TestRunSquareBecomesCube(t *testing.T) {
	res, err := Run(testSettings(t), parseDoc(t, squareDoc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 1 || res.Skipped != 0 {
		t.Fatalf("shapes=%d skipped=%d", res.Shapes, res.Skipped)
	}
	// a 10x10 square extruded 10 deep is a cube
	if res.Vertices != 8 {
		t.Fatalf("got %d vertices, want 8", res.Vertices)
	}
	if res.Triangles != 12 {
		t.Fatalf("got %d triangles, want 12", res.Triangles)
	}
}

func TestRunPlacement(t *testing.T) {
	s := testSettings(t)
	res, err := Run(s, parseDoc(t, squareDoc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lo, hi := res.Mesh.Bounds()

	// longest dimension scaled to scale_meters
	maxDim := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	if math.Abs(maxDim-s.ScaleMeters) > 1e-9 {
		t.Fatalf("max dimension = %g, want %g", maxDim, s.ScaleMeters)
	}
	// resting on the ground plane, centered in X and Z
	if math.Abs(lo.Y) > 1e-9 {
		t.Fatalf("bottom at Y=%g, want 0", lo.Y)
	}
	if math.Abs(hi.Y-res.FinalDepth) > 1e-9 {
		t.Fatalf("top at Y=%g, want %g", hi.Y, res.FinalDepth)
	}
	if math.Abs(lo.X+hi.X) > 1e-9 || math.Abs(lo.Z+hi.Z) > 1e-9 {
		t.Fatalf("not centered: X [%g,%g], Z [%g,%g]", lo.X, hi.X, lo.Z, hi.Z)
	}
}

func TestRunAdjacentSquaresWeldSharedEdge(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10">
  <path d="M0 0 H10 V10 H0 Z"/>
  <path d="M10 0 H20 V10 H10 Z"/>
</svg>`)
	res, err := Run(testSettings(t), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 2 {
		t.Fatalf("shapes = %d", res.Shapes)
	}
	// the shared edge at x=10 contributes 4 coincident corner positions
	// that the weld collapses: 2*8 - 4 distinct positions remain
	if res.Vertices != 12 {
		t.Fatalf("got %d vertices, want 12", res.Vertices)
	}
	if res.Triangles != 24 {
		t.Fatalf("got %d triangles, want 24", res.Triangles)
	}
}

func TestRunHole(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <path d="M10 10 H90 V90 H10 Z M30 30 H70 V70 H30 Z"/>
</svg>`)
	res, err := Run(testSettings(t), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 1 {
		t.Fatalf("shapes = %d", res.Shapes)
	}
	// 8 ring vertices at two depths
	if res.Vertices != 16 {
		t.Fatalf("got %d vertices, want 16", res.Vertices)
	}
	// caps: (8 + 2*1 - 2) = 8 triangles each; walls: 2 per edge on both rings
	if res.Triangles != 2*8+2*4+2*4 {
		t.Fatalf("got %d triangles, want 32", res.Triangles)
	}
}

func TestRunCollapsedShapeIsSkipped(t *testing.T) {
	s := testSettings(t)
	s.SimplifyTolerance = 1000 // devours the whole square
	res, err := Run(s, parseDoc(t, squareDoc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 0 || res.Skipped != 1 {
		t.Fatalf("shapes=%d skipped=%d, want 0/1", res.Shapes, res.Skipped)
	}
	if !res.Mesh.Empty() {
		t.Fatalf("skipped-only run produced a mesh")
	}
}

func TestRunOpenStroke(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 4">
  <line x1="0" y1="2" x2="10" y2="2" fill="none" stroke="black" stroke-width="2"/>
</svg>`)
	res, err := Run(testSettings(t), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 1 {
		t.Fatalf("shapes = %d", res.Shapes)
	}
	// a butt-capped straight segment is a box: 8 corners, 12 triangles
	if res.Vertices != 8 || res.Triangles != 12 {
		t.Fatalf("got %d vertices / %d triangles, want 8/12", res.Vertices, res.Triangles)
	}
}

func TestRunClosedStrokeAnnulus(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8">
  <polygon points="2,2 6,2 6,6 2,6" fill="none" stroke="black" stroke-width="1"/>
</svg>`)
	res, err := Run(testSettings(t), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Shapes != 1 {
		t.Fatalf("shapes = %d", res.Shapes)
	}
	// square annulus: 8 ring corners at two depths
	if res.Vertices != 16 {
		t.Fatalf("got %d vertices, want 16", res.Vertices)
	}
	if res.Triangles != 32 {
		t.Fatalf("got %d triangles, want 32", res.Triangles)
	}
}

func TestRunNormalsAreUnitLength(t *testing.T) {
	res, err := Run(testSettings(t), parseDoc(t, squareDoc))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Mesh.Normals) != len(res.Mesh.Positions) {
		t.Fatalf("normals/positions length mismatch: %d vs %d",
			len(res.Mesh.Normals), len(res.Mesh.Positions))
	}
	for i, n := range res.Mesh.Normals {
		if math.Abs(n.Len()-1) > 1e-9 {
			t.Fatalf("normal %d has length %g", i, n.Len())
		}
	}
}
