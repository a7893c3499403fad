/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svg

import (
	"math"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// Stroke is one stroked subpath with its resolved line attributes.
type Stroke struct {
	Points     []geom.Vec2
	Closed     bool
	Width      float64
	Cap        string
	Join       string
	MiterLimit float64
}

// ExtractOutlines converts a filled record's subpaths into outlines with
// holes resolved by containment nesting: a ring at even nesting depth is
// an outer boundary, a ring at odd depth is a hole of its innermost
// containing outer ring. Open subpaths of a filled record are implicitly
// closed, matching how SVG fills them.
func ExtractOutlines(rec PathRecord) []geom.Outline {
	if !rec.Style.HasFill {
		return nil
	}
	type ring struct {
		pts    []geom.Vec2
		area   float64
		depth  int
		parent int
	}
	var rings []ring
	for _, sp := range rec.Subpaths {
		pts := dropClosingDup(sp.Points)
		if len(pts) < 3 {
			continue
		}
		a := geom.SignedArea(pts)
		if math.Abs(a) < 1e-12 {
			continue
		}
		rings = append(rings, ring{pts: pts, area: math.Abs(a), parent: -1})
	}

	for i := range rings {
		probe := rings[i].pts[0]
		for j := range rings {
			if j == i {
				continue
			}
			if geom.PointInRing(probe, rings[j].pts) {
				rings[i].depth++
			}
		}
	}
	for i := range rings {
		if rings[i].depth%2 == 0 {
			continue
		}
		probe := rings[i].pts[0]
		best := -1
		for j := range rings {
			if j == i || rings[j].depth != rings[i].depth-1 {
				continue
			}
			if !geom.PointInRing(probe, rings[j].pts) {
				continue
			}
			if best < 0 || rings[j].area < rings[best].area {
				best = j
			}
		}
		rings[i].parent = best
	}

	var outlines []geom.Outline
	index := make(map[int]int) // ring index to outline index
	for i := range rings {
		if rings[i].depth%2 == 0 {
			index[i] = len(outlines)
			outlines = append(outlines, geom.Outline{Outer: rings[i].pts})
		}
	}
	for i := range rings {
		if p := rings[i].parent; p >= 0 {
			o := &outlines[index[p]]
			o.Holes = append(o.Holes, rings[i].pts)
		}
	}
	for i := range outlines {
		outlines[i] = outlines[i].Normalize()
	}
	return outlines
}

// ExtractStrokes converts a stroked record's subpaths into stroke
// polylines carrying the record's line attributes.
func ExtractStrokes(rec PathRecord) []Stroke {
	st := rec.Style
	if !st.HasStroke || st.StrokeWidth <= 0 {
		return nil
	}
	var out []Stroke
	for _, sp := range rec.Subpaths {
		pts := sp.Points
		closed := sp.Closed
		if closed {
			pts = dropClosingDup(pts)
			if len(pts) < 3 {
				closed = false
			}
		}
		if len(pts) < 2 {
			continue
		}
		out = append(out, Stroke{
			Points:     pts,
			Closed:     closed,
			Width:      st.StrokeWidth,
			Cap:        st.LineCap,
			Join:       st.LineJoin,
			MiterLimit: st.MiterLimit,
		})
	}
	return out
}

func dropClosingDup(pts []geom.Vec2) []geom.Vec2 {
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		return pts[:len(pts)-1]
	}
	return pts
}
