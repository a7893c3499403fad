/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package extrude turns 2D outlines and stroke polylines into 3D solids:
// triangulated caps connected by side walls, with optional chamfer bevels.
package extrude

import (
	"math"

	poly2tri "github.com/ByteArena/poly2tri-go"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// Triangle is one cap triangle in outline space.
type Triangle [3]geom.Vec2

// Triangulate tessellates the outline's interior, respecting holes, using
// constrained Delaunay triangulation. Degenerate input (fewer than three
// distinct points, zero area, or geometry the triangulator cannot sweep)
// yields no triangles rather than an error; the caller treats that as an
// empty solid.
func Triangulate(outline geom.Outline) (tris []Triangle) {
	outer := dedupRing(outline.Outer)
	if len(outer) < 3 || geom.SignedArea(outer) == 0 {
		return nil
	}
	// the sweep panics on inputs it cannot handle (repeated points,
	// self-intersections); such shapes degrade to an empty solid
	defer func() {
		if recover() != nil {
			tris = nil
		}
	}()

	contour := make([]*poly2tri.Point, len(outer))
	for i, p := range outer {
		contour[i] = poly2tri.NewPoint(p.X, p.Y)
	}
	swctx := poly2tri.NewSweepContext(contour, false)
	for _, h := range outline.Holes {
		hole := dedupRing(h)
		if len(hole) < 3 {
			continue
		}
		pts := make([]*poly2tri.Point, len(hole))
		for i, p := range hole {
			pts[i] = poly2tri.NewPoint(p.X, p.Y)
		}
		swctx.AddHole(pts)
	}
	swctx.Triangulate()

	for _, tr := range swctx.GetTriangles() {
		t := Triangle{
			{X: tr.Points[0].X, Y: tr.Points[0].Y},
			{X: tr.Points[1].X, Y: tr.Points[1].Y},
			{X: tr.Points[2].X, Y: tr.Points[2].Y},
		}
		// normalize to counter-clockwise so cap winding downstream is
		// uniform
		if geom.SignedArea(t[:]) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, t)
	}
	return tris
}

// dedupRing removes consecutive (near-)duplicate points and a duplicated
// closing point; the triangulator rejects repeated vertices.
func dedupRing(ring []geom.Vec2) []geom.Vec2 {
	const eps = 1e-12
	out := make([]geom.Vec2, 0, len(ring))
	for _, p := range ring {
		if len(out) > 0 {
			q := out[len(out)-1]
			if math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps {
				continue
			}
		}
		out = append(out, p)
	}
	for len(out) >= 2 {
		a, b := out[0], out[len(out)-1]
		if math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps {
			out = out[:len(out)-1]
			continue
		}
		break
	}
	return out
}
