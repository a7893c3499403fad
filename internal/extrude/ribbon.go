/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extrude

import (
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/mesh"
)

// edgeKey identifies an undirected edge by the quantized positions of its
// endpoints, ordered so (a,b) and (b,a) collide. Edges must be keyed by
// position, not by vertex index: the ribbon triangulation does not share
// indices across adjacent triangles.
type edgeKey struct{ a, b geom.Key2 }

func keyLess(a, b geom.Key2) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func edgeKeyFor(a, b geom.Vec2, step float64) edgeKey {
	ka, kb := geom.KeyFor(a, step), geom.KeyFor(b, step)
	if keyLess(kb, ka) {
		ka, kb = kb, ka
	}
	return edgeKey{ka, kb}
}

// ExtrudeRibbon extrudes a stroke-derived flat ribbon polygon. The caps are
// the ribbon triangulation at Z=0 and Z=depth; side walls are generated
// along boundary edges only, where a boundary edge is one used by exactly
// one triangle of the triangulation. Edges used twice are interior and get
// no wall. Assumes no edge is shared by more than two triangles; heavily
// self-overlapping ribbons can break that and may come out non-manifold.
func ExtrudeRibbon(ribbon []geom.Vec2, opts Options) *mesh.Fragment {
	tris := Triangulate(geom.Outline{Outer: ribbon}.Normalize())
	if len(tris) == 0 || opts.Depth <= 0 {
		return &mesh.Fragment{}
	}
	step := opts.quantization()

	type edge struct {
		a, b  geom.Vec2
		count int
	}
	edges := make(map[edgeKey]*edge, len(tris)*3)
	order := make([]edgeKey, 0, len(tris)*3)
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			a, b := t[i], t[(i+1)%3]
			k := edgeKeyFor(a, b, step)
			if e, ok := edges[k]; ok {
				e.count++
				continue
			}
			// keep the directed form of first use; triangles are
			// counter-clockwise, so the polygon exterior lies to the right
			edges[k] = &edge{a: a, b: b, count: 1}
			order = append(order, k)
		}
	}

	b := newBuilder(step)
	for _, t := range tris {
		b.triangle(at(t[0], 0), at(t[2], 0), at(t[1], 0))
		b.triangle(at(t[0], opts.Depth), at(t[1], opts.Depth), at(t[2], opts.Depth))
	}
	for _, k := range order {
		e := edges[k]
		if e.count != 1 {
			continue
		}
		a0 := at(e.a, 0)
		b0 := at(e.b, 0)
		b1 := at(e.b, opts.Depth)
		a1 := at(e.a, opts.Depth)
		b.triangle(a0, b0, b1)
		b.triangle(a0, b1, a1)
	}
	return b.frag
}
