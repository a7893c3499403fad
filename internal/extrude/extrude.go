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

// Options controls solid generation.
type Options struct {
	// Depth is the extrusion distance along +Z. Must be > 0.
	Depth float64
	// Bevel inserts a straight chamfer of this thickness between cap and
	// wall. Zero disables beveling.
	Bevel float64
	// BevelSegments is the number of chamfer rings; values below 1 are
	// treated as 1.
	BevelSegments int
	// Quantization is the grid step for position-based vertex and edge
	// keys. It should sit well below the weld tolerance the caller will
	// merge with, so construction-time keys never unify vertices the weld
	// pass would keep apart. Zero selects 1e-9.
	Quantization float64
}

func (o Options) quantization() float64 {
	if o.Quantization > 0 {
		return o.Quantization
	}
	return 1e-9
}

// builder accumulates triangles into a fragment, sharing vertices through
// quantized position keys so coincident corners within one solid use one
// index.
type builder struct {
	frag  *mesh.Fragment
	index map[[3]int64]uint32
	step  float64
}

func newBuilder(step float64) *builder {
	return &builder{frag: &mesh.Fragment{}, index: make(map[[3]int64]uint32), step: step}
}

func (b *builder) vertex(p mesh.Vec3) uint32 {
	k := [3]int64{geom.Quantize(p.X, b.step), geom.Quantize(p.Y, b.step), geom.Quantize(p.Z, b.step)}
	if i, ok := b.index[k]; ok {
		return i
	}
	i := uint32(len(b.frag.Positions))
	b.frag.Positions = append(b.frag.Positions, p)
	b.index[k] = i
	return i
}

func (b *builder) triangle(p0, p1, p2 mesh.Vec3) {
	b.frag.Indices = append(b.frag.Indices, b.vertex(p0), b.vertex(p1), b.vertex(p2))
}

func at(p geom.Vec2, z float64) mesh.Vec3 { return mesh.Vec3{X: p.X, Y: p.Y, Z: z} }

// Extrude turns a filled outline into a closed solid: a front cap at Z=0, a
// back cap at Z=depth and side walls along every boundary edge of the outer
// ring and each hole. With a bevel, chamfer rings shrink the caps toward
// the outline interior. Degenerate outlines produce an empty fragment.
func Extrude(outline geom.Outline, opts Options) *mesh.Fragment {
	o := outline.Normalize()
	if len(o.Outer) < 3 || opts.Depth <= 0 {
		return &mesh.Fragment{}
	}

	bevel := opts.Bevel
	if bevel < 0 {
		bevel = 0
	}
	if bevel > opts.Depth/2 {
		bevel = opts.Depth / 2
	}

	capOutline := o
	if bevel > 0 {
		capOutline = insetOutline(o, bevel)
	}
	caps := Triangulate(capOutline)
	if len(caps) == 0 {
		return &mesh.Fragment{}
	}

	b := newBuilder(opts.quantization())

	// caps: front faces -Z, back faces +Z
	for _, t := range caps {
		b.triangle(at(t[0], 0), at(t[2], 0), at(t[1], 0))
		b.triangle(at(t[0], opts.Depth), at(t[1], opts.Depth), at(t[2], opts.Depth))
	}

	rings := append([][]geom.Vec2{o.Outer}, o.Holes...)
	for _, ring := range rings {
		for _, lv := range wallLevels(ring, opts.Depth, bevel, opts.BevelSegments) {
			b.wallBand(lv.from, lv.fromZ, lv.to, lv.toZ)
		}
	}
	return b.frag
}

type level struct {
	from, to   []geom.Vec2
	fromZ, toZ float64
}

// wallLevels returns the ring bands to connect, front to back. Without a
// bevel this is the single full-depth band; with one, chamfer bands step
// the ring from its inset cap position out to the full outline and back.
func wallLevels(ring []geom.Vec2, depth, bevel float64, segments int) []level {
	if bevel <= 0 {
		return []level{{from: ring, fromZ: 0, to: ring, toZ: depth}}
	}
	if segments < 1 {
		segments = 1
	}
	ringAt := func(inset float64) []geom.Vec2 { return insetRing(ring, inset) }

	var levels []level
	prev, prevZ := ringAt(bevel), 0.0
	for s := 1; s <= segments; s++ {
		t := float64(s) / float64(segments)
		cur, curZ := ringAt(bevel*(1-t)), bevel*t
		levels = append(levels, level{from: prev, fromZ: prevZ, to: cur, toZ: curZ})
		prev, prevZ = cur, curZ
	}
	levels = append(levels, level{from: prev, fromZ: prevZ, to: prev, toZ: depth - bevel})
	prevZ = depth - bevel
	for s := 1; s <= segments; s++ {
		t := float64(s) / float64(segments)
		cur, curZ := ringAt(bevel*t), depth-bevel+bevel*t
		levels = append(levels, level{from: prev, fromZ: prevZ, to: cur, toZ: curZ})
		prev, prevZ = cur, curZ
	}
	return levels
}

// wallBand emits two triangles per ring edge between two rings of equal
// length. Winding puts the wall normal on the right of the ring traversal,
// which is outward for a counter-clockwise outer ring and for clockwise
// holes alike.
func (b *builder) wallBand(from []geom.Vec2, fromZ float64, to []geom.Vec2, toZ float64) {
	n := len(from)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a0 := at(from[i], fromZ)
		b0 := at(from[j], fromZ)
		b1 := at(to[j], toZ)
		a1 := at(to[i], toZ)
		b.triangle(a0, b0, b1)
		b.triangle(a0, b1, a1)
	}
}

// insetOutline offsets every ring toward the solid interior: the outer
// ring shrinks, holes grow. Cap area therefore shrinks monotonically with
// the inset.
func insetOutline(o geom.Outline, d float64) geom.Outline {
	out := geom.Outline{Outer: insetRing(o.Outer, d)}
	for _, h := range o.Holes {
		out.Holes = append(out.Holes, insetRing(h, d))
	}
	return out
}

// insetRing moves each vertex along its averaged edge normal. For both the
// counter-clockwise outer ring and clockwise holes the material lies to
// the left of traversal, so the left normal points inward. The miter
// factor is clamped so sharp corners cannot overshoot and flip winding.
func insetRing(ring []geom.Vec2, d float64) []geom.Vec2 {
	n := len(ring)
	if n < 3 || d == 0 {
		return ring
	}
	out := make([]geom.Vec2, n)
	for i := range ring {
		prev := ring[(i-1+n)%n]
		cur := ring[i]
		next := ring[(i+1)%n]
		n0 := next.Sub(cur).Normalize().Perp()
		n1 := cur.Sub(prev).Normalize().Perp()
		m := n0.Add(n1).Normalize()
		if m == (geom.Vec2{}) {
			m = n0
		}
		denom := m.Dot(n0)
		if denom < 0.25 {
			denom = 0.25 // clamp spike miters
		}
		out[i] = cur.Add(m.Scale(d / denom))
	}
	return out
}
