/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extrude

import (
	"math"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// CapStyle is the stroke end-cap shape.
type CapStyle int

const (
	CapButt CapStyle = iota
	CapRound
	CapSquare
)

// JoinStyle is the stroke corner shape.
type JoinStyle int

const (
	JoinMiter JoinStyle = iota
	JoinRound
	JoinBevel
)

// StrokeStyle carries the stroke attributes that shape the flat ribbon.
type StrokeStyle struct {
	Width      float64
	Cap        CapStyle
	Join       JoinStyle
	MiterLimit float64 // ratio of miter length to width; <=0 selects 4 (the SVG default)
	// Segments controls the tessellation density of round caps and joins.
	Segments int
}

func (s StrokeStyle) miterLimit() float64 {
	if s.MiterLimit <= 0 {
		return 4
	}
	return s.MiterLimit
}

func (s StrokeStyle) segments() int {
	if s.Segments < 1 {
		return 8
	}
	return s.Segments
}

// StrokeRibbon converts a stroke polyline into a flat 2D cross-section for
// extrusion. An open polyline becomes a single closed ribbon polygon (left
// offset forward, end cap, right offset backward, start cap). A closed
// polyline becomes an annulus: outer offset ring with the inner ring as a
// hole. Inputs with fewer than two distinct points produce an empty
// outline.
func StrokeRibbon(points []geom.Vec2, style StrokeStyle) geom.Outline {
	pts := dedupRing(points)
	closed := false
	if len(pts) >= 3 && len(pts) < len(dedupOpen(points)) {
		// dedupRing stripped a duplicated closing point
		closed = true
	}
	if len(pts) < 2 || style.Width <= 0 {
		return geom.Outline{}
	}
	w := style.Width / 2

	if closed {
		// walk clockwise so the left-hand offset lands outside the ring
		if !geom.IsClockwise(pts) {
			pts = geom.Reverse(pts)
		}
		outer := offsetClosed(pts, w, style)
		inner := offsetClosed(geom.Reverse(pts), w, style)
		return geom.Outline{Outer: outer, Holes: [][]geom.Vec2{inner}}
	}

	var ribbon []geom.Vec2
	ribbon = append(ribbon, offsetOpen(pts, w, style)...)
	ribbon = append(ribbon, capPoints(pts[len(pts)-1], dir(pts, len(pts)-2), w, style)...)
	rev := geom.Reverse(pts)
	ribbon = append(ribbon, offsetOpen(rev, w, style)...)
	ribbon = append(ribbon, capPoints(pts[0], dir(rev, len(rev)-2), w, style)...)
	return geom.Outline{Outer: ribbon}
}

// dedupOpen removes consecutive duplicates without touching the closing
// point, so StrokeRibbon can tell a closed polyline from an open one.
func dedupOpen(points []geom.Vec2) []geom.Vec2 {
	const eps = 1e-12
	out := make([]geom.Vec2, 0, len(points))
	for _, p := range points {
		if len(out) > 0 {
			q := out[len(out)-1]
			if math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// dir returns the unit direction of segment i -> i+1.
func dir(pts []geom.Vec2, i int) geom.Vec2 {
	return pts[i+1].Sub(pts[i]).Normalize()
}

// offsetOpen walks the polyline start to end and emits the left-hand offset
// side, applying the join style at interior vertices.
func offsetOpen(pts []geom.Vec2, w float64, style StrokeStyle) []geom.Vec2 {
	var out []geom.Vec2
	n := len(pts)
	d0 := dir(pts, 0)
	out = append(out, pts[0].Add(d0.Perp().Scale(w)))
	for i := 1; i < n-1; i++ {
		din := dir(pts, i-1)
		dout := dir(pts, i)
		out = append(out, joinPoints(pts[i], din, dout, w, style)...)
	}
	dn := dir(pts, n-2)
	out = append(out, pts[n-1].Add(dn.Perp().Scale(w)))
	return out
}

// offsetClosed emits the full left-hand offset ring of a closed polyline.
func offsetClosed(pts []geom.Vec2, w float64, style StrokeStyle) []geom.Vec2 {
	var out []geom.Vec2
	n := len(pts)
	for i := 0; i < n; i++ {
		din := pts[i].Sub(pts[(i-1+n)%n]).Normalize()
		dout := pts[(i+1)%n].Sub(pts[i]).Normalize()
		out = append(out, joinPoints(pts[i], din, dout, w, style)...)
	}
	return out
}

// joinPoints emits the offset points for one vertex on the left side of
// the traversal. When the path turns right the left side is the outside of
// the corner and the join style applies; when it turns left the inside
// collapses to the miter point.
func joinPoints(v, din, dout geom.Vec2, w float64, style StrokeStyle) []geom.Vec2 {
	n0 := din.Perp()
	n1 := dout.Perp()
	turn := din.Cross(dout)
	m := n0.Add(n1).Normalize()
	if m == (geom.Vec2{}) {
		// 180 degree reversal: fall back to a bevel across the tip
		return []geom.Vec2{v.Add(n0.Scale(w)), v.Add(n1.Scale(w))}
	}
	denom := m.Dot(n0)
	if denom < 1e-9 {
		denom = 1e-9
	}
	miter := v.Add(m.Scale(w / denom))

	if turn >= 0 {
		// left turn: this side is the inner side; a near-reversal would
		// send the inner miter to infinity, so the same limit applies
		if 1/denom > style.miterLimit() {
			return []geom.Vec2{v.Add(n0.Scale(w)), v.Add(n1.Scale(w))}
		}
		return []geom.Vec2{miter}
	}
	switch style.Join {
	case JoinBevel:
		return []geom.Vec2{v.Add(n0.Scale(w)), v.Add(n1.Scale(w))}
	case JoinRound:
		return arcPoints(v, n0.Scale(w), n1.Scale(w), style.segments())
	default: // miter, falling back to bevel past the limit
		if 1/denom > style.miterLimit() {
			return []geom.Vec2{v.Add(n0.Scale(w)), v.Add(n1.Scale(w))}
		}
		return []geom.Vec2{miter}
	}
}

// capPoints emits the end-cap points at tip v, where d is the direction the
// stroke arrives from. Butt caps add nothing; the side offsets already
// bound the end. Square caps extend half a width beyond the tip; round
// caps sweep a semicircle from the left offset to the right offset.
func capPoints(v, d geom.Vec2, w float64, style StrokeStyle) []geom.Vec2 {
	left := d.Perp().Scale(w)
	right := left.Scale(-1)
	switch style.Cap {
	case CapSquare:
		ext := d.Scale(w)
		return []geom.Vec2{v.Add(left).Add(ext), v.Add(right).Add(ext)}
	case CapRound:
		return arcPoints(v, left, right, style.segments())
	default:
		return nil
	}
}

// arcPoints sweeps clockwise (through the outside of the corner) from
// offset vector a to offset vector b around center v, excluding both
// endpoints since the neighboring offsets already provide them.
func arcPoints(v, a, b geom.Vec2, segments int) []geom.Vec2 {
	start := math.Atan2(a.Y, a.X)
	end := math.Atan2(b.Y, b.X)
	for end > start {
		end -= 2 * math.Pi
	}
	r := a.Len()
	var out []geom.Vec2
	for s := 1; s < segments; s++ {
		t := start + (end-start)*float64(s)/float64(segments)
		out = append(out, v.Add(geom.Vec2{X: math.Cos(t) * r, Y: math.Sin(t) * r}))
	}
	return out
}
