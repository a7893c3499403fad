/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Outline is a closed polygon boundary with zero or more holes, the
// cross-section handed to the extruder. By convention the outer ring winds
// counter-clockwise and holes wind clockwise; Normalize enforces this.
type Outline struct {
	Outer []Vec2
	Holes [][]Vec2
}

// Normalize drops a duplicated closing point on each ring and fixes
// winding: outer counter-clockwise, holes clockwise.
func (o Outline) Normalize() Outline {
	out := Outline{Outer: normalizeRing(o.Outer, false)}
	for _, h := range o.Holes {
		if r := normalizeRing(h, true); len(r) >= 3 {
			out.Holes = append(out.Holes, r)
		}
	}
	return out
}

// Simplify applies Ramer-Douglas-Peucker to the outer ring and every hole
// at the same tolerance.
func (o Outline) Simplify(tolerance float64) Outline {
	out := Outline{Outer: simplifyRing(o.Outer, tolerance)}
	for _, h := range o.Holes {
		out.Holes = append(out.Holes, simplifyRing(h, tolerance))
	}
	return out
}

// simplifyRing closes the ring for simplification so the seam between last
// and first point is treated like any other edge, then reopens it.
func simplifyRing(ring []Vec2, tolerance float64) []Vec2 {
	if tolerance <= 0 || len(ring) <= 3 {
		return ring
	}
	closed := make([]Vec2, 0, len(ring)+1)
	closed = append(closed, ring...)
	closed = append(closed, ring[0])
	s := Simplify(closed, tolerance)
	return s[:len(s)-1]
}

func normalizeRing(ring []Vec2, clockwise bool) []Vec2 {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return ring
	}
	if IsClockwise(ring) != clockwise {
		ring = Reverse(ring)
	}
	return ring
}
