/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides the 2D primitives used by the outline pipeline:
// points, rings, point-to-segment distance, winding tests and the
// quantization scheme used for position-based hashing.
package geom

import "math"

// Vec2 is a 2D point or vector in SVG user units.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 2D cross product.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

// Lerp interpolates between a and b at parameter t.
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// PointSegmentDistance returns the distance from p to the segment a-b.
// For a zero-length chord it degenerates to the point distance to a.
func PointSegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	len2 := ab.Dot(ab)
	if len2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Scale(t))).Len()
}

// SignedArea returns the signed area of a closed ring (shoelace formula).
// Positive for counter-clockwise winding in a Y-up coordinate system.
func SignedArea(ring []Vec2) float64 {
	if len(ring) < 3 {
		return 0
	}
	var sum float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.Cross(q)
	}
	return sum / 2
}

// IsClockwise reports whether the ring winds clockwise.
func IsClockwise(ring []Vec2) bool { return SignedArea(ring) < 0 }

// Reverse returns a reversed copy of the ring.
func Reverse(ring []Vec2) []Vec2 {
	out := make([]Vec2, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// PointInRing reports whether p lies inside the ring using a ray cast.
// Points exactly on the boundary may report either way.
func PointInRing(p Vec2, ring []Vec2) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Quantize snaps v onto a grid of the given step. A step of zero is an
// identity. Used to build position-based hash keys; callers typically pass
// a step no larger than the weld tolerance.
func Quantize(v, step float64) int64 {
	if step == 0 {
		step = 1e-9
	}
	return int64(math.Round(v / step))
}

// Key2 is a quantized 2D position usable as a map key.
type Key2 struct{ X, Y int64 }

// KeyFor quantizes a point onto a grid of the given step.
func KeyFor(p Vec2, step float64) Key2 {
	return Key2{Quantize(p.X, step), Quantize(p.Y, step)}
}
