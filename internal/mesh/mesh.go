/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package mesh holds the indexed triangle-soup representation produced by
// the extruder and the merge/weld/cleanup passes that turn independent
// per-shape solids into one coherent mesh.
package mesh

import "math"

// Vec3 is a 3D point or vector.
type Vec3 struct{ X, Y, Z float64 }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Fragment is one extruded solid: a vertex buffer plus a triangle index
// list. Fragments own their buffers; they never share storage until merged.
type Fragment struct {
	Positions []Vec3
	Indices   []uint32
	Normals   []Vec3 // same length as Positions once computed
}

// Empty reports whether the fragment carries no triangles.
func (f *Fragment) Empty() bool { return len(f.Indices) == 0 }

// TriangleCount returns the number of triangles.
func (f *Fragment) TriangleCount() int { return len(f.Indices) / 3 }

// Bounds returns the axis-aligned bounding box. For an empty fragment both
// corners are the zero vector.
func (f *Fragment) Bounds() (min, max Vec3) {
	if len(f.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	min, max = f.Positions[0], f.Positions[0]
	for _, p := range f.Positions[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	return min, max
}

// Translate shifts every vertex by d in place.
func (f *Fragment) Translate(d Vec3) {
	for i := range f.Positions {
		f.Positions[i] = f.Positions[i].Add(d)
	}
}

// Scale multiplies every vertex by s in place. Normals are unaffected by a
// uniform scale.
func (f *Fragment) Scale(s float64) {
	for i := range f.Positions {
		f.Positions[i] = f.Positions[i].Scale(s)
	}
}

// FlipY mirrors the mesh across the XZ plane and reverses triangle winding
// so the solid stays outward-facing. SVG documents are Y-down; the export
// convention is Y-up.
func (f *Fragment) FlipY() {
	for i := range f.Positions {
		f.Positions[i].Y = -f.Positions[i].Y
	}
	for i := range f.Normals {
		f.Normals[i].Y = -f.Normals[i].Y
	}
	f.reverseWinding()
}

// RotateX90 rotates the mesh -90 degrees about the X axis, laying a
// Z-extruded solid flat on the XZ ground plane: (x,y,z) -> (x,z,-y).
func (f *Fragment) RotateX90() {
	for i := range f.Positions {
		p := f.Positions[i]
		f.Positions[i] = Vec3{p.X, p.Z, -p.Y}
	}
	for i := range f.Normals {
		n := f.Normals[i]
		f.Normals[i] = Vec3{n.X, n.Z, -n.Y}
	}
}

func (f *Fragment) reverseWinding() {
	for i := 0; i+2 < len(f.Indices); i += 3 {
		f.Indices[i+1], f.Indices[i+2] = f.Indices[i+2], f.Indices[i+1]
	}
}

// Merge concatenates fragments into one, offsetting indices. Empty
// fragments contribute nothing. The inputs are not modified.
func Merge(fragments []*Fragment) *Fragment {
	out := &Fragment{}
	for _, f := range fragments {
		if f == nil || f.Empty() {
			continue
		}
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, f.Positions...)
		for _, idx := range f.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// TriangleArea returns the area of the triangle at the given triangle index.
func (f *Fragment) TriangleArea(tri int) float64 {
	a := f.Positions[f.Indices[tri*3]]
	b := f.Positions[f.Indices[tri*3+1]]
	c := f.Positions[f.Indices[tri*3+2]]
	return b.Sub(a).Cross(c.Sub(a)).Len() / 2
}
