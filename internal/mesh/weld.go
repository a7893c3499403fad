/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mesh

// MinTriangleArea is the floor below which a triangle counts as degenerate,
// in squared working units.
const MinTriangleArea = 1e-10

// Unindex expands the fragment into pure triangle soup: every triangle gets
// its own three vertices. Welding runs on the unindexed form so that
// coincident vertices from different source fragments unify regardless of
// how the original buffers were indexed.
func (f *Fragment) Unindex() {
	pos := make([]Vec3, 0, len(f.Indices))
	for _, idx := range f.Indices {
		pos = append(pos, f.Positions[idx])
	}
	idx := make([]uint32, len(pos))
	for i := range idx {
		idx[i] = uint32(i)
	}
	f.Positions = pos
	f.Indices = idx
	f.Normals = nil
}

// key3 is a quantized 3D position used to bucket vertices into
// tolerance-sized grid cells for the weld lookup.
type key3 struct{ x, y, z int64 }

func keyFor(p Vec3, step float64) key3 {
	return key3{quant(p.X, step), quant(p.Y, step), quant(p.Z, step)}
}

func quant(v, step float64) int64 {
	// round-half-away keeps the mapping symmetric around zero
	if v >= 0 {
		return int64(v/step + 0.5)
	}
	return int64(v/step - 0.5)
}

// Weld collapses vertices whose positions differ by less than tolerance in
// each axis to a single index, rewriting triangles accordingly. Candidates
// are found through a grid of tolerance-sized cells; because two vertices
// within tolerance per axis differ by at most one cell index per axis, the
// 27 neighboring cells cover every possible match. The first vertex seen
// supplies the surviving position, scanning in buffer order, so the result
// is deterministic, and welding an already-welded fragment at the same
// tolerance changes nothing.
func (f *Fragment) Weld(tolerance float64) {
	if tolerance <= 0 || len(f.Positions) == 0 {
		return
	}
	cells := make(map[key3][]uint32, len(f.Positions))
	remap := make([]uint32, len(f.Positions))
	pos := make([]Vec3, 0, len(f.Positions))
	for i, p := range f.Positions {
		k := keyFor(p, tolerance)
		match := uint32(0)
		found := false
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, j := range cells[key3{k.x + dx, k.y + dy, k.z + dz}] {
						q := pos[j]
						if abs(p.X-q.X) < tolerance && abs(p.Y-q.Y) < tolerance && abs(p.Z-q.Z) < tolerance {
							match = j
							found = true
							break search
						}
					}
				}
			}
		}
		if found {
			remap[i] = match
			continue
		}
		j := uint32(len(pos))
		pos = append(pos, p)
		cells[k] = append(cells[k], j)
		remap[i] = j
	}
	for i, idx := range f.Indices {
		f.Indices[i] = remap[idx]
	}
	f.Positions = pos
	f.Normals = nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// RemoveDegenerates drops triangles with repeated vertex indices or area
// below minArea. Vertices are never removed; unused ones are tolerated.
func (f *Fragment) RemoveDegenerates(minArea float64) {
	if minArea <= 0 {
		minArea = MinTriangleArea
	}
	out := f.Indices[:0]
	for t := 0; t < f.TriangleCount(); t++ {
		a, b, c := f.Indices[t*3], f.Indices[t*3+1], f.Indices[t*3+2]
		if a == b || b == c || a == c {
			continue
		}
		if f.TriangleArea(t) < minArea {
			continue
		}
		out = append(out, a, b, c)
	}
	f.Indices = out
}
