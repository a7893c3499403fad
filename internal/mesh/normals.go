/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mesh

// ComputeNormals recomputes per-vertex normals from the current triangle
// topology. Each triangle's unnormalized face normal (whose length is twice
// the triangle area) is accumulated onto its three vertices, so larger
// faces weigh more, then the sums are normalized. Must run after welding
// and degenerate removal; normals computed against earlier topology are
// stale.
func (f *Fragment) ComputeNormals() {
	normals := make([]Vec3, len(f.Positions))
	for t := 0; t < f.TriangleCount(); t++ {
		ia, ib, ic := f.Indices[t*3], f.Indices[t*3+1], f.Indices[t*3+2]
		a, b, c := f.Positions[ia], f.Positions[ib], f.Positions[ic]
		n := b.Sub(a).Cross(c.Sub(a))
		normals[ia] = normals[ia].Add(n)
		normals[ib] = normals[ib].Add(n)
		normals[ic] = normals[ic].Add(n)
	}
	for i := range normals {
		n := normals[i].Normalize()
		if n == (Vec3{}) {
			// unreferenced or fully cancelled vertex; any unit vector is
			// fine for export
			n = Vec3{0, 0, 1}
		}
		normals[i] = n
	}
	f.Normals = normals
}
