/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Simplify reduces the point density of a polyline with the
// Ramer-Douglas-Peucker algorithm while keeping the shape within tolerance.
// A tolerance <= 0 or an input of two or fewer points is returned unchanged.
// The function is pure and deterministic; applying it twice at the same
// tolerance yields the same result as applying it once.
func Simplify(points []Vec2, tolerance float64) []Vec2 {
	if tolerance <= 0 || len(points) <= 2 {
		return points
	}
	out := make([]Vec2, 0, len(points))
	out = append(out, points[0])
	out = rdp(points, tolerance, out)
	return out
}

// rdp appends the simplification of points[1:] to out, assuming points[0]
// is already appended. The split point is shared exactly once.
func rdp(points []Vec2, tolerance float64, out []Vec2) []Vec2 {
	first, last := points[0], points[len(points)-1]
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(points)-1; i++ {
		if d := PointSegmentDistance(points[i], first, last); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > tolerance {
		out = rdp(points[:maxIdx+1], tolerance, out)
		out = rdp(points[maxIdx:], tolerance, out)
		return out
	}
	return append(out, last)
}
