/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestPointSegmentDistance(t *testing.T) {
	a, b := Vec2{0, 0}, Vec2{10, 0}
	if d := PointSegmentDistance(Vec2{5, 3}, a, b); math.Abs(d-3) > 1e-12 {
		t.Fatalf("perpendicular distance = %g, want 3", d)
	}
	// beyond the segment end the distance is to the endpoint
	if d := PointSegmentDistance(Vec2{13, 4}, a, b); math.Abs(d-5) > 1e-12 {
		t.Fatalf("endpoint distance = %g, want 5", d)
	}
	// zero-length chord degenerates to point distance
	if d := PointSegmentDistance(Vec2{3, 4}, a, a); math.Abs(d-5) > 1e-12 {
		t.Fatalf("degenerate chord distance = %g, want 5", d)
	}
}

func TestSignedAreaAndWinding(t *testing.T) {
	ccw := []Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	if a := SignedArea(ccw); math.Abs(a-4) > 1e-12 {
		t.Fatalf("area = %g, want 4", a)
	}
	if IsClockwise(ccw) {
		t.Fatalf("ccw square reported clockwise")
	}
	cw := Reverse(ccw)
	if !IsClockwise(cw) {
		t.Fatalf("reversed square not clockwise")
	}
}

func TestPointInRing(t *testing.T) {
	ring := []Vec2{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	if !PointInRing(Vec2{2, 2}, ring) {
		t.Fatalf("center should be inside")
	}
	if PointInRing(Vec2{5, 2}, ring) {
		t.Fatalf("outside point reported inside")
	}
}

func TestQuantizedKeysCollapseNearbyPoints(t *testing.T) {
	step := 1e-4
	a := KeyFor(Vec2{1.00001, 2}, step)
	b := KeyFor(Vec2{1.00002, 2}, step)
	if a != b {
		t.Fatalf("points within step did not share a key: %v vs %v", a, b)
	}
	c := KeyFor(Vec2{1.1, 2}, step)
	if a == c {
		t.Fatalf("distant points collided")
	}
}

func TestSimplifyNoOp(t *testing.T) {
	pts := []Vec2{{0, 0}, {1, 1}, {2, 0}}
	if got := Simplify(pts, 0); len(got) != len(pts) {
		t.Fatalf("zero tolerance must be identity, got %d points", len(got))
	}
	two := []Vec2{{0, 0}, {1, 0}}
	if got := Simplify(two, 10); len(got) != 2 {
		t.Fatalf("two-point input must be identity, got %d points", len(got))
	}
}

func TestSimplifyCollapsesCollinearRuns(t *testing.T) {
	pts := []Vec2{{0, 0}, {1, 0.001}, {2, -0.001}, {3, 0}, {4, 0}}
	got := Simplify(pts, 0.01)
	if len(got) != 2 {
		t.Fatalf("expected collapse to endpoints, got %d points", len(got))
	}
	if got[0] != pts[0] || got[1] != pts[len(pts)-1] {
		t.Fatalf("endpoints not preserved: %v", got)
	}
}

func TestSimplifyKeepsSalientPoint(t *testing.T) {
	pts := []Vec2{{0, 0}, {5, 4}, {10, 0}}
	got := Simplify(pts, 1)
	if len(got) != 3 {
		t.Fatalf("salient point dropped: %v", got)
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	pts := []Vec2{{0, 0}, {1, 0.4}, {2, -0.2}, {3, 1.8}, {4, 0.1}, {5, 0}, {6, 2.5}, {7, 0}}
	for _, tol := range []float64{0, 0.5, 2} {
		once := Simplify(pts, tol)
		twice := Simplify(once, tol)
		if len(once) != len(twice) {
			t.Fatalf("tol %g: %d then %d points", tol, len(once), len(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Fatalf("tol %g: point %d differs", tol, i)
			}
		}
	}
}
