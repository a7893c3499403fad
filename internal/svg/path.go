/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package svg parses SVG documents into the path records consumed by the
// geometry pipeline: fill outlines with holes resolved, and stroke
// polylines with their width/cap/join attributes.
package svg

import (
	"math"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// SegmentKind enumerates path segment types after parsing.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	LineTo
	QuadTo
	CubeTo
	ArcTo
	ClosePath
)

// Segment is one parsed path command in absolute coordinates.
type Segment struct {
	Kind SegmentKind
	// End is the segment end point. CP1/CP2 are control points for quad
	// (CP1 only) and cubic segments.
	End, CP1, CP2 geom.Vec2
	// Arc parameters.
	Rx, Ry, Rotation float64
	LargeArc, Sweep  bool
}

// Path is a parsed path: a flat list of absolute segments. A path may
// contain several subpaths separated by MoveTo commands.
type Path struct {
	Segments []Segment
}

// Subpath is one flattened subpath.
type Subpath struct {
	Points []geom.Vec2
	Closed bool
}

// Flatten tessellates the path into polylines. Every curved segment is
// approximated with the given number of line steps; straight segments pass
// through unchanged. segments below 1 is treated as 1.
func (p *Path) Flatten(segments int) []Subpath {
	if segments < 1 {
		segments = 1
	}
	var out []Subpath
	var cur Subpath
	var pos, start geom.Vec2

	flush := func() {
		if len(cur.Points) > 1 {
			out = append(out, cur)
		}
		cur = Subpath{}
	}
	// a drawing command right after a closepath starts a new subpath at
	// the previous start point
	begin := func() {
		if len(cur.Points) == 0 {
			cur.Points = append(cur.Points, pos)
		}
	}

	for _, s := range p.Segments {
		if s.Kind != MoveTo && s.Kind != ClosePath {
			begin()
		}
		switch s.Kind {
		case MoveTo:
			flush()
			pos, start = s.End, s.End
			cur.Points = append(cur.Points, pos)
		case LineTo:
			cur.Points = append(cur.Points, s.End)
			pos = s.End
		case QuadTo:
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				cur.Points = append(cur.Points, quadPoint(pos, s.CP1, s.End, t))
			}
			pos = s.End
		case CubeTo:
			for i := 1; i <= segments; i++ {
				t := float64(i) / float64(segments)
				cur.Points = append(cur.Points, cubicPoint(pos, s.CP1, s.CP2, s.End, t))
			}
			pos = s.End
		case ArcTo:
			cur.Points = append(cur.Points, arcPoints(pos, s, segments)...)
			pos = s.End
		case ClosePath:
			cur.Closed = true
			if pos != start {
				cur.Points = append(cur.Points, start)
			}
			flush()
			pos = start
		}
	}
	flush()
	return out
}

func quadPoint(p0, cp, p1 geom.Vec2, t float64) geom.Vec2 {
	u := 1 - t
	return p0.Scale(u * u).Add(cp.Scale(2 * u * t)).Add(p1.Scale(t * t))
}

func cubicPoint(p0, c1, c2, p1 geom.Vec2, t float64) geom.Vec2 {
	u := 1 - t
	return p0.Scale(u * u * u).
		Add(c1.Scale(3 * u * u * t)).
		Add(c2.Scale(3 * u * t * t)).
		Add(p1.Scale(t * t * t))
}

// arcPoints flattens an elliptical arc using the SVG endpoint-to-center
// conversion (SVG 1.1 appendix F.6.5), emitting `segments` points including
// the end point.
func arcPoints(from geom.Vec2, s Segment, segments int) []geom.Vec2 {
	rx, ry := math.Abs(s.Rx), math.Abs(s.Ry)
	if rx == 0 || ry == 0 || from == s.End {
		return []geom.Vec2{s.End}
	}
	phi := s.Rotation * math.Pi / 180
	cosp, sinp := math.Cos(phi), math.Sin(phi)

	// transform to the ellipse frame
	dx, dy := (from.X-s.End.X)/2, (from.Y-s.End.Y)/2
	x1 := cosp*dx + sinp*dy
	y1 := -sinp*dx + cosp*dy

	// scale radii up if the endpoints cannot be connected
	lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry)
	if lambda > 1 {
		k := math.Sqrt(lambda)
		rx *= k
		ry *= k
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	co := 0.0
	if den != 0 && num > 0 {
		co = math.Sqrt(num / den)
	}
	if s.LargeArc == s.Sweep {
		co = -co
	}
	cx1 := co * rx * y1 / ry
	cy1 := -co * ry * x1 / rx
	cx := cosp*cx1 - sinp*cy1 + (from.X+s.End.X)/2
	cy := sinp*cx1 + cosp*cy1 + (from.Y+s.End.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		a := math.Atan2(uy, ux)
		b := math.Atan2(vy, vx)
		d := b - a
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		return d
	}
	theta1 := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	dtheta := angle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !s.Sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if s.Sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	pts := make([]geom.Vec2, 0, segments)
	for i := 1; i <= segments; i++ {
		t := theta1 + dtheta*float64(i)/float64(segments)
		ex := rx * math.Cos(t)
		ey := ry * math.Sin(t)
		pts = append(pts, geom.Vec2{
			X: cosp*ex - sinp*ey + cx,
			Y: sinp*ex + cosp*ey + cy,
		})
	}
	pts[len(pts)-1] = s.End // land exactly on the endpoint
	return pts
}
