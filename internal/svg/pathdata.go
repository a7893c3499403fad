/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svg

import (
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// ParsePathData parses an SVG path "d" attribute into absolute segments.
// Relative commands and implicit command repetition are resolved during
// parsing, and smooth curve commands (S, T) have their reflected control
// points materialized, so the resulting Path carries no parser state.
func ParsePathData(d string) (*Path, error) {
	s := &pathScanner{data: []byte(d)}
	p := &Path{}

	var pos, start geom.Vec2
	var prevCtrl geom.Vec2
	var prevKind SegmentKind

	for {
		s.skipSpace()
		if s.i >= len(s.data) {
			break
		}
		c := s.data[s.i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			s.cmd = c
			s.i++
		} else if s.cmd == 0 {
			return nil, fmt.Errorf("path data: expected command at offset %d", s.i)
		} else if s.cmd == 'M' {
			// implicit repetition of a moveto continues as lineto
			s.cmd = 'L'
		} else if s.cmd == 'm' {
			s.cmd = 'l'
		}
		if len(p.Segments) == 0 && s.cmd != 'M' && s.cmd != 'm' {
			return nil, fmt.Errorf("path data: must start with a moveto, got %q", s.cmd)
		}

		rel := s.cmd >= 'a'
		orig := pos
		switch s.cmd {
		case 'M', 'm':
			p1, err := s.point(rel, pos)
			if err != nil {
				return nil, err
			}
			pos, start = p1, p1
			p.Segments = append(p.Segments, Segment{Kind: MoveTo, End: p1})
			prevKind = MoveTo
		case 'L', 'l':
			p1, err := s.point(rel, pos)
			if err != nil {
				return nil, err
			}
			pos = p1
			p.Segments = append(p.Segments, Segment{Kind: LineTo, End: p1})
			prevKind = LineTo
		case 'H', 'h':
			x, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				x += pos.X
			}
			pos = geom.Vec2{X: x, Y: pos.Y}
			p.Segments = append(p.Segments, Segment{Kind: LineTo, End: pos})
			prevKind = LineTo
		case 'V', 'v':
			y, err := s.number()
			if err != nil {
				return nil, err
			}
			if rel {
				y += pos.Y
			}
			pos = geom.Vec2{X: pos.X, Y: y}
			p.Segments = append(p.Segments, Segment{Kind: LineTo, End: pos})
			prevKind = LineTo
		case 'C', 'c':
			c1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			c2, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			p1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			pos, prevCtrl = p1, c2
			p.Segments = append(p.Segments, Segment{Kind: CubeTo, CP1: c1, CP2: c2, End: p1})
			prevKind = CubeTo
		case 'S', 's':
			c1 := pos
			if prevKind == CubeTo {
				c1 = pos.Scale(2).Sub(prevCtrl)
			}
			c2, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			p1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			pos, prevCtrl = p1, c2
			p.Segments = append(p.Segments, Segment{Kind: CubeTo, CP1: c1, CP2: c2, End: p1})
			prevKind = CubeTo
		case 'Q', 'q':
			c1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			p1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			pos, prevCtrl = p1, c1
			p.Segments = append(p.Segments, Segment{Kind: QuadTo, CP1: c1, End: p1})
			prevKind = QuadTo
		case 'T', 't':
			c1 := pos
			if prevKind == QuadTo {
				c1 = pos.Scale(2).Sub(prevCtrl)
			}
			p1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			pos, prevCtrl = p1, c1
			p.Segments = append(p.Segments, Segment{Kind: QuadTo, CP1: c1, End: p1})
			prevKind = QuadTo
		case 'A', 'a':
			rx, err := s.number()
			if err != nil {
				return nil, err
			}
			ry, err := s.number()
			if err != nil {
				return nil, err
			}
			rot, err := s.number()
			if err != nil {
				return nil, err
			}
			large, err := s.flag()
			if err != nil {
				return nil, err
			}
			sweep, err := s.flag()
			if err != nil {
				return nil, err
			}
			p1, err := s.point(rel, orig)
			if err != nil {
				return nil, err
			}
			pos = p1
			p.Segments = append(p.Segments, Segment{
				Kind: ArcTo, End: p1,
				Rx: rx, Ry: ry, Rotation: rot,
				LargeArc: large, Sweep: sweep,
			})
			prevKind = ArcTo
		case 'Z', 'z':
			pos = start
			p.Segments = append(p.Segments, Segment{Kind: ClosePath})
			prevKind = ClosePath
		default:
			return nil, fmt.Errorf("path data: unknown command %q", s.cmd)
		}
	}
	return p, nil
}

type pathScanner struct {
	data []byte
	i    int
	cmd  byte
}

func (s *pathScanner) skipSpace() {
	for s.i < len(s.data) {
		switch s.data[s.i] {
		case ' ', '\t', '\n', '\r', ',':
			s.i++
		default:
			return
		}
	}
}

func (s *pathScanner) number() (float64, error) {
	s.skipSpace()
	v, n := strconv.ParseFloat(s.data[s.i:])
	if n == 0 {
		return 0, fmt.Errorf("path data: expected number at offset %d in %q command", s.i, s.cmd)
	}
	s.i += n
	return v, nil
}

// flag reads an arc flag, which may be written without separators ("11"
// for large-arc and sweep both set).
func (s *pathScanner) flag() (bool, error) {
	s.skipSpace()
	if s.i >= len(s.data) {
		return false, fmt.Errorf("path data: expected flag at end of input")
	}
	switch s.data[s.i] {
	case '0':
		s.i++
		return false, nil
	case '1':
		s.i++
		return true, nil
	}
	return false, fmt.Errorf("path data: expected flag at offset %d", s.i)
}

func (s *pathScanner) point(rel bool, base geom.Vec2) (geom.Vec2, error) {
	x, err := s.number()
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := s.number()
	if err != nil {
		return geom.Vec2{}, err
	}
	v := geom.Vec2{X: x, Y: y}
	if rel {
		v = v.Add(base)
	}
	return v, nil
}
