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
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p geom.Vec2) geom.Vec2 {
	return geom.Vec2{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ScaleHint returns a representative scalar scale factor of the transform,
// used to scale stroke widths under non-uniform transforms.
func (m Affine2D) ScaleHint() float64 {
	// geometric mean of the axis scale factors
	sx := math.Hypot(m.A, m.B)
	sy := math.Hypot(m.C, m.D)
	return math.Sqrt(sx * sy)
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// ParseTransform parses an SVG transform attribute value: a whitespace
// separated list of matrix, translate, scale, rotate, skewX and skewY
// function calls, composed left to right.
func ParseTransform(attr string) (Affine2D, error) {
	m := Identity
	rest := strings.TrimSpace(attr)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closeIdx := strings.IndexByte(rest, ')')
		if open < 0 || closeIdx < open {
			return Identity, fmt.Errorf("transform: malformed function in %q", attr)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumberList(rest[open+1 : closeIdx])
		if err != nil {
			return Identity, fmt.Errorf("transform %s: %w", name, err)
		}
		var fn Affine2D
		switch {
		case name == "matrix" && len(args) == 6:
			fn = Affine2D{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}
		case name == "translate" && len(args) == 1:
			fn = Translate(args[0], 0)
		case name == "translate" && len(args) == 2:
			fn = Translate(args[0], args[1])
		case name == "scale" && len(args) == 1:
			fn = Scale(args[0], args[0])
		case name == "scale" && len(args) == 2:
			fn = Scale(args[0], args[1])
		case name == "rotate" && len(args) == 1:
			fn = Rotate(args[0] * math.Pi / 180)
		case name == "rotate" && len(args) == 3:
			fn = Translate(args[1], args[2]).
				Mul(Rotate(args[0] * math.Pi / 180)).
				Mul(Translate(-args[1], -args[2]))
		case name == "skewX" && len(args) == 1:
			fn = Affine2D{A: 1, C: math.Tan(args[0] * math.Pi / 180), D: 1}
		case name == "skewY" && len(args) == 1:
			fn = Affine2D{A: 1, B: math.Tan(args[0] * math.Pi / 180), D: 1}
		default:
			return Identity, fmt.Errorf("transform: unsupported %s with %d args", name, len(args))
		}
		m = m.Mul(fn)
		rest = strings.TrimLeft(strings.TrimSpace(rest[closeIdx+1:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return m, nil
}

func parseNumberList(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r', ',':
			i++
			continue
		}
		v, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, fmt.Errorf("expected number at offset %d", i)
		}
		out = append(out, v)
		i += n
	}
	return out, nil
}
