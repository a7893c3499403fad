/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svg

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/tdewolff/parse/v2/strconv"
)

// ParseColor parses an SVG paint value. The second return value is false
// when the value is "none" or cannot be parsed as a color; callers treat
// both as absent paint.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return color.RGBA{}, false
	case "currentcolor":
		return color.RGBA{A: 255}, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseRGBFunc(s[4 : len(s)-1])
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	return color.RGBA{}, false
}

func parseHexColor(hex string) (color.RGBA, bool) {
	digit := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		}
		return 0, false
	}
	switch len(hex) {
	case 3:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			d, ok := digit(hex[i])
			if !ok {
				return color.RGBA{}, false
			}
			v[i] = d*16 + d
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 255}, true
	case 6:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			hi, ok1 := digit(hex[2*i])
			lo, ok2 := digit(hex[2*i+1])
			if !ok1 || !ok2 {
				return color.RGBA{}, false
			}
			v[i] = hi*16 + lo
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 255}, true
	}
	return color.RGBA{}, false
}

func parseRGBFunc(args string) (color.RGBA, bool) {
	b := []byte(args)
	var chans [3]uint8
	i := 0
	for c := 0; c < 3; c++ {
		for i < len(b) && (b[i] == ' ' || b[i] == ',' || b[i] == '\t') {
			i++
		}
		v, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return color.RGBA{}, false
		}
		i += n
		if i < len(b) && b[i] == '%' {
			i++
			v = v * 255 / 100
		}
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		chans[c] = uint8(v + 0.5)
	}
	return color.RGBA{R: chans[0], G: chans[1], B: chans[2], A: 255}, true
}
