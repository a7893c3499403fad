/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svg

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/geom"
)

// Style is the resolved paint state of one element after attribute and
// group inheritance.
type Style struct {
	HasFill   bool
	FillColor color.RGBA

	HasStroke   bool
	StrokeColor color.RGBA
	StrokeWidth float64
	LineCap     string // butt, round, square
	LineJoin    string // miter, round, bevel
	MiterLimit  float64
}

func defaultStyle() Style {
	return Style{
		HasFill:     true,
		FillColor:   color.RGBA{A: 255},
		StrokeWidth: 1,
		LineCap:     "butt",
		LineJoin:    "miter",
		MiterLimit:  4,
	}
}

// PathRecord is one drawable element, flattened into polylines in document
// coordinates with all ancestor transforms applied.
type PathRecord struct {
	ID       string
	Subpaths []Subpath
	Style    Style
}

// Document is a parsed SVG file.
type Document struct {
	Width, Height float64
	Records       []PathRecord
	// Warnings lists elements that were skipped because their geometry or
	// attributes could not be parsed. Skipping is per element; a bad path
	// never fails the document.
	Warnings []string
}

// Parse reads an SVG document. Curved segments are flattened with
// curveSegments line steps each. Unknown elements are ignored; malformed
// drawable elements are skipped and reported in Document.Warnings.
func Parse(r io.Reader, curveSegments int) (*Document, error) {
	dec := xml.NewDecoder(r)
	// glyph SVGs exported from font tooling sometimes carry doctype
	// entities; resolve charset-free input leniently
	dec.Strict = false

	doc := &Document{}
	w := &walker{doc: doc, segments: curveSegments}

	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !sawRoot {
				if t.Name.Local != "svg" {
					return nil, fmt.Errorf("svg: root element is <%s>, not <svg>", t.Name.Local)
				}
				sawRoot = true
				w.root(t)
				continue
			}
			w.start(t, dec)
		case xml.EndElement:
			w.end(t)
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("svg: no <svg> root element")
	}
	return doc, nil
}

// frame is the inherited state of one open group element.
type frame struct {
	ctm   Affine2D
	style Style
}

type walker struct {
	doc      *Document
	segments int
	stack    []frame
}

func (w *walker) top() frame {
	if len(w.stack) == 0 {
		return frame{ctm: Identity, style: defaultStyle()}
	}
	return w.stack[len(w.stack)-1]
}

func (w *walker) root(el xml.StartElement) {
	f := frame{ctm: Identity, style: defaultStyle()}
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "width":
			w.doc.Width = parseLength(a.Value)
		case "height":
			w.doc.Height = parseLength(a.Value)
		case "viewBox":
			vb, err := parseNumberList(a.Value)
			if err == nil && len(vb) == 4 {
				if w.doc.Width == 0 {
					w.doc.Width = vb[2]
				}
				if w.doc.Height == 0 {
					w.doc.Height = vb[3]
				}
				// shift the viewBox origin to (0,0)
				f.ctm = f.ctm.Mul(Translate(-vb[0], -vb[1]))
			}
		}
	}
	f.style, _ = applyStyleAttrs(f.style, el.Attr)
	w.stack = append(w.stack, f)
}

func (w *walker) start(el xml.StartElement, dec *xml.Decoder) {
	switch el.Name.Local {
	case "g", "svg":
		f := w.top()
		var err error
		f.ctm, f.style, err = applyElementAttrs(f, el.Attr)
		if err != nil {
			w.warn(el, err)
		}
		w.stack = append(w.stack, f)
	case "defs", "clipPath", "mask", "symbol", "marker", "pattern", "metadata", "style", "title", "desc":
		// non-rendered subtrees
		if err := dec.Skip(); err != nil && err != io.EOF {
			w.warn(el, err)
		}
	case "path", "rect", "circle", "ellipse", "line", "polyline", "polygon":
		if err := w.shape(el); err != nil {
			w.warn(el, err)
		}
	}
}

func (w *walker) end(el xml.EndElement) {
	switch el.Name.Local {
	case "g", "svg":
		if len(w.stack) > 1 {
			w.stack = w.stack[:len(w.stack)-1]
		}
	}
}

func (w *walker) warn(el xml.StartElement, err error) {
	id := attrValue(el.Attr, "id")
	if id == "" {
		id = "<" + el.Name.Local + ">"
	}
	w.doc.Warnings = append(w.doc.Warnings, fmt.Sprintf("%s: %v", id, err))
}

func (w *walker) shape(el xml.StartElement) error {
	f := w.top()
	ctm, style, err := applyElementAttrs(f, el.Attr)
	if err != nil {
		return err
	}
	if !style.HasFill && !style.HasStroke {
		return nil // invisible element
	}

	var path *Path
	switch el.Name.Local {
	case "path":
		d := attrValue(el.Attr, "d")
		if strings.TrimSpace(d) == "" {
			return nil
		}
		path, err = ParsePathData(d)
	case "rect":
		path, err = rectPath(el.Attr)
	case "circle":
		path, err = circlePath(el.Attr)
	case "ellipse":
		path, err = ellipsePath(el.Attr)
	case "line":
		path, err = linePath(el.Attr)
	case "polyline":
		path, err = polyPath(el.Attr, false)
	case "polygon":
		path, err = polyPath(el.Attr, true)
	}
	if err != nil {
		return err
	}
	if path == nil || len(path.Segments) == 0 {
		return nil
	}

	subs := path.Flatten(w.segments)
	for i := range subs {
		pts := subs[i].Points
		for j := range pts {
			pts[j] = ctm.Apply(pts[j])
		}
	}
	if len(subs) == 0 {
		return nil
	}
	style.StrokeWidth *= ctm.ScaleHint()
	w.doc.Records = append(w.doc.Records, PathRecord{
		ID:       attrValue(el.Attr, "id"),
		Subpaths: subs,
		Style:    style,
	})
	return nil
}

// applyElementAttrs resolves an element's transform and paint attributes
// against the inherited frame.
func applyElementAttrs(f frame, attrs []xml.Attr) (Affine2D, Style, error) {
	ctm := f.ctm
	if tattr := attrValue(attrs, "transform"); tattr != "" {
		m, err := ParseTransform(tattr)
		if err != nil {
			return ctm, f.style, err
		}
		ctm = ctm.Mul(m)
	}
	style, err := applyStyleAttrs(f.style, attrs)
	return ctm, style, err
}

func applyStyleAttrs(base Style, attrs []xml.Attr) (Style, error) {
	apply := func(name, value string) {
		value = strings.TrimSpace(value)
		switch name {
		case "fill":
			base.FillColor, base.HasFill = ParseColor(value)
		case "stroke":
			base.StrokeColor, base.HasStroke = ParseColor(value)
		case "stroke-width":
			if v := parseLength(value); v >= 0 {
				base.StrokeWidth = v
			}
		case "stroke-linecap":
			base.LineCap = value
		case "stroke-linejoin":
			base.LineJoin = value
		case "stroke-miterlimit":
			if v := parseLength(value); v >= 1 {
				base.MiterLimit = v
			}
		}
	}
	for _, a := range attrs {
		if a.Name.Local == "style" {
			for _, decl := range strings.Split(a.Value, ";") {
				k, v, ok := strings.Cut(decl, ":")
				if ok {
					apply(strings.TrimSpace(k), v)
				}
			}
		} else {
			apply(a.Name.Local, a.Value)
		}
	}
	if base.StrokeWidth <= 0 {
		base.HasStroke = false
	}
	return base, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseLength parses a numeric attribute, discarding a trailing unit
// suffix (px, pt, mm). Returns 0 when unparsable.
func parseLength(s string) float64 {
	b := []byte(strings.TrimSpace(s))
	v, n := strconv.ParseFloat(b)
	if n == 0 {
		return 0
	}
	return v
}

func attrFloat(attrs []xml.Attr, name string) float64 {
	return parseLength(attrValue(attrs, name))
}

func rectPath(attrs []xml.Attr) (*Path, error) {
	x := attrFloat(attrs, "x")
	y := attrFloat(attrs, "y")
	w := attrFloat(attrs, "width")
	h := attrFloat(attrs, "height")
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	rx := attrFloat(attrs, "rx")
	ry := attrFloat(attrs, "ry")
	if rx == 0 {
		rx = ry
	}
	if ry == 0 {
		ry = rx
	}
	if rx > w/2 {
		rx = w / 2
	}
	if ry > h/2 {
		ry = h / 2
	}
	p := &Path{}
	if rx <= 0 || ry <= 0 {
		p.Segments = []Segment{
			{Kind: MoveTo, End: geom.Vec2{X: x, Y: y}},
			{Kind: LineTo, End: geom.Vec2{X: x + w, Y: y}},
			{Kind: LineTo, End: geom.Vec2{X: x + w, Y: y + h}},
			{Kind: LineTo, End: geom.Vec2{X: x, Y: y + h}},
			{Kind: ClosePath},
		}
		return p, nil
	}
	arc := func(to geom.Vec2) Segment {
		return Segment{Kind: ArcTo, End: to, Rx: rx, Ry: ry, Sweep: true}
	}
	p.Segments = []Segment{
		{Kind: MoveTo, End: geom.Vec2{X: x + rx, Y: y}},
		{Kind: LineTo, End: geom.Vec2{X: x + w - rx, Y: y}},
		arc(geom.Vec2{X: x + w, Y: y + ry}),
		{Kind: LineTo, End: geom.Vec2{X: x + w, Y: y + h - ry}},
		arc(geom.Vec2{X: x + w - rx, Y: y + h}),
		{Kind: LineTo, End: geom.Vec2{X: x + rx, Y: y + h}},
		arc(geom.Vec2{X: x, Y: y + h - ry}),
		{Kind: LineTo, End: geom.Vec2{X: x, Y: y + ry}},
		arc(geom.Vec2{X: x + rx, Y: y}),
		{Kind: ClosePath},
	}
	return p, nil
}

func circlePath(attrs []xml.Attr) (*Path, error) {
	r := attrFloat(attrs, "r")
	return ellipseSegments(attrFloat(attrs, "cx"), attrFloat(attrs, "cy"), r, r)
}

func ellipsePath(attrs []xml.Attr) (*Path, error) {
	return ellipseSegments(attrFloat(attrs, "cx"), attrFloat(attrs, "cy"),
		attrFloat(attrs, "rx"), attrFloat(attrs, "ry"))
}

func ellipseSegments(cx, cy, rx, ry float64) (*Path, error) {
	if rx <= 0 || ry <= 0 {
		return nil, nil
	}
	arc := func(to geom.Vec2) Segment {
		return Segment{Kind: ArcTo, End: to, Rx: rx, Ry: ry, Sweep: true}
	}
	return &Path{Segments: []Segment{
		{Kind: MoveTo, End: geom.Vec2{X: cx + rx, Y: cy}},
		arc(geom.Vec2{X: cx - rx, Y: cy}),
		arc(geom.Vec2{X: cx + rx, Y: cy}),
		{Kind: ClosePath},
	}}, nil
}

func linePath(attrs []xml.Attr) (*Path, error) {
	return &Path{Segments: []Segment{
		{Kind: MoveTo, End: geom.Vec2{X: attrFloat(attrs, "x1"), Y: attrFloat(attrs, "y1")}},
		{Kind: LineTo, End: geom.Vec2{X: attrFloat(attrs, "x2"), Y: attrFloat(attrs, "y2")}},
	}}, nil
}

func polyPath(attrs []xml.Attr, closed bool) (*Path, error) {
	nums, err := parseNumberList(attrValue(attrs, "points"))
	if err != nil {
		return nil, err
	}
	if len(nums) < 4 {
		return nil, nil
	}
	p := &Path{}
	for i := 0; i+1 < len(nums); i += 2 {
		pt := geom.Vec2{X: nums[i], Y: nums[i+1]}
		if i == 0 {
			p.Segments = append(p.Segments, Segment{Kind: MoveTo, End: pt})
		} else {
			p.Segments = append(p.Segments, Segment{Kind: LineTo, End: pt})
		}
	}
	if closed {
		p.Segments = append(p.Segments, Segment{Kind: ClosePath})
	}
	return p, nil
}
