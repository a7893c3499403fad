/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gltf serializes a finished pipeline result as glTF 2.0, either
// binary (glb) or embedded JSON (gltf). This is the only layer that
// narrows coordinates to float32.
package gltf

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/pipeline"
	"github.com/atticusofsparta/svg-2-gltf-webapp/internal/version"
)

// Format selects the container variant.
type Format string

const (
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
)

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "glb", "":
		return FormatGLB, nil
	case "gltf":
		return FormatGLTF, nil
	}
	return "", fmt.Errorf("gltf: unknown format %q", s)
}

// Options controls serialization.
type Options struct {
	Format Format
	// DoubleSided marks the material as visible from both sides. It is a
	// display policy; geometry is never duplicated for it.
	DoubleSided bool
}

// Export serializes the result mesh. An empty mesh produces a valid
// document with a node and no primitives, so downstream viewers load it
// without errors.
func Export(res *pipeline.Result, opts Options) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatGLB
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = version.String()

	m := &gltf.Mesh{Name: "svg"}
	if res.Mesh != nil && !res.Mesh.Empty() {
		prim, err := buildPrimitive(doc, res, opts)
		if err != nil {
			return nil, err
		}
		m.Primitives = []*gltf.Primitive{prim}
	}
	doc.Meshes = append(doc.Meshes, m)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "svg", Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = opts.Format == FormatGLB
	if !enc.AsBinary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("gltf: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func buildPrimitive(doc *gltf.Document, res *pipeline.Result, opts Options) (*gltf.Primitive, error) {
	src := res.Mesh
	positions := make([][3]float32, len(src.Positions))
	for i, p := range src.Positions {
		positions[i] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
	}
	normals := make([][3]float32, len(src.Normals))
	for i, n := range src.Normals {
		normals[i] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
	}
	if len(normals) != len(positions) {
		return nil, fmt.Errorf("gltf: %d normals for %d positions", len(normals), len(positions))
	}

	posAcc := modeler.WritePosition(doc, positions)
	normAcc := modeler.WriteNormal(doc, normals)

	c := res.MeshColor
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "svg",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				1,
			},
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(0.8),
		},
		DoubleSided: opts.DoubleSided,
	})

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: posAcc,
			gltf.NORMAL:   normAcc,
		},
		Material: gltf.Index(0),
	}
	if res.Wireframe {
		prim.Mode = gltf.PrimitiveLines
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, edgeIndices(src.Indices)))
	} else {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, append([]uint32(nil), src.Indices...)))
	}
	return prim, nil
}

// edgeIndices converts triangle indices to the unique undirected edge list
// used by wireframe line primitives.
func edgeIndices(tris []uint32) []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(tris))
	out := make([]uint32, 0, len(tris)*2)
	for i := 0; i+3 <= len(tris); i += 3 {
		for j := 0; j < 3; j++ {
			a, b := tris[i+j], tris[i+(j+1)%3]
			if a > b {
				a, b = b, a
			}
			k := edge{a, b}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, a, b)
		}
	}
	return out
}
