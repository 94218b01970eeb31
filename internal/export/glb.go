package export

import (
	"errors"
	"fmt"

	"subvox/internal/meshing"
	"subvox/internal/world"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoGeometry is returned when there is nothing to export.
var ErrNoGeometry = errors.New("no chunk meshes to export")

const generator = "subvox"

// Document converts the meshes of a pass into a glTF document with one mesh
// and one node per chunk, in coordinate order. Vertex positions are already in
// world space, so nodes carry no transform.
func Document(meshes map[world.ChunkCoord]meshing.Mesh, coords []world.ChunkCoord) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator

	hasAlpha := false
	for _, coord := range coords {
		m, ok := meshes[coord]
		if !ok || m.IsEmpty() {
			continue
		}

		positions := make([][3]float32, len(m.Positions))
		normals := make([][3]float32, len(m.Normals))
		uvs := make([][2]float32, len(m.UVs))
		colors := make([][4]float32, len(m.Colors))
		for i := range m.Positions {
			positions[i] = m.Positions[i]
			normals[i] = m.Normals[i]
			uvs[i] = m.UVs[i]
			colors[i] = m.Colors[i]
			if colors[i][3] < 1.0 {
				hasAlpha = true
			}
		}
		indices := make([]uint32, len(m.Indices))
		copy(indices, m.Indices)

		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		uvAccessor := modeler.WriteTextureCoord(doc, uvs)
		colorAccessor := modeler.WriteColor(doc, colors)
		indicesAccessor := modeler.WriteIndices(doc, indices)

		prim := &gltf.Primitive{
			Attributes: map[string]uint32{
				gltf.POSITION:   uint32(posAccessor),
				gltf.NORMAL:     uint32(normalAccessor),
				gltf.TEXCOORD_0: uint32(uvAccessor),
				gltf.COLOR_0:    uint32(colorAccessor),
			},
			Indices:  gltf.Index(uint32(indicesAccessor)),
			Material: gltf.Index(0),
		}

		name := fmt.Sprintf("chunk_%d_%d_%d", coord.X, coord.Y, coord.Z)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	if len(doc.Meshes) == 0 {
		return nil, ErrNoGeometry
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	material := &gltf.Material{Name: "voxel", PBRMetallicRoughness: pbr}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	} else {
		material.AlphaMode = gltf.AlphaOpaque
	}
	doc.Materials = []*gltf.Material{material}
	return doc, nil
}

// WriteGLB saves the result of a mesh pass as a binary glTF file.
func WriteGLB(path string, res *meshing.Result) error {
	doc, err := Document(res.Meshes, res.Coords)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("write glb %s: %w", path, err)
	}
	return nil
}
