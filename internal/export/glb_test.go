package export

import (
	"context"
	"path/filepath"
	"testing"

	"subvox/internal/meshing"
	"subvox/internal/palette"
	"subvox/internal/world"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshVoxels(t *testing.T, positions ...world.Pos) *meshing.Result {
	t.Helper()
	voxels := make([]world.Voxel, len(positions))
	for i, p := range positions {
		voxels[i] = world.Voxel{Pos: p, Type: "stone"}
	}
	ms := &meshing.Mesher{ChunkSize: 16, Workers: 1, Color: palette.Default().ResolveType}
	res, err := ms.BuildChunks(context.Background(), world.NewMap(voxels))
	require.NoError(t, err)
	return res
}

func TestWriteGLBRoundTrip(t *testing.T) {
	res := meshVoxels(t, world.Pos{}, world.Pos{X: 40}, world.Pos{Y: -20})
	require.Equal(t, 3, res.Chunks())

	path := filepath.Join(t.TempDir(), "out.glb")
	require.NoError(t, WriteGLB(path, res))

	doc, err := gltf.Open(path)
	require.NoError(t, err)
	assert.Equal(t, generator, doc.Asset.Generator)
	require.Len(t, doc.Meshes, 3)
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Scenes[0].Nodes, 3)
	require.Len(t, doc.Materials, 1)
	assert.Equal(t, gltf.AlphaOpaque, doc.Materials[0].AlphaMode)

	// nodes follow the sorted chunk order
	assert.Equal(t, "chunk_0_-2_0", doc.Nodes[0].Name)
	assert.Equal(t, "chunk_0_0_0", doc.Nodes[1].Name)
	assert.Equal(t, "chunk_2_0_0", doc.Nodes[2].Name)

	for i, c := range res.Coords {
		m := res.Meshes[c]
		prim := doc.Meshes[i].Primitives[0]
		assert.EqualValues(t, len(m.Positions), doc.Accessors[prim.Attributes[gltf.POSITION]].Count)
		assert.EqualValues(t, len(m.Indices), doc.Accessors[*prim.Indices].Count)
		assert.Contains(t, prim.Attributes, gltf.TEXCOORD_0)
		assert.Contains(t, prim.Attributes, gltf.COLOR_0)
	}
}

func TestDocumentWithoutGeometry(t *testing.T) {
	_, err := Document(nil, nil)
	assert.ErrorIs(t, err, ErrNoGeometry)

	res := meshVoxels(t)
	assert.ErrorIs(t, WriteGLB(filepath.Join(t.TempDir(), "empty.glb"), res), ErrNoGeometry)
}

func TestDocumentTranslucentColors(t *testing.T) {
	b := meshing.NewChunkMeshBuilder()
	b.AddQuad([3]float32{}, meshing.PosY, 1, 1, [4]float32{1, 1, 1, 0.5})
	coord := world.ChunkCoord{}
	doc, err := Document(map[world.ChunkCoord]meshing.Mesh{coord: b.Build()}, []world.ChunkCoord{coord})
	require.NoError(t, err)
	assert.Equal(t, gltf.AlphaBlend, doc.Materials[0].AlphaMode)
}
