package meshing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddQuadAttributes(t *testing.T) {
	for _, f := range AllFaces {
		b := NewChunkMeshBuilder()
		b.AddQuad(mgl32.Vec3{1, 2, 3}, f, 0.5, 0.25, red)
		m := b.Build()

		require.Len(t, m.Positions, 4, f.String())
		require.Len(t, m.Normals, 4)
		require.Len(t, m.UVs, 4)
		require.Len(t, m.Colors, 4)
		require.Len(t, m.Indices, 6)
		assert.Equal(t, 1, b.QuadCount())
		assert.Equal(t, len(m.Positions)/4, m.QuadCount())

		for i := 0; i < 4; i++ {
			assert.Equal(t, f.Normal(), m.Normals[i])
			assert.Equal(t, red, m.Colors[i])
			// every corner lies in the face plane through the center
			assert.InDelta(t, []float32{1, 2, 3}[f.Axis()], m.Positions[i][f.Axis()], 1e-6)
		}

		// both triangles wind counter-clockwise around the outward normal
		for tri := 0; tri < 2; tri++ {
			p0 := m.Positions[m.Indices[tri*3]]
			p1 := m.Positions[m.Indices[tri*3+1]]
			p2 := m.Positions[m.Indices[tri*3+2]]
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			assert.Greater(t, n.Dot(f.Normal()), float32(0), "%s triangle %d", f, tri)
		}

		var maxU, maxV float32
		for _, uv := range m.UVs {
			if uv[0] > maxU {
				maxU = uv[0]
			}
			if uv[1] > maxV {
				maxV = uv[1]
			}
		}
		assert.InDelta(t, 0.5, maxU, 1e-6)
		assert.InDelta(t, 0.25, maxV, 1e-6)
	}
}

func TestBuilderIndicesOffsetPerQuad(t *testing.T) {
	b := NewChunkMeshBuilder()
	assert.True(t, b.IsEmpty())
	b.AddQuad(mgl32.Vec3{}, PosX, 1, 1, red)
	b.AddQuad(mgl32.Vec3{}, NegY, 1, 1, blue)
	m := b.Build()
	assert.False(t, m.IsEmpty())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}, m.Indices)

	// later quads never leak into an already built mesh
	b.AddQuad(mgl32.Vec3{}, PosZ, 1, 1, red)
	assert.Equal(t, 2, m.QuadCount())
	assert.Equal(t, 3, b.QuadCount())
}

func TestInterleaved(t *testing.T) {
	b := NewChunkMeshBuilder()
	b.AddQuad(mgl32.Vec3{0, 0, 0}, PosY, 1, 1, blue)
	m := b.Build()
	flat := m.Interleaved()
	require.Len(t, flat, 4*VertexStride)
	assert.Equal(t, []float32{0, 1, 0}, flat[3:6])
	assert.Equal(t, []float32{0, 0, 1, 1}, flat[8:12])
}

func TestFaceTable(t *testing.T) {
	for _, f := range AllFaces {
		o := f.Offset()
		n := f.Normal()
		assert.Equal(t, mgl32.Vec3{float32(o[0]), float32(o[1]), float32(o[2])}, n)
		assert.Equal(t, f, f.Opposite().Opposite())
		assert.Equal(t, n.Mul(-1), f.Opposite().Normal())
		assert.Equal(t, n[f.Axis()] > 0, f.Positive())
	}
}
