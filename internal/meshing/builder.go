package meshing

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per interleaved vertex
// (pos.xyz + normal.xyz + uv.st + color.rgba).
const VertexStride = 12

// quadCorners lists, per face, the (u,v) sign of each of the four corners.
// Order is counter-clockwise seen from outside the face, so the triangles
// (0,1,2) and (0,2,3) both face along the normal.
var quadCorners = [6][4][2]float32{
	PosX: {{-1, -1}, {-1, 1}, {1, 1}, {1, -1}},
	NegX: {{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
	PosY: {{-1, -1}, {-1, 1}, {1, 1}, {1, -1}},
	NegY: {{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
	PosZ: {{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
	NegZ: {{-1, -1}, {-1, 1}, {1, 1}, {1, -1}},
}

var quadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

// Mesh is the renderer-ready geometry of one chunk.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec4 // linear RGBA
	Indices   []uint32
}

// IsEmpty reports whether the mesh has no geometry.
func (m Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// QuadCount returns the number of quads (4 vertices each).
func (m Mesh) QuadCount() int {
	return len(m.Positions) / 4
}

// Interleaved packs all vertex attributes into one flat buffer with
// VertexStride floats per vertex, ready for a single VBO upload.
func (m Mesh) Interleaved() []float32 {
	out := make([]float32, 0, len(m.Positions)*VertexStride)
	for i, p := range m.Positions {
		n, uv, c := m.Normals[i], m.UVs[i], m.Colors[i]
		out = append(out,
			p[0], p[1], p[2],
			n[0], n[1], n[2],
			uv[0], uv[1],
			c[0], c[1], c[2], c[3],
		)
	}
	return out
}

// Bounds returns the axis-aligned box enclosing all positions. Both corners
// are zero for an empty mesh.
func (m Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range m.Positions {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// ChunkMeshBuilder accumulates quads for one chunk. It is discarded after Build.
type ChunkMeshBuilder struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	colors    []mgl32.Vec4
	indices   []uint32
}

// NewChunkMeshBuilder returns an empty builder.
func NewChunkMeshBuilder() *ChunkMeshBuilder {
	return &ChunkMeshBuilder{}
}

// AddQuad appends one quad centered at center, lying in the plane of face.
// width spans the face's u axis and height its v axis. UVs scale with the
// quad size so tiled textures repeat instead of stretching.
func (b *ChunkMeshBuilder) AddQuad(center mgl32.Vec3, face Face, width, height float32, color mgl32.Vec4) {
	info := &faceTable[face]
	base := uint32(len(b.positions))
	hw, hh := width/2, height/2
	for _, c := range quadCorners[face] {
		p := center
		p[info.u] += c[0] * hw
		p[info.v] += c[1] * hh
		b.positions = append(b.positions, p)
		b.normals = append(b.normals, info.normal)
		b.uvs = append(b.uvs, mgl32.Vec2{(c[0] + 1) / 2 * width, (c[1] + 1) / 2 * height})
		b.colors = append(b.colors, color)
	}
	for _, i := range quadIndices {
		b.indices = append(b.indices, base+i)
	}
}

// IsEmpty reports whether no quad was added.
func (b *ChunkMeshBuilder) IsEmpty() bool {
	return len(b.positions) == 0
}

// QuadCount returns the number of quads added so far.
func (b *ChunkMeshBuilder) QuadCount() int {
	return len(b.positions) / 4
}

// Build finalizes the accumulated buffers. Later AddQuad calls do not alter
// the returned mesh.
func (b *ChunkMeshBuilder) Build() Mesh {
	return Mesh{
		Positions: b.positions[:len(b.positions):len(b.positions)],
		Normals:   b.normals[:len(b.normals):len(b.normals)],
		UVs:       b.uvs[:len(b.uvs):len(b.uvs)],
		Colors:    b.colors[:len(b.colors):len(b.colors)],
		Indices:   b.indices[:len(b.indices):len(b.indices)],
	}
}
