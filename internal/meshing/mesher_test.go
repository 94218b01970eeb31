package meshing

import (
	"context"
	"testing"
	"time"

	"subvox/internal/geometry"
	"subvox/internal/palette"
	"subvox/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stone(x, y, z int) world.Voxel {
	return world.Voxel{Pos: world.Pos{X: x, Y: y, Z: z}, Type: "stone"}
}

func uniformMesher() *Mesher {
	return &Mesher{ChunkSize: 16, Workers: 1, Color: palette.Default().ResolveType}
}

func meshAll(t *testing.T, ms *Mesher, voxels ...world.Voxel) *Result {
	t.Helper()
	res, err := ms.BuildChunks(context.Background(), world.NewMap(voxels))
	require.NoError(t, err)
	return res
}

func totalArea(res *Result) float32 {
	var a float32
	for _, m := range res.Meshes {
		for q := 0; q < m.QuadCount(); q++ {
			a += quadArea(m, q)
		}
	}
	return a
}

func TestOccupancyNeighbor(t *testing.T) {
	g := NewOccupancyGrid()
	origin := world.Pos{}
	g.Insert(origin, origin)
	assert.False(t, g.HasNeighbor(origin, origin, PosX))

	g.Insert(origin, world.Pos{X: 1})
	assert.True(t, g.HasNeighbor(origin, origin, PosX))
	assert.False(t, g.HasNeighbor(origin, origin, NegX))
	assert.Equal(t, 2, g.Len())

	// crossing a voxel boundary
	g.Insert(origin, world.Pos{X: 7})
	assert.False(t, g.HasNeighbor(origin, world.Pos{X: 7}, PosX))
	g.Insert(world.Pos{X: 1}, world.Pos{})
	assert.True(t, g.HasNeighbor(origin, world.Pos{X: 7}, PosX))
	assert.True(t, g.HasNeighbor(world.Pos{X: 1}, world.Pos{}, NegX))

	// negative voxels map below zero
	assert.Equal(t, [3]int{-8, -1, 15}, GlobalCell(world.Pos{X: -1, Y: -1, Z: 1}, world.Pos{Y: 7, Z: 7}))
}

func TestOccupancyInsertIgnoresOutOfCellSub(t *testing.T) {
	g := NewOccupancyGrid()
	origin := world.Pos{}
	for _, sub := range []world.Pos{{X: 8}, {Y: -1}, {Z: 9}, {X: -8, Y: 3}} {
		g.Insert(origin, sub)
	}
	assert.Zero(t, g.Len())
	// {X: 8} would otherwise alias cell 0 of the +X voxel
	assert.False(t, g.Contains(GlobalCell(world.Pos{X: 1}, origin)))
	assert.False(t, g.Contains(GlobalCell(world.Pos{Y: -1}, world.Pos{Y: 7})))

	g.Insert(origin, world.Pos{X: 7, Y: 7, Z: 7})
	assert.Equal(t, 1, g.Len())
}

func TestSingleFullVoxel(t *testing.T) {
	res := meshAll(t, uniformMesher(), stone(0, 0, 0))
	require.Equal(t, 1, res.Chunks())
	assert.Equal(t, 6, res.Quads)
	assert.Equal(t, 6*64, res.Faces)

	m := res.Meshes[world.ChunkCoord{}]
	seen := make(map[Face]bool)
	for q := 0; q < m.QuadCount(); q++ {
		assert.InDelta(t, 1.0, quadArea(m, q), 1e-5)
		n := m.Normals[q*4]
		for _, f := range AllFaces {
			if f.Normal() == n {
				seen[f] = true
			}
		}
	}
	assert.Len(t, seen, 6)
	min, max := m.Bounds()
	assert.InDelta(t, -0.5, min[0], 1e-6)
	assert.InDelta(t, 0.5, max[2], 1e-6)
}

func TestSingleVoxelHashedColors(t *testing.T) {
	ms := uniformMesher()
	ms.Color = palette.Default().ResolveVoxel
	res := meshAll(t, ms, stone(3, -2, 5))
	assert.GreaterOrEqual(t, res.Quads, 6)
	assert.LessOrEqual(t, res.Quads, 6*64)
	assert.InDelta(t, 6.0, totalArea(res), 1e-3)
}

func TestTwoAdjacentVoxelsCullSharedFace(t *testing.T) {
	res := meshAll(t, uniformMesher(), stone(0, 0, 0), stone(1, 0, 0))
	assert.Equal(t, 10*64, res.Faces)
	// four 2x1 sides plus two 1x1 ends
	assert.Equal(t, 6, res.Quads)
	assert.InDelta(t, 10.0, totalArea(res), 1e-4)
}

func TestCrossChunkCulling(t *testing.T) {
	res := meshAll(t, uniformMesher(), stone(15, 0, 0), stone(16, 0, 0))
	require.Equal(t, 2, res.Chunks())
	assert.Equal(t, []world.ChunkCoord{{}, {X: 1}}, res.Coords)
	assert.Equal(t, 5, res.Meshes[world.ChunkCoord{}].QuadCount())
	assert.Equal(t, 5, res.Meshes[world.ChunkCoord{X: 1}].QuadCount())
}

func TestFullyOccludedChunkIsOmitted(t *testing.T) {
	ms := uniformMesher()
	ms.ChunkSize = 1
	var voxels []world.Voxel
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				voxels = append(voxels, stone(x, y, z))
			}
		}
	}
	res := meshAll(t, ms, voxels...)
	assert.Equal(t, 27, res.Occupied)
	assert.Equal(t, 26, res.Chunks())
	_, ok := res.Meshes[world.ChunkCoord{}]
	assert.False(t, ok)
}

func TestPatternsAndRotationMesh(t *testing.T) {
	platform := stone(0, 0, 0).WithPattern(geometry.PatternPlatformXZ)
	res := meshAll(t, uniformMesher(), platform)
	// a 8x1x8 slab: top, bottom and four thin sides
	assert.Equal(t, 6, res.Quads)
	assert.InDelta(t, 2*1.0+4*0.125, totalArea(res), 1e-4)

	stairs := stone(0, 0, 0).WithPattern(geometry.PatternStaircaseX)
	rotated := stone(0, 0, 0).WithPattern(geometry.PatternStaircaseX).
		WithRotation(geometry.NewRotationState(geometry.AxisY, 1))
	a := meshAll(t, uniformMesher(), stairs)
	b := meshAll(t, uniformMesher(), rotated)
	assert.Equal(t, a.Faces, b.Faces)
	assert.InDelta(t, totalArea(a), totalArea(b), 1e-4)
}

func TestFenceConnectionsCullTouchingRails(t *testing.T) {
	f1 := stone(0, 0, 0).WithPattern(geometry.PatternFence)
	f2 := stone(1, 0, 0).WithPattern(geometry.PatternFence)
	lone := meshAll(t, uniformMesher(), f1)
	pair := meshAll(t, uniformMesher(), f1, f2)
	// connected fences gain rails; rail ends meeting at the shared boundary
	// and at each post are hidden
	assert.Greater(t, pair.Faces, 2*lone.Faces)
	assert.Equal(t, 1, pair.Chunks())
	assert.Equal(t, 72, lone.Faces)
	assert.Equal(t, 2*104, pair.Faces)
}

func TestParallelMatchesSerial(t *testing.T) {
	var voxels []world.Voxel
	for x := -20; x < 20; x += 3 {
		for z := -20; z < 20; z += 2 {
			voxels = append(voxels, stone(x, (x*z)%5, z))
			voxels = append(voxels, stone(x+1, (x*z)%5, z).WithPattern(geometry.PatternPillar))
		}
	}
	serial := &Mesher{ChunkSize: 8, Workers: 1, Color: palette.Default().ResolveVoxel}
	parallel := &Mesher{ChunkSize: 8, Workers: 4, Color: palette.Default().ResolveVoxel}
	a := meshAll(t, serial, voxels...)
	b := meshAll(t, parallel, voxels...)
	require.Equal(t, a.Coords, b.Coords)
	assert.Equal(t, a.Quads, b.Quads)
	assert.Equal(t, a.Faces, b.Faces)
	for _, c := range a.Coords {
		assert.Equal(t, a.Meshes[c], b.Meshes[c], c.String())
	}
}

func TestBuildChunksCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := uniformMesher().BuildChunks(ctx, world.NewMap([]world.Voxel{stone(0, 0, 0)}))
	assert.ErrorIs(t, err, context.Canceled)
}

type recorder struct {
	chunks, quads, faces int
	calls                int
}

func (r *recorder) ObservePass(chunks, quads, faces int, _ time.Duration) {
	r.chunks, r.quads, r.faces = chunks, quads, faces
	r.calls++
}

func TestStatsRecorder(t *testing.T) {
	rec := &recorder{}
	ms := uniformMesher()
	ms.Stats = rec
	meshAll(t, ms, stone(0, 0, 0), stone(40, 0, 0))
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 2, rec.chunks)
	assert.Equal(t, 12, rec.quads)
}

func TestEmptyMap(t *testing.T) {
	res := meshAll(t, uniformMesher())
	assert.Equal(t, 0, res.Chunks())
	assert.Equal(t, 0, res.Quads)
	assert.Empty(t, res.Coords)
}

func BenchmarkBuildChunks(b *testing.B) {
	var voxels []world.Voxel
	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			voxels = append(voxels, stone(x, 0, z))
		}
	}
	m := world.NewMap(voxels)
	ms := &Mesher{ChunkSize: 16, Workers: 4, Color: palette.Default().ResolveType}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ms.BuildChunks(context.Background(), m); err != nil {
			b.Fatal(err)
		}
	}
}
