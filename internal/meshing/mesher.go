package meshing

import (
	"context"
	"log/slog"
	"time"

	"subvox/internal/config"
	"subvox/internal/geometry"
	"subvox/internal/palette"
	"subvox/internal/profiling"
	"subvox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ColorFunc resolves the palette index and color of one sub-voxel cell. It
// must be deterministic; faces only merge when their indices are equal.
type ColorFunc func(v world.Voxel, sub world.Pos) (int, mgl32.Vec4)

// StatsRecorder receives per-pass statistics.
type StatsRecorder interface {
	ObservePass(chunks, quads, faces int, elapsed time.Duration)
}

// Snapshot is the read-only state shared by every chunk job of one pass: the
// occupancy grid and the expanded geometry of each voxel.
type Snapshot struct {
	Grid  *OccupancyGrid
	Color ColorFunc
	LOD   int

	shapes map[world.Pos]geometry.SubVoxelGeometry
}

// NewSnapshot expands every voxel of m and inserts its cells into a fresh grid.
func NewSnapshot(m *world.Map, color ColorFunc, lod int) *Snapshot {
	defer profiling.Track("meshing.NewSnapshot")()
	s := &Snapshot{
		Grid:   NewOccupancyGrid(),
		Color:  color,
		LOD:    lod,
		shapes: make(map[world.Pos]geometry.SubVoxelGeometry, m.Len()),
	}
	for _, v := range m.Voxels() {
		g := m.Geometry(v)
		s.shapes[v.Pos] = g
		g.ForEach(func(x, y, z int) {
			s.Grid.Insert(v.Pos, world.Pos{X: x, Y: y, Z: z})
		})
	}
	return s
}

// MeshChunk culls hidden faces of the given voxels against the grid and greedy
// meshes the rest. It returns the mesh and the number of visible faces.
func (s *Snapshot) MeshChunk(voxels []world.Voxel) (Mesh, int) {
	gm := NewGreedyMesher()
	for _, v := range voxels {
		g, ok := s.shapes[v.Pos]
		if !ok {
			continue
		}
		g.ForEach(func(x, y, z int) {
			sub := world.Pos{X: x, Y: y, Z: z}
			cell := GlobalCell(v.Pos, sub)
			resolved := false
			var idx int
			var col mgl32.Vec4
			for _, f := range AllFaces {
				if s.Grid.HasNeighbor(v.Pos, sub, f) {
					continue
				}
				if !resolved {
					idx, col = s.Color(v, sub)
					resolved = true
				}
				gm.AddFace(f, cell, idx, col)
			}
		})
	}
	b := NewChunkMeshBuilder()
	gm.BuildLOD(s.LOD, b)
	return b.Build(), gm.FaceCount()
}

// Mesher turns map snapshots into per-chunk meshes.
type Mesher struct {
	ChunkSize int // voxels per chunk edge
	LOD       int // 0 is full detail
	Workers   int // <= 1 meshes chunks serially
	Color     ColorFunc
	Logger    *slog.Logger
	Stats     StatsRecorder
}

// NewMesher returns a mesher configured from the current settings.
func NewMesher() *Mesher {
	return &Mesher{
		ChunkSize: config.GetChunkSize(),
		LOD:       config.GetLODLevel(),
		Workers:   config.GetWorkers(),
		Color:     palette.Default().ResolveVoxel,
	}
}

// Result holds the meshes of one pass. Chunks without visible geometry are
// absent from Meshes.
type Result struct {
	Meshes   map[world.ChunkCoord]Mesh
	Coords   []world.ChunkCoord // sorted keys of Meshes
	Quads    int
	Faces    int
	Cells    int
	Elapsed  time.Duration
	Occupied int // chunks holding at least one voxel
	Grid     *OccupancyGrid
}

// Chunks returns the number of non-empty chunk meshes.
func (r *Result) Chunks() int {
	return len(r.Meshes)
}

func (ms *Mesher) logger() *slog.Logger {
	if ms.Logger != nil {
		return ms.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (ms *Mesher) chunkSize() int {
	if ms.ChunkSize < 1 {
		return 1
	}
	return ms.ChunkSize
}

func (ms *Mesher) color() ColorFunc {
	if ms.Color != nil {
		return ms.Color
	}
	return palette.Default().ResolveVoxel
}

// BuildChunks meshes every chunk of m. The grid is built once and shared by
// all chunk jobs. Cancellation is checked between chunks.
func (ms *Mesher) BuildChunks(ctx context.Context, m *world.Map) (*Result, error) {
	defer profiling.Track("meshing.BuildChunks")()
	start := time.Now()

	snap := NewSnapshot(m, ms.color(), ms.LOD)
	coords, groups := m.ByChunk(ms.chunkSize())

	res := &Result{
		Meshes:   make(map[world.ChunkCoord]Mesh, len(coords)),
		Cells:    snap.Grid.Len(),
		Occupied: len(coords),
		Grid:     snap.Grid,
	}
	collect := func(r MeshResult) {
		res.Faces += r.Faces
		if r.Mesh.IsEmpty() {
			return
		}
		res.Meshes[r.Coord] = r.Mesh
		res.Quads += r.Mesh.QuadCount()
	}

	if err := ms.run(ctx, snap, coords, groups, collect); err != nil {
		return nil, err
	}

	for _, c := range coords {
		if _, ok := res.Meshes[c]; ok {
			res.Coords = append(res.Coords, c)
		}
	}
	res.Elapsed = time.Since(start)
	if ms.Stats != nil {
		ms.Stats.ObservePass(res.Chunks(), res.Quads, res.Faces, res.Elapsed)
	}
	ms.logger().Debug("mesh pass",
		"voxels", m.Len(),
		"cells", res.Cells,
		"chunks", res.Chunks(),
		"quads", res.Quads,
		"faces", res.Faces,
		"lod", ms.LOD,
		"elapsed", res.Elapsed)
	return res, nil
}

// run meshes the listed chunks serially or on a worker pool and hands every
// result to collect on the calling goroutine.
func (ms *Mesher) run(ctx context.Context, snap *Snapshot, coords []world.ChunkCoord, groups map[world.ChunkCoord][]world.Voxel, collect func(MeshResult)) error {
	if ms.Workers <= 1 || len(coords) <= 1 {
		for _, c := range coords {
			if err := ctx.Err(); err != nil {
				return err
			}
			stop := profiling.Track("meshing.chunk")
			mesh, faces := snap.MeshChunk(groups[c])
			stop()
			collect(MeshResult{Coord: c, Mesh: mesh, Faces: faces})
		}
		return nil
	}

	pool := NewWorkerPool(ms.Workers, len(coords))
	defer pool.Shutdown()
	results := make(chan MeshResult, len(coords))
	for _, c := range coords {
		if err := ctx.Err(); err != nil {
			return err
		}
		pool.SubmitJobBlocking(MeshJob{Snapshot: snap, Coord: c, Voxels: groups[c], ResultChan: results})
	}
	for range coords {
		select {
		case r := <-results:
			if r.Error != nil {
				return r.Error
			}
			collect(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
