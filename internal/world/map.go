package world

import (
	"sort"

	"subvox/internal/geometry"
)

// Map is an immutable snapshot of a voxel list, indexed by position.
// When two voxels share a position the later one wins.
type Map struct {
	voxels []Voxel
	index  map[Pos]int
}

// NewMap builds a snapshot over voxels. The input slice is not retained.
func NewMap(voxels []Voxel) *Map {
	m := &Map{
		voxels: make([]Voxel, 0, len(voxels)),
		index:  make(map[Pos]int, len(voxels)),
	}
	for _, v := range voxels {
		if i, ok := m.index[v.Pos]; ok {
			m.voxels[i] = v
			continue
		}
		m.index[v.Pos] = len(m.voxels)
		m.voxels = append(m.voxels, v)
	}
	return m
}

// Len returns the number of distinct voxel positions.
func (m *Map) Len() int {
	return len(m.voxels)
}

// Voxels returns the voxels in first-insertion order. Callers must not modify it.
func (m *Map) Voxels() []Voxel {
	return m.voxels
}

// At returns the voxel at p.
func (m *Map) At(p Pos) (Voxel, bool) {
	i, ok := m.index[p]
	if !ok {
		return Voxel{}, false
	}
	return m.voxels[i], true
}

func (m *Map) isFence(p Pos) bool {
	v, ok := m.At(p)
	return ok && v.PatternOrDefault() == geometry.PatternFence
}

// FenceNeighbors reports which horizontal neighbors of p are fences.
func (m *Map) FenceNeighbors(p Pos) geometry.FenceNeighbors {
	return geometry.FenceNeighbors{
		PosX: m.isFence(p.Add(Pos{X: 1})),
		NegX: m.isFence(p.Add(Pos{X: -1})),
		PosZ: m.isFence(p.Add(Pos{Z: 1})),
		NegZ: m.isFence(p.Add(Pos{Z: -1})),
	}
}

// Geometry expands v into its sub-voxel cells: the pattern's base shape
// (neighbor-aware for fences) followed by the voxel's rotation state.
func (m *Map) Geometry(v Voxel) geometry.SubVoxelGeometry {
	p := v.PatternOrDefault()
	var g geometry.SubVoxelGeometry
	if p == geometry.PatternFence {
		g = geometry.FenceGeometry(m.FenceNeighbors(v.Pos))
	} else {
		g = p.Geometry()
	}
	if v.Rotation != nil {
		g = v.Rotation.Apply(g)
	}
	return g
}

// ByChunk groups voxels by chunk. Coordinates are returned in sorted order and
// each group keeps first-insertion order.
func (m *Map) ByChunk(chunkSize int) ([]ChunkCoord, map[ChunkCoord][]Voxel) {
	groups := make(map[ChunkCoord][]Voxel)
	for _, v := range m.voxels {
		c := ChunkOf(v.Pos, chunkSize)
		groups[c] = append(groups[c], v)
	}
	coords := make([]ChunkCoord, 0, len(groups))
	for c := range groups {
		coords = append(coords, c)
	}
	sortCoords(coords)
	return coords, groups
}

// ShellMargin is how far outside a chunk voxels can change its mesh: one voxel
// for face culling, one more for the fence neighbors of that ring.
const ShellMargin = 2

// Shell returns the voxels inside coord's bounds grown by margin on each side,
// in first-insertion order.
func (m *Map) Shell(coord ChunkCoord, chunkSize, margin int) []Voxel {
	lo := coord.Origin(chunkSize)
	lo = Pos{X: lo.X - margin, Y: lo.Y - margin, Z: lo.Z - margin}
	span := chunkSize + 2*margin
	var out []Voxel
	for _, v := range m.voxels {
		d := Pos{X: v.Pos.X - lo.X, Y: v.Pos.Y - lo.Y, Z: v.Pos.Z - lo.Z}
		if d.X >= 0 && d.X < span && d.Y >= 0 && d.Y < span && d.Z >= 0 && d.Z < span {
			out = append(out, v)
		}
	}
	return out
}

// ChunkShells groups voxels by every chunk whose bounds, grown by margin
// voxels on each side, contain them. With ShellMargin a chunk's mesh depends
// only on its shell.
func (m *Map) ChunkShells(chunkSize, margin int) map[ChunkCoord][]Voxel {
	shells := make(map[ChunkCoord][]Voxel)
	for _, v := range m.voxels {
		xs := shellRange(v.Pos.X, chunkSize, margin)
		ys := shellRange(v.Pos.Y, chunkSize, margin)
		zs := shellRange(v.Pos.Z, chunkSize, margin)
		for _, cx := range xs {
			for _, cy := range ys {
				for _, cz := range zs {
					c := ChunkCoord{X: cx, Y: cy, Z: cz}
					shells[c] = append(shells[c], v)
				}
			}
		}
	}
	return shells
}

// shellRange lists the chunk indices along one axis whose grown bounds contain a.
func shellRange(a, chunkSize, margin int) []int {
	lo := floorDiv(a-margin, chunkSize)
	hi := floorDiv(a+margin, chunkSize)
	out := make([]int, 0, 3)
	for c := lo; c <= hi; c++ {
		out = append(out, c)
	}
	return out
}

func sortCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
}
