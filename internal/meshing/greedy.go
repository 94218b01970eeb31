package meshing

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// faceCell is one visible unit face inside a slice.
type faceCell struct {
	u, v       int
	colorIndex int
	color      mgl32.Vec4
}

// sliceKey identifies a plane of coplanar faces: one direction at one depth
// (global cell coordinate along the normal axis).
type sliceKey struct {
	face  Face
	depth int
}

func (a sliceKey) less(b sliceKey) bool {
	if a.face != b.face {
		return a.face < b.face
	}
	return a.depth < b.depth
}

// GreedyMesher collects visible faces for one chunk and merges coplanar,
// contiguous, identically colored faces into rectangles.
type GreedyMesher struct {
	slices map[sliceKey][]faceCell
	faces  int
}

// NewGreedyMesher returns an empty mesher.
func NewGreedyMesher() *GreedyMesher {
	return &GreedyMesher{slices: make(map[sliceKey][]faceCell)}
}

// AddFace records the face of global cell pointing in direction face.
func (m *GreedyMesher) AddFace(face Face, cell [3]int, colorIndex int, color mgl32.Vec4) {
	depth, u, v := face.planeUV(cell)
	k := sliceKey{face: face, depth: depth}
	m.slices[k] = append(m.slices[k], faceCell{u: u, v: v, colorIndex: colorIndex, color: color})
	m.faces++
}

// FaceCount returns the number of faces added.
func (m *GreedyMesher) FaceCount() int {
	return m.faces
}

// SliceCount returns the number of distinct (face, depth) planes.
func (m *GreedyMesher) SliceCount() int {
	return len(m.slices)
}

func (m *GreedyMesher) sortedKeys() []sliceKey {
	keys := make([]sliceKey, 0, len(m.slices))
	for k := range m.slices {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// Build emits one quad per merged rectangle into b. Output is deterministic
// for a given set of faces.
func (m *GreedyMesher) Build(b *ChunkMeshBuilder) {
	for _, k := range m.sortedKeys() {
		mergeSlice(k, m.slices[k], 1, b)
	}
}

// maxLODShift bounds the LOD rate so 1<<level stays positive.
const maxLODShift = 30

// BuildLOD emits a downsampled mesh. With rate = 2^level only slices at depths
// divisible by rate are kept, and faces are pooled into rate x rate buckets
// whose color is that of the first face added. Level 0 is Build.
func (m *GreedyMesher) BuildLOD(level int, b *ChunkMeshBuilder) {
	if level <= 0 {
		m.Build(b)
		return
	}
	rate := 1 << uint(min(level, maxLODShift))
	for _, k := range m.sortedKeys() {
		if floorMod(k.depth, rate) != 0 {
			continue
		}
		cells := m.slices[k]
		seen := make(map[[2]int]struct{}, len(cells))
		buckets := make([]faceCell, 0, len(cells))
		for _, c := range cells {
			key := [2]int{floorDiv(c.u, rate), floorDiv(c.v, rate)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			buckets = append(buckets, faceCell{u: key[0], v: key[1], colorIndex: c.colorIndex, color: c.color})
		}
		mergeSlice(k, buckets, rate, b)
	}
}

// mergeSlice runs the greedy rectangle search over one slice. Cells are
// visited in (u,v) order; each unused cell grows first along u, then along v
// while the whole u-span of the next row matches. scale is the number of
// sub-voxel cells per slice cell.
func mergeSlice(k sliceKey, cells []faceCell, scale int, b *ChunkMeshBuilder) {
	grid := make(map[[2]int]int, len(cells))
	order := make([]int, 0, len(cells))
	for i, c := range cells {
		key := [2]int{c.u, c.v}
		if _, dup := grid[key]; dup {
			continue
		}
		grid[key] = i
		order = append(order, i)
	}
	sort.Slice(order, func(i, j int) bool {
		ca, cb := cells[order[i]], cells[order[j]]
		if ca.u != cb.u {
			return ca.u < cb.u
		}
		return ca.v < cb.v
	})

	used := make(map[[2]int]bool, len(order))
	matches := func(u, v int, want faceCell) bool {
		key := [2]int{u, v}
		i, ok := grid[key]
		if !ok || used[key] {
			return false
		}
		c := cells[i]
		return c.colorIndex == want.colorIndex && c.color == want.color
	}

	for _, i := range order {
		start := cells[i]
		if used[[2]int{start.u, start.v}] {
			continue
		}
		w := 1
		for matches(start.u+w, start.v, start) {
			w++
		}
		h := 1
	grow:
		for {
			for du := 0; du < w; du++ {
				if !matches(start.u+du, start.v+h, start) {
					break grow
				}
			}
			h++
		}
		for du := 0; du < w; du++ {
			for dv := 0; dv < h; dv++ {
				used[[2]int{start.u + du, start.v + dv}] = true
			}
		}
		emitRect(k, start.u*scale, start.v*scale, w*scale, h*scale, start.color, b)
	}
}

// emitRect writes the quad covering sub-voxel cells [u0,u0+w) x [v0,v0+h) of slice k.
func emitRect(k sliceKey, u0, v0, w, h int, color mgl32.Vec4, b *ChunkMeshBuilder) {
	info := &faceTable[k.face]
	plane := k.depth
	if k.face.Positive() {
		plane++
	}
	var center mgl32.Vec3
	center[info.axis] = cellToWorld(float32(plane))
	center[info.u] = cellToWorld(float32(u0) + float32(w)/2)
	center[info.v] = cellToWorld(float32(v0) + float32(h)/2)
	b.AddQuad(center, k.face, float32(w)*SubVoxelSize, float32(h)*SubVoxelSize, color)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
