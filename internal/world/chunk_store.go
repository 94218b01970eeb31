package world

import (
	"sort"
	"sync"

	"subvox/internal/profiling"
)

// ChunkStore is the editable voxel map, bucketed by chunk. It hands out
// immutable Map snapshots for meshing.
type ChunkStore struct {
	chunkSize int

	mu       sync.RWMutex
	chunks   map[ChunkCoord]map[Pos]Voxel
	dirty    map[ChunkCoord]struct{}
	modCount uint64 // Increases on any voxel set/remove
}

// NewChunkStore creates an empty store with the given chunk edge length.
func NewChunkStore(chunkSize int) *ChunkStore {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &ChunkStore{
		chunkSize: chunkSize,
		chunks:    make(map[ChunkCoord]map[Pos]Voxel),
		dirty:     make(map[ChunkCoord]struct{}),
	}
}

// ChunkSize returns the chunk edge length in voxels.
func (cs *ChunkStore) ChunkSize() int {
	return cs.chunkSize
}

// Get returns the voxel at p.
func (cs *ChunkStore) Get(p Pos) (Voxel, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	v, ok := cs.chunks[ChunkOf(p, cs.chunkSize)][p]
	return v, ok
}

// Set places v, replacing any voxel at the same position.
func (cs *ChunkStore) Set(v Voxel) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	coord := ChunkOf(v.Pos, cs.chunkSize)
	ch, ok := cs.chunks[coord]
	if !ok {
		ch = make(map[Pos]Voxel)
		cs.chunks[coord] = ch
	}
	ch[v.Pos] = v
	cs.modCount++
	cs.markDirtyLocked(v.Pos)
}

// Remove deletes the voxel at p. It reports whether one was present.
func (cs *ChunkStore) Remove(p Pos) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	coord := ChunkOf(p, cs.chunkSize)
	ch, ok := cs.chunks[coord]
	if !ok {
		return false
	}
	if _, ok := ch[p]; !ok {
		return false
	}
	delete(ch, p)
	if len(ch) == 0 {
		delete(cs.chunks, coord)
	}
	cs.modCount++
	cs.markDirtyLocked(p)
	return true
}

// markDirtyLocked flags every chunk whose mesh may depend on p: its own chunk
// and any chunk within ShellMargin voxels of it.
func (cs *ChunkStore) markDirtyLocked(p Pos) {
	for _, cx := range shellRange(p.X, cs.chunkSize, ShellMargin) {
		for _, cy := range shellRange(p.Y, cs.chunkSize, ShellMargin) {
			for _, cz := range shellRange(p.Z, cs.chunkSize, ShellMargin) {
				cs.dirty[ChunkCoord{X: cx, Y: cy, Z: cz}] = struct{}{}
			}
		}
	}
}

// TakeDirty returns the chunks touched since the last call, sorted, and clears the set.
func (cs *ChunkStore) TakeDirty() []ChunkCoord {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]ChunkCoord, 0, len(cs.dirty))
	for c := range cs.dirty {
		out = append(out, c)
	}
	cs.dirty = make(map[ChunkCoord]struct{})
	sortCoords(out)
	return out
}

// ChunkCount returns the number of non-empty chunks.
func (cs *ChunkStore) ChunkCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// Snapshot copies the current contents into an immutable Map. Voxels are
// ordered by chunk, then by position, so equal contents give equal snapshots.
func (cs *ChunkStore) Snapshot() *Map {
	defer profiling.Track("world.Snapshot")()
	cs.mu.RLock()
	coords := make([]ChunkCoord, 0, len(cs.chunks))
	total := 0
	for c, ch := range cs.chunks {
		coords = append(coords, c)
		total += len(ch)
	}
	sortCoords(coords)
	voxels := make([]Voxel, 0, total)
	for _, c := range coords {
		start := len(voxels)
		for _, v := range cs.chunks[c] {
			voxels = append(voxels, v)
		}
		sortVoxels(voxels[start:])
	}
	cs.mu.RUnlock()
	return NewMap(voxels)
}

func sortVoxels(vs []Voxel) {
	sort.Slice(vs, func(i, j int) bool { return ChunkCoord(vs[i].Pos).Less(ChunkCoord(vs[j].Pos)) })
}
