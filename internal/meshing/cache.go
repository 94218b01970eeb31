package meshing

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"

	"subvox/internal/profiling"
	"subvox/internal/world"

	"github.com/cespare/xxhash/v2"
)

type cacheEntry struct {
	hash uint64
	mesh Mesh
}

// Cache keeps the last mesh of every chunk together with a content hash of
// the voxels that influence it, so repeated passes only remesh what changed.
type Cache struct {
	mesher *Mesher

	mu       sync.RWMutex
	entries  map[world.ChunkCoord]cacheEntry
	storeMod uint64 // store modCount seen by the last UpdateStore
}

// CacheUpdate reports what one Update pass did.
type CacheUpdate struct {
	Rebuilt []world.ChunkCoord
	Reused  []world.ChunkCoord
	Removed []world.ChunkCoord
}

// NewCache wraps ms. The mesher's settings must not change between updates.
func NewCache(ms *Mesher) *Cache {
	return &Cache{
		mesher:  ms,
		entries: make(map[world.ChunkCoord]cacheEntry),
	}
}

// Update brings the cache in line with m, remeshing only chunks whose shell
// content hash changed and dropping chunks that no longer hold voxels.
func (c *Cache) Update(ctx context.Context, m *world.Map) (*CacheUpdate, error) {
	defer profiling.Track("meshing.Cache.Update")()
	size := c.mesher.chunkSize()
	coords, groups := m.ByChunk(size)
	shells := m.ChunkShells(size, world.ShellMargin)

	hashes := make(map[world.ChunkCoord]uint64, len(coords))
	up := &CacheUpdate{}
	var dirty []world.ChunkCoord

	c.mu.RLock()
	for _, coord := range coords {
		h := hashShell(shells[coord], c.mesher.LOD)
		hashes[coord] = h
		if e, ok := c.entries[coord]; ok && e.hash == h {
			up.Reused = append(up.Reused, coord)
			continue
		}
		dirty = append(dirty, coord)
	}
	for coord := range c.entries {
		if _, ok := groups[coord]; !ok {
			up.Removed = append(up.Removed, coord)
		}
	}
	c.mu.RUnlock()

	if err := c.rebuild(ctx, m, groups, dirty, hashes, up); err != nil {
		return nil, err
	}
	return up, nil
}

// UpdateStore is Update driven by the store's dirty set: only chunks reported
// by TakeDirty are rehashed, plus chunks the cache has never seen. A store
// whose chunk size differs from the mesher's falls back to a full Update.
func (c *Cache) UpdateStore(ctx context.Context, store *world.ChunkStore) (*CacheUpdate, error) {
	defer profiling.Track("meshing.Cache.UpdateStore")()
	size := c.mesher.chunkSize()
	mod := store.GetModCount()
	changed := store.TakeDirty()
	if store.ChunkSize() != size {
		up, err := c.Update(ctx, store.Snapshot())
		if err == nil {
			c.setStoreMod(mod)
		}
		return up, err
	}

	c.mu.RLock()
	unchanged := len(changed) == 0 && mod == c.storeMod && len(c.entries) > 0
	c.mu.RUnlock()
	if unchanged {
		up := &CacheUpdate{Reused: c.coords()}
		c.mesher.logger().Debug("mesh cache unchanged", "reused", len(up.Reused))
		return up, nil
	}

	m := store.Snapshot()
	coords, groups := m.ByChunk(size)
	isChanged := make(map[world.ChunkCoord]bool, len(changed))
	for _, coord := range changed {
		isChanged[coord] = true
	}

	hashes := make(map[world.ChunkCoord]uint64)
	up := &CacheUpdate{}
	var dirty []world.ChunkCoord

	c.mu.RLock()
	for _, coord := range coords {
		e, cached := c.entries[coord]
		if cached && !isChanged[coord] {
			up.Reused = append(up.Reused, coord)
			continue
		}
		h := hashShell(m.Shell(coord, size, world.ShellMargin), c.mesher.LOD)
		hashes[coord] = h
		if cached && e.hash == h {
			up.Reused = append(up.Reused, coord)
			continue
		}
		dirty = append(dirty, coord)
	}
	for _, coord := range changed {
		if _, ok := groups[coord]; ok {
			continue
		}
		if _, ok := c.entries[coord]; ok {
			up.Removed = append(up.Removed, coord)
		}
	}
	c.mu.RUnlock()

	if err := c.rebuild(ctx, m, groups, dirty, hashes, up); err != nil {
		return nil, err
	}
	c.setStoreMod(mod)
	return up, nil
}

// rebuild meshes dirty chunks of m and commits them, along with up.Removed,
// to the cache.
func (c *Cache) rebuild(ctx context.Context, m *world.Map, groups map[world.ChunkCoord][]world.Voxel,
	dirty []world.ChunkCoord, hashes map[world.ChunkCoord]uint64, up *CacheUpdate) error {
	fresh := make(map[world.ChunkCoord]Mesh, len(dirty))
	if len(dirty) > 0 {
		snap := NewSnapshot(m, c.mesher.color(), c.mesher.LOD)
		err := c.mesher.run(ctx, snap, dirty, groups, func(r MeshResult) {
			fresh[r.Coord] = r.Mesh
		})
		if err != nil {
			return err
		}
	}

	c.mu.Lock()
	for _, coord := range up.Removed {
		delete(c.entries, coord)
	}
	for _, coord := range dirty {
		c.entries[coord] = cacheEntry{hash: hashes[coord], mesh: fresh[coord]}
	}
	c.mu.Unlock()

	up.Rebuilt = dirty
	sort.Slice(up.Removed, func(i, j int) bool { return up.Removed[i].Less(up.Removed[j]) })

	c.mesher.logger().Debug("mesh cache update",
		"rebuilt", len(up.Rebuilt),
		"reused", len(up.Reused),
		"removed", len(up.Removed))
	return nil
}

func (c *Cache) setStoreMod(mod uint64) {
	c.mu.Lock()
	c.storeMod = mod
	c.mu.Unlock()
}

// coords lists every cached chunk in order.
func (c *Cache) coords() []world.ChunkCoord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]world.ChunkCoord, 0, len(c.entries))
	for coord := range c.entries {
		out = append(out, coord)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Mesh returns the cached mesh of coord; ok is false when the chunk is
// unknown or has no visible geometry.
func (c *Cache) Mesh(coord world.ChunkCoord) (Mesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[coord]
	if !ok || e.mesh.IsEmpty() {
		return Mesh{}, false
	}
	return e.mesh, true
}

// Meshes returns all non-empty cached meshes keyed by chunk.
func (c *Cache) Meshes() map[world.ChunkCoord]Mesh {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[world.ChunkCoord]Mesh, len(c.entries))
	for coord, e := range c.entries {
		if !e.mesh.IsEmpty() {
			out[coord] = e.mesh
		}
	}
	return out
}

// Len returns the number of chunks with visible geometry.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !e.mesh.IsEmpty() {
			n++
		}
	}
	return n
}

// hashShell digests the voxels of a shell in position order.
func hashShell(voxels []world.Voxel, lod int) uint64 {
	sorted := make([]world.Voxel, len(voxels))
	copy(sorted, voxels)
	sort.Slice(sorted, func(i, j int) bool {
		return world.ChunkCoord(sorted[i].Pos).Less(world.ChunkCoord(sorted[j].Pos))
	})

	d := xxhash.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = d.Write(buf[:])
	}
	writeInt(lod)
	for _, v := range sorted {
		writeInt(v.Pos.X)
		writeInt(v.Pos.Y)
		writeInt(v.Pos.Z)
		writeInt(len(v.Type))
		_, _ = d.WriteString(string(v.Type))
		if v.Pattern != nil {
			writeInt(int(*v.Pattern))
		} else {
			writeInt(-1)
		}
		if v.Rotation != nil {
			writeInt(int(v.Rotation.Axis))
			writeInt(v.Rotation.Angle)
		} else {
			writeInt(-1)
		}
	}
	return d.Sum64()
}
