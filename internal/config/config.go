package config

import (
	"runtime"
	"sync"
)

const (
	DefaultChunkSize = 16
	MinChunkSize     = 1
	MaxChunkSize     = 64
	MaxLODLevel      = 3
	MaxWorkers       = 256
)

// MeshSettings holds mesher configuration
type MeshSettings struct {
	mu        sync.RWMutex
	chunkSize int // voxels per chunk edge
	lodLevel  int
	workers   int
}

var globalMeshSettings = &MeshSettings{
	chunkSize: DefaultChunkSize,
	lodLevel:  0,
	workers:   runtime.NumCPU(),
}

// GetChunkSize returns the chunk edge length in voxels
func GetChunkSize() int {
	globalMeshSettings.mu.RLock()
	defer globalMeshSettings.mu.RUnlock()
	return globalMeshSettings.chunkSize
}

// SetChunkSize sets the chunk edge length in voxels
func SetChunkSize(size int) {
	globalMeshSettings.mu.Lock()
	defer globalMeshSettings.mu.Unlock()
	globalMeshSettings.chunkSize = clamp(size, MinChunkSize, MaxChunkSize)
}

// GetLODLevel returns the level of detail; 0 is full detail
func GetLODLevel() int {
	globalMeshSettings.mu.RLock()
	defer globalMeshSettings.mu.RUnlock()
	return globalMeshSettings.lodLevel
}

// SetLODLevel sets the level of detail
func SetLODLevel(level int) {
	globalMeshSettings.mu.Lock()
	defer globalMeshSettings.mu.Unlock()
	globalMeshSettings.lodLevel = clamp(level, 0, MaxLODLevel)
}

// GetWorkers returns how many chunks are meshed in parallel
func GetWorkers() int {
	globalMeshSettings.mu.RLock()
	defer globalMeshSettings.mu.RUnlock()
	return globalMeshSettings.workers
}

// SetWorkers sets the mesh worker count. Values below 1 select runtime.NumCPU.
func SetWorkers(n int) {
	globalMeshSettings.mu.Lock()
	defer globalMeshSettings.mu.Unlock()
	if n < 1 {
		n = runtime.NumCPU()
	}
	globalMeshSettings.workers = clamp(n, 1, MaxWorkers)
}

// Reset restores the defaults
func Reset() {
	globalMeshSettings.mu.Lock()
	defer globalMeshSettings.mu.Unlock()
	globalMeshSettings.chunkSize = DefaultChunkSize
	globalMeshSettings.lodLevel = 0
	globalMeshSettings.workers = runtime.NumCPU()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
