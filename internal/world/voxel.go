package world

import (
	"fmt"

	"subvox/internal/geometry"
)

// Pos is an integer position; voxel positions in world space, or sub-voxel
// cells within one voxel.
type Pos struct {
	X, Y, Z int
}

// Add returns p offset by o.
func (p Pos) Add(o Pos) Pos {
	return Pos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// ChunkCoord identifies a cubic chunk of voxels.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("chunk(%d,%d,%d)", c.X, c.Y, c.Z)
}

// ChunkOf returns the chunk containing voxel p for the given chunk edge length.
func ChunkOf(p Pos, chunkSize int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(p.X, chunkSize),
		Y: floorDiv(p.Y, chunkSize),
		Z: floorDiv(p.Z, chunkSize),
	}
}

// Origin returns the minimum voxel position covered by the chunk.
func (c ChunkCoord) Origin(chunkSize int) Pos {
	return Pos{X: c.X * chunkSize, Y: c.Y * chunkSize, Z: c.Z * chunkSize}
}

// Less orders chunk coordinates X, then Y, then Z.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.Z < o.Z
}

// VoxelType is the color/material category of a placed voxel.
type VoxelType string

// Voxel is one placed voxel of a map.
type Voxel struct {
	Pos      Pos
	Type     VoxelType
	Pattern  *geometry.Pattern       // nil means Full
	Rotation *geometry.RotationState // nil means canonical orientation
}

// PatternOrDefault returns the voxel's pattern, defaulting to Full.
func (v Voxel) PatternOrDefault() geometry.Pattern {
	if v.Pattern == nil {
		return geometry.PatternFull
	}
	return *v.Pattern
}

// WithPattern returns a copy of v using pattern p.
func (v Voxel) WithPattern(p geometry.Pattern) Voxel {
	v.Pattern = &p
	return v
}

// WithRotation returns a copy of v with rotation r.
func (v Voxel) WithRotation(r geometry.RotationState) Voxel {
	v.Rotation = &r
	return v
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
