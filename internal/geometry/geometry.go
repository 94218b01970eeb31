package geometry

import (
	"fmt"
	"math/bits"
	"strings"
)

// SubVoxelCount is the number of sub-voxel cells along each axis of one voxel.
const SubVoxelCount = 8

// RotationAxis identifies the principal axis a 90° rotation is performed around.
type RotationAxis uint8

const (
	AxisX RotationAxis = iota
	AxisY
	AxisZ
)

func (a RotationAxis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", uint8(a))
	}
}

// ParseRotationAxis accepts "x", "y" or "z" (case-insensitive).
func ParseRotationAxis(s string) (RotationAxis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown rotation axis %q", s)
}

// SubVoxelGeometry is an 8x8x8 occupancy grid local to one voxel.
// Each Y layer is a 64-bit mask with bit index z*8+x.
type SubVoxelGeometry struct {
	layers [SubVoxelCount]uint64
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < SubVoxelCount && y >= 0 && y < SubVoxelCount && z >= 0 && z < SubVoxelCount
}

func bit(x, z int) uint64 {
	return 1 << uint(z*SubVoxelCount+x)
}

// Empty returns a geometry with no occupied cells.
func Empty() SubVoxelGeometry {
	return SubVoxelGeometry{}
}

// Full returns a geometry with all 512 cells occupied.
func Full() SubVoxelGeometry {
	var g SubVoxelGeometry
	for y := range g.layers {
		g.layers[y] = ^uint64(0)
	}
	return g
}

// IsOccupied reports whether the cell is solid. Out-of-range cells are never occupied.
func (g SubVoxelGeometry) IsOccupied(x, y, z int) bool {
	if !inBounds(x, y, z) {
		return false
	}
	return g.layers[y]&bit(x, z) != 0
}

// Set marks a cell occupied. Out-of-range coordinates are ignored.
func (g *SubVoxelGeometry) Set(x, y, z int) {
	if !inBounds(x, y, z) {
		return
	}
	g.layers[y] |= bit(x, z)
}

// Clear marks a cell empty. Out-of-range coordinates are ignored.
func (g *SubVoxelGeometry) Clear(x, y, z int) {
	if !inBounds(x, y, z) {
		return
	}
	g.layers[y] &^= bit(x, z)
}

// Count returns the number of occupied cells.
func (g SubVoxelGeometry) Count() int {
	n := 0
	for _, l := range g.layers {
		n += bits.OnesCount64(l)
	}
	return n
}

// IsEmpty reports whether no cell is occupied.
func (g SubVoxelGeometry) IsEmpty() bool {
	for _, l := range g.layers {
		if l != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both geometries occupy exactly the same cells.
func (g SubVoxelGeometry) Equal(o SubVoxelGeometry) bool {
	return g.layers == o.layers
}

// Union returns the cells occupied in either geometry.
func (g SubVoxelGeometry) Union(o SubVoxelGeometry) SubVoxelGeometry {
	var out SubVoxelGeometry
	for y := range out.layers {
		out.layers[y] = g.layers[y] | o.layers[y]
	}
	return out
}

// Occupied lists occupied cells with Y outermost, then Z, then X.
func (g SubVoxelGeometry) Occupied() [][3]int {
	out := make([][3]int, 0, g.Count())
	g.ForEach(func(x, y, z int) {
		out = append(out, [3]int{x, y, z})
	})
	return out
}

// ForEach calls fn for every occupied cell in the same order as Occupied.
func (g SubVoxelGeometry) ForEach(fn func(x, y, z int)) {
	for y, layer := range g.layers {
		for layer != 0 {
			i := bits.TrailingZeros64(layer)
			layer &= layer - 1
			fn(i%SubVoxelCount, y, i/SubVoxelCount)
		}
	}
}

// fillBox occupies every cell in [x0,x1)x[y0,y1)x[z0,z1).
func (g *SubVoxelGeometry) fillBox(x0, y0, z0, x1, y1, z1 int) {
	for y := y0; y < y1; y++ {
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				g.Set(x, y, z)
			}
		}
	}
}

// Rotate returns a copy rotated by angle*90° around axis through the voxel center.
// The angle is taken modulo 4, so negative angles rotate the other way.
func (g SubVoxelGeometry) Rotate(axis RotationAxis, angle int) SubVoxelGeometry {
	angle = NormalizeAngle(angle)
	if angle == 0 {
		return g
	}
	var out SubVoxelGeometry
	g.ForEach(func(x, y, z int) {
		// doubled coordinates put the center (3.5) at 0
		dx, dy, dz := 2*x-(SubVoxelCount-1), 2*y-(SubVoxelCount-1), 2*z-(SubVoxelCount-1)
		for i := 0; i < angle; i++ {
			switch axis {
			case AxisX:
				dy, dz = -dz, dy
			case AxisY:
				dx, dz = -dz, dx
			case AxisZ:
				dx, dy = -dy, dx
			}
		}
		out.Set((dx+SubVoxelCount-1)/2, (dy+SubVoxelCount-1)/2, (dz+SubVoxelCount-1)/2)
	})
	return out
}

// NormalizeAngle maps any quarter-turn count into [0,4).
func NormalizeAngle(angle int) int {
	return ((angle % 4) + 4) % 4
}

func (g SubVoxelGeometry) String() string {
	return fmt.Sprintf("SubVoxelGeometry{%d cells}", g.Count())
}
