package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Collides reports whether the box [min, max) overlaps any occupied cell.
func Collides(min, max mgl32.Vec3, cells CellSet) bool {
	lo := CellAt(min)
	hi := [3]int{ceilCell(max.X()), ceilCell(max.Y()), ceilCell(max.Z())}
	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			for z := lo[2]; z < hi[2]; z++ {
				if cells.Contains([3]int{x, y, z}) {
					return true
				}
			}
		}
	}
	return false
}

// ceilCell returns the first cell boundary at or above w.
func ceilCell(w float32) int {
	return int(math.Ceil(float64((w + 0.5) * subVoxelCount)))
}

// GroundLevel returns the world height of the top face of the highest
// occupied cell in the column under (x, z), searching down from fromY to
// floorY. ok is false when the column is empty.
func GroundLevel(x, z, fromY, floorY float32, cells CellSet) (float32, bool) {
	cx, cz := cellIndex(x), cellIndex(z)
	for cy := cellIndex(fromY); cy >= cellIndex(floorY); cy-- {
		if cells.Contains([3]int{cx, cy, cz}) {
			return float32(cy+1)*subVoxelSize - 0.5, true
		}
	}
	return 0, false
}
