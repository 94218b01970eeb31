package physics

import (
	"math"

	"subvox/internal/profiling"
	"subvox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	subVoxelCount = 8
	subVoxelSize  = float32(1) / subVoxelCount
	// stepSize is a quarter cell so thin rails are not skipped.
	stepSize = subVoxelSize / 4
)

// CellSet answers whether a global sub-voxel cell is occupied.
type CellSet interface {
	Contains(cell [3]int) bool
}

// CellAt returns the global sub-voxel cell containing a world position.
// Voxels are centered on integer coordinates.
func CellAt(p mgl32.Vec3) [3]int {
	return [3]int{
		cellIndex(p.X()),
		cellIndex(p.Y()),
		cellIndex(p.Z()),
	}
}

func cellIndex(w float32) int {
	return int(math.Floor(float64((w + 0.5) * subVoxelCount)))
}

// VoxelOf returns the voxel that owns a global cell.
func VoxelOf(cell [3]int) world.Pos {
	return world.Pos{X: floorDiv(cell[0]), Y: floorDiv(cell[1]), Z: floorDiv(cell[2])}
}

func floorDiv(a int) int {
	q := a / subVoxelCount
	if a%subVoxelCount != 0 && a < 0 {
		q--
	}
	return q
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitCell      [3]int
	AdjacentCell [3]int
	Voxel        world.Pos
	Distance     float32
	Hit          bool
}

// Raycast marches from start along direction and reports the first occupied
// sub-voxel cell between minDist and maxDist.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, cells CellSet) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	direction = direction.Normalize()
	steps := int(maxDist / stepSize)

	lastEmpty := CellAt(start)
	result := RaycastResult{Hit: false}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		cell := CellAt(start.Add(direction.Mul(dist)))
		if cells.Contains(cell) {
			result.HitCell = cell
			result.AdjacentCell = lastEmpty
			result.Voxel = VoxelOf(cell)
			result.Distance = dist
			result.Hit = true
			return result
		}

		lastEmpty = cell
	}

	return result
}
