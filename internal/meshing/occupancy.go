package meshing

import "subvox/internal/world"

// OccupancyGrid is the set of occupied sub-voxel cells across the whole map,
// keyed by global cell coordinate voxel*8+sub per axis.
//
// The grid is rebuilt from scratch for every mesh pass and never patched.
// Once built it is only read, so chunks meshed in parallel may share it.
type OccupancyGrid struct {
	cells map[[3]int]struct{}
}

// NewOccupancyGrid returns an empty grid.
func NewOccupancyGrid() *OccupancyGrid {
	return &OccupancyGrid{cells: make(map[[3]int]struct{})}
}

// GlobalCell converts a voxel position and local sub-voxel cell to a global cell.
func GlobalCell(voxel, sub world.Pos) [3]int {
	return [3]int{
		voxel.X*SubVoxelCount + sub.X,
		voxel.Y*SubVoxelCount + sub.Y,
		voxel.Z*SubVoxelCount + sub.Z,
	}
}

// Insert marks a cell occupied. Sub-voxel coordinates outside [0,8) are ignored.
func (g *OccupancyGrid) Insert(voxel, sub world.Pos) {
	if !inCell(sub.X) || !inCell(sub.Y) || !inCell(sub.Z) {
		return
	}
	g.cells[GlobalCell(voxel, sub)] = struct{}{}
}

func inCell(c int) bool {
	return c >= 0 && c < SubVoxelCount
}

// Contains reports whether a global cell is occupied.
func (g *OccupancyGrid) Contains(cell [3]int) bool {
	_, ok := g.cells[cell]
	return ok
}

// HasNeighbor reports whether the cell adjacent across face is occupied. The
// neighbor may belong to another voxel.
func (g *OccupancyGrid) HasNeighbor(voxel, sub world.Pos, face Face) bool {
	c := GlobalCell(voxel, sub)
	o := face.Offset()
	return g.Contains([3]int{c[0] + o[0], c[1] + o[1], c[2] + o[2]})
}

// Len returns the number of occupied cells.
func (g *OccupancyGrid) Len() int {
	return len(g.cells)
}
