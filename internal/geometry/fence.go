package geometry

var fenceRailHeights = [2]int{2, 5}

// FenceNeighbors records which horizontal neighbors are also fences.
type FenceNeighbors struct {
	PosX, NegX, PosZ, NegZ bool
}

// mask packs the neighbors as bits PosX=1, NegX=2, PosZ=4, NegZ=8.
func (n FenceNeighbors) mask() int {
	m := 0
	if n.PosX {
		m |= 1
	}
	if n.NegX {
		m |= 2
	}
	if n.PosZ {
		m |= 4
	}
	if n.NegZ {
		m |= 8
	}
	return m
}

// Count returns how many sides are connected.
func (n FenceNeighbors) Count() int {
	c := 0
	for m := n.mask(); m != 0; m &= m - 1 {
		c++
	}
	return c
}

type fenceBox struct {
	x0, z0, x1, z1 int
}

// fenceArms holds the rail footprint toward each side, indexed like mask bits.
var fenceArms = [4]fenceBox{
	{5, 3, SubVoxelCount, 5}, // +X
	{0, 3, 3, 5},             // -X
	{3, 5, 5, SubVoxelCount}, // +Z
	{3, 0, 5, 3},             // -Z
}

var fenceTable [16]SubVoxelGeometry

func init() {
	var post SubVoxelGeometry
	post.fillBox(3, 0, 3, 5, SubVoxelCount, 5)

	var rails [4]SubVoxelGeometry
	for i, arm := range fenceArms {
		for _, y := range fenceRailHeights {
			rails[i].fillBox(arm.x0, y, arm.z0, arm.x1, y+1, arm.z1)
		}
	}

	for m := range fenceTable {
		g := post
		for i := range rails {
			if m&(1<<i) != 0 {
				g = g.Union(rails[i])
			}
		}
		fenceTable[m] = g
	}
}

// FenceGeometry returns the fence shape for a known neighbor configuration:
// a centre post with rails running to every connected side.
func FenceGeometry(n FenceNeighbors) SubVoxelGeometry {
	return fenceTable[n.mask()]
}
