package meshing

import (
	"fmt"

	"subvox/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SubVoxelCount is the subdivision of one voxel along each axis.
	SubVoxelCount = geometry.SubVoxelCount
	// SubVoxelSize is the world-space edge length of one sub-voxel cell.
	SubVoxelSize float32 = 1.0 / SubVoxelCount
)

// Face is one of the six axis-aligned face directions.
type Face uint8

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// AllFaces lists every face direction in declaration order.
var AllFaces = [6]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

type faceInfo struct {
	name   string
	normal mgl32.Vec3
	offset [3]int
	axis   int // axis along the normal
	u, v   int // in-plane axes: quad width runs along u, height along v
}

var faceTable = [6]faceInfo{
	PosX: {"+x", mgl32.Vec3{1, 0, 0}, [3]int{1, 0, 0}, 0, 2, 1},
	NegX: {"-x", mgl32.Vec3{-1, 0, 0}, [3]int{-1, 0, 0}, 0, 2, 1},
	PosY: {"+y", mgl32.Vec3{0, 1, 0}, [3]int{0, 1, 0}, 1, 0, 2},
	NegY: {"-y", mgl32.Vec3{0, -1, 0}, [3]int{0, -1, 0}, 1, 0, 2},
	PosZ: {"+z", mgl32.Vec3{0, 0, 1}, [3]int{0, 0, 1}, 2, 0, 1},
	NegZ: {"-z", mgl32.Vec3{0, 0, -1}, [3]int{0, 0, -1}, 2, 0, 1},
}

// Normal returns the outward unit normal.
func (f Face) Normal() mgl32.Vec3 {
	return faceTable[f].normal
}

// Offset returns the unit step toward the neighbor cell across this face.
func (f Face) Offset() [3]int {
	return faceTable[f].offset
}

// Axis returns the index (0=X, 1=Y, 2=Z) of the axis the face is perpendicular to.
func (f Face) Axis() int {
	return faceTable[f].axis
}

// Positive reports whether the normal points along the positive axis.
func (f Face) Positive() bool {
	return f%2 == 0
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	return f ^ 1
}

func (f Face) String() string {
	if int(f) < len(faceTable) {
		return faceTable[f].name
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

// planeUV splits a global cell into depth along the normal and (u,v) in-plane.
func (f Face) planeUV(cell [3]int) (depth, u, v int) {
	s := &faceTable[f]
	return cell[s.axis], cell[s.u], cell[s.v]
}

// cellToWorld maps a global sub-voxel boundary index to world space. Voxels
// are centered on integer coordinates.
func cellToWorld(g float32) float32 {
	return g*SubVoxelSize - 0.5
}
