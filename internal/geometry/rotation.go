package geometry

import "fmt"

// RotationState is the cumulative rotation of a placed voxel on top of its
// pattern's canonical orientation.
type RotationState struct {
	Axis  RotationAxis
	Angle int // quarter turns, always in [0,4)
}

// NewRotationState normalizes angle into [0,4).
func NewRotationState(axis RotationAxis, angle int) RotationState {
	return RotationState{Axis: axis, Angle: NormalizeAngle(angle)}
}

// Compose applies a further rotation. Same-axis rotations accumulate; a
// rotation around a different axis replaces the previous state outright.
func (r RotationState) Compose(axis RotationAxis, angle int) RotationState {
	if axis == r.Axis {
		return NewRotationState(axis, r.Angle+angle)
	}
	return NewRotationState(axis, angle)
}

// IsIdentity reports whether the state leaves geometry unchanged.
func (r RotationState) IsIdentity() bool {
	return NormalizeAngle(r.Angle) == 0
}

// Apply rotates g by this state.
func (r RotationState) Apply(g SubVoxelGeometry) SubVoxelGeometry {
	return g.Rotate(r.Axis, r.Angle)
}

func (r RotationState) String() string {
	return fmt.Sprintf("%s*%d", r.Axis, NormalizeAngle(r.Angle)*90)
}
