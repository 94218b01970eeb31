package voxmap

import (
	"errors"
	"fmt"

	"subvox/internal/geometry"
	"subvox/internal/world"
)

var (
	ErrUnknownPattern = errors.New("unknown pattern")
	ErrUnknownAxis    = errors.New("unknown rotation axis")
)

// File is the JSON form of a voxel map.
type File struct {
	Name   string  `json:"name,omitempty"`
	Parent string  `json:"parent,omitempty"`
	Voxels []Entry `json:"voxels"`
}

type Entry struct {
	Pos      [3]int    `json:"pos"`
	Type     string    `json:"type"`
	Pattern  string    `json:"pattern,omitempty"`
	Rotation *Rotation `json:"rotation,omitempty"`
}

type Rotation struct {
	Axis  string `json:"axis"`
	Angle int    `json:"angle"`
}

// Voxel converts the entry, resolving pattern and axis names.
func (e Entry) Voxel() (world.Voxel, error) {
	v := world.Voxel{
		Pos:  world.Pos{X: e.Pos[0], Y: e.Pos[1], Z: e.Pos[2]},
		Type: world.VoxelType(e.Type),
	}
	if e.Pattern != "" {
		p, err := geometry.ParsePattern(e.Pattern)
		if err != nil {
			return world.Voxel{}, fmt.Errorf("%w: %q at %s", ErrUnknownPattern, e.Pattern, v.Pos)
		}
		v = v.WithPattern(p)
	}
	if e.Rotation != nil {
		axis, err := geometry.ParseRotationAxis(e.Rotation.Axis)
		if err != nil {
			return world.Voxel{}, fmt.Errorf("%w: %q at %s", ErrUnknownAxis, e.Rotation.Axis, v.Pos)
		}
		v = v.WithRotation(geometry.NewRotationState(axis, e.Rotation.Angle))
	}
	return v, nil
}

// EntryOf is the inverse of Entry.Voxel.
func EntryOf(v world.Voxel) Entry {
	e := Entry{
		Pos:  [3]int{v.Pos.X, v.Pos.Y, v.Pos.Z},
		Type: string(v.Type),
	}
	if v.Pattern != nil {
		e.Pattern = v.Pattern.String()
	}
	if v.Rotation != nil {
		e.Rotation = &Rotation{Axis: v.Rotation.Axis.String(), Angle: v.Rotation.Angle}
	}
	return e
}

// ToVoxels converts every entry in file order.
func (f *File) ToVoxels() ([]world.Voxel, error) {
	out := make([]world.Voxel, 0, len(f.Voxels))
	for i, e := range f.Voxels {
		v, err := e.Voxel()
		if err != nil {
			return nil, fmt.Errorf("voxel %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FromVoxels builds a file from a voxel list.
func FromVoxels(name string, voxels []world.Voxel) *File {
	f := &File{Name: name, Voxels: make([]Entry, len(voxels))}
	for i, v := range voxels {
		f.Voxels[i] = EntryOf(v)
	}
	return f
}
