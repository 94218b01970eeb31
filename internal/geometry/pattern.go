package geometry

import (
	"fmt"
	"strings"
)

// Pattern names a canonical sub-voxel shape, optionally in a fixed orientation.
type Pattern uint8

const (
	PatternFull Pattern = iota
	PatternPlatformXZ
	PatternPlatformXY
	PatternPlatformYZ
	PatternStaircaseX
	PatternStaircaseNegX
	PatternStaircaseZ
	PatternStaircaseNegZ
	PatternPillar
	PatternFence

	patternCount
)

var patternNames = [patternCount]string{
	PatternFull:          "full",
	PatternPlatformXZ:    "platform_xz",
	PatternPlatformXY:    "platform_xy",
	PatternPlatformYZ:    "platform_yz",
	PatternStaircaseX:    "staircase_x",
	PatternStaircaseNegX: "staircase_neg_x",
	PatternStaircaseZ:    "staircase_z",
	PatternStaircaseNegZ: "staircase_neg_z",
	PatternPillar:        "pillar",
	PatternFence:         "fence",
}

// patternGeometry is filled once in init; named variants are a canonical base
// plus one fixed rotation.
var patternGeometry [patternCount]SubVoxelGeometry

func init() {
	platform := PlatformHorizontal()
	stairs := StaircaseX()

	patternGeometry[PatternFull] = Full()
	patternGeometry[PatternPlatformXZ] = platform
	patternGeometry[PatternPlatformXY] = platform.Rotate(AxisX, 1)
	patternGeometry[PatternPlatformYZ] = platform.Rotate(AxisZ, 1)
	patternGeometry[PatternStaircaseX] = stairs
	patternGeometry[PatternStaircaseNegX] = stairs.Rotate(AxisY, 2)
	patternGeometry[PatternStaircaseZ] = stairs.Rotate(AxisY, 1)
	patternGeometry[PatternStaircaseNegZ] = stairs.Rotate(AxisY, 3)
	patternGeometry[PatternPillar] = Pillar()
	patternGeometry[PatternFence] = FencePost()
}

// Patterns returns every known pattern in declaration order.
func Patterns() []Pattern {
	out := make([]Pattern, 0, patternCount)
	for p := Pattern(0); p < patternCount; p++ {
		out = append(out, p)
	}
	return out
}

func (p Pattern) String() string {
	if p < patternCount {
		return patternNames[p]
	}
	return fmt.Sprintf("pattern(%d)", uint8(p))
}

// Valid reports whether p is a known pattern.
func (p Pattern) Valid() bool {
	return p < patternCount
}

// ParsePattern resolves a pattern by its snake_case name.
func ParsePattern(s string) (Pattern, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range patternNames {
		if n == name {
			return Pattern(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q", s)
}

// Geometry returns the canonical geometry for the pattern. Fence yields the
// post-only shape; use FenceGeometry when neighbor information is known.
// Unknown patterns fall back to Full.
func (p Pattern) Geometry() SubVoxelGeometry {
	if !p.Valid() {
		return patternGeometry[PatternFull]
	}
	return patternGeometry[p]
}

// RotationSymmetric reports whether the pattern has no orientation variants.
func (p Pattern) RotationSymmetric() bool {
	return p == PatternFull || p == PatternPillar
}

// PlatformHorizontal is the bottom Y layer only (64 cells).
func PlatformHorizontal() SubVoxelGeometry {
	var g SubVoxelGeometry
	g.fillBox(0, 0, 0, SubVoxelCount, 1, SubVoxelCount)
	return g
}

// StaircaseX ascends along +X: step s covers y in [0, s+1) for the full depth (288 cells).
func StaircaseX() SubVoxelGeometry {
	var g SubVoxelGeometry
	for s := 0; s < SubVoxelCount; s++ {
		g.fillBox(s, 0, 0, s+1, s+1, SubVoxelCount)
	}
	return g
}

// Pillar is a centered 2x2x2 block (8 cells).
func Pillar() SubVoxelGeometry {
	var g SubVoxelGeometry
	g.fillBox(3, 3, 3, 5, 5, 5)
	return g
}

// FencePost is the fence shape used without neighbor context: two posts on
// the z=0 edge and two rails between them (28 cells).
func FencePost() SubVoxelGeometry {
	var g SubVoxelGeometry
	g.fillBox(0, 0, 0, 1, SubVoxelCount, 1)
	g.fillBox(SubVoxelCount-1, 0, 0, SubVoxelCount, SubVoxelCount, 1)
	for _, y := range fenceRailHeights {
		g.fillBox(1, y, 0, SubVoxelCount-1, y+1, 1)
	}
	return g
}
