package palette

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"subvox/internal/world"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Size is the fixed number of palette entries.
const Size = 64

// ErrInvalidColor is returned for malformed hex colors.
var ErrInvalidColor = errors.New("palette: invalid color")

// Palette is a fixed table of linear RGBA colors.
type Palette struct {
	colors [Size]mgl32.Vec4
}

var defaultPalette = generateDefault()

// Default returns the built-in palette.
func Default() *Palette {
	return defaultPalette
}

// generateDefault spreads hues with the golden ratio and alternates
// lightness so neighboring indices differ visibly.
func generateDefault() *Palette {
	p := &Palette{}
	const golden = 0.618033988749895
	for i := range p.colors {
		h := math.Mod(float64(i)*golden, 1)
		s := 0.45 + 0.1*float64(i%3)
		l := 0.42 + 0.08*float64(i%4)
		r, g, b := hslToRGB(h, s, l)
		p.colors[i] = mgl32.Vec4{float32(r), float32(g), float32(b), 1}
	}
	return p
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	q := l * (1 + s)
	if l >= 0.5 {
		q = l + s - l*s
	}
	pp := 2*l - q
	return hueToRGB(pp, q, h+1.0/3), hueToRGB(pp, q, h), hueToRGB(pp, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// FromHex builds a palette from "#RRGGBB" or "#RRGGBBAA" strings. Fewer than
// Size entries are repeated cyclically; extra entries are ignored.
func FromHex(hexes []string) (*Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrInvalidColor)
	}
	parsed := make([]mgl32.Vec4, len(hexes))
	for i, h := range hexes {
		c, err := ParseHexColor(h)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		parsed[i] = c
	}
	p := &Palette{}
	for i := range p.colors {
		p.colors[i] = parsed[i%len(parsed)]
	}
	return p, nil
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" into RGBA in [0,1].
func ParseHexColor(hex string) (mgl32.Vec4, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return mgl32.Vec4{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return mgl32.Vec4{}, fmt.Errorf("%w: bad length %q", ErrInvalidColor, hex)
	}
	out := mgl32.Vec4{0, 0, 0, 1}
	for i := 0; i*2 < len(h); i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return mgl32.Vec4{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
		}
		out[i] = float32(v) / 255
	}
	return out, nil
}

// Color returns entry i modulo Size.
func (p *Palette) Color(i int) mgl32.Vec4 {
	return p.colors[((i%Size)+Size)%Size]
}

// Index hashes a voxel and sub-voxel coordinate into [0, Size).
func Index(voxel, sub world.Pos) int {
	h := uint64(int64(voxel.X)*73856093) ^
		uint64(int64(voxel.Y)*19349663) ^
		uint64(int64(voxel.Z)*83492791) ^
		uint64(int64(sub.X)*2654435761) ^
		uint64(int64(sub.Y)*40503) ^
		uint64(int64(sub.Z)*97)
	return int(h % Size)
}

// Resolve returns the palette index and color for one sub-voxel cell. It is a
// pure function of its inputs.
func (p *Palette) Resolve(voxel, sub world.Pos) (int, mgl32.Vec4) {
	i := Index(voxel, sub)
	return i, p.colors[i]
}

// ResolveVoxel is Resolve keyed by the voxel's position.
func (p *Palette) ResolveVoxel(v world.Voxel, sub world.Pos) (int, mgl32.Vec4) {
	return p.Resolve(v.Pos, sub)
}

// ResolveType colors every cell of a voxel by its type alone, so whole
// surfaces of one material merge into large quads.
func (p *Palette) ResolveType(v world.Voxel, _ world.Pos) (int, mgl32.Vec4) {
	i := int(xxhash.Sum64String(string(v.Type)) % Size)
	return i, p.colors[i]
}
