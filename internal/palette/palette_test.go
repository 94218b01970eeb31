package palette

import (
	"testing"

	"subvox/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeterministic(t *testing.T) {
	p := Default()
	for x := -20; x <= 20; x += 7 {
		for s := 0; s < 8; s++ {
			v := world.Pos{X: x, Y: -x, Z: 3}
			sub := world.Pos{X: s, Y: 7 - s, Z: s / 2}
			i1, c1 := p.Resolve(v, sub)
			i2, c2 := p.Resolve(v, sub)
			require.Equal(t, i1, i2)
			require.Equal(t, c1, c2)
			require.GreaterOrEqual(t, i1, 0)
			require.Less(t, i1, Size)
			assert.Equal(t, p.Color(i1), c1)
		}
	}
}

func TestDefaultPaletteInRange(t *testing.T) {
	p := Default()
	for i := 0; i < Size; i++ {
		c := p.Color(i)
		for k := 0; k < 3; k++ {
			assert.GreaterOrEqual(t, c[k], float32(0))
			assert.LessOrEqual(t, c[k], float32(1))
		}
		assert.Equal(t, float32(1), c[3])
	}
	assert.Equal(t, p.Color(1), p.Color(1+Size))
	assert.Equal(t, p.Color(Size-1), p.Color(-1))
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff000080")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c[0], 1e-6)
	assert.InDelta(t, 128.0/255, c[3], 1e-6)

	c, err = ParseHexColor("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, c)

	for _, bad := range []string{"", "00ff00", "#0f0", "#gg0000"} {
		_, err := ParseHexColor(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestFromHexRepeats(t *testing.T) {
	p, err := FromHex([]string{"#000000", "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, p.Color(0))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, p.Color(63))

	_, err = FromHex(nil)
	assert.ErrorIs(t, err, ErrInvalidColor)
	_, err = FromHex([]string{"#000000", "red"})
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestResolveType(t *testing.T) {
	p := Default()
	stone := world.Voxel{Pos: world.Pos{X: 1}, Type: "stone"}
	i1, _ := p.ResolveType(stone, world.Pos{})
	i2, _ := p.ResolveType(world.Voxel{Pos: world.Pos{X: 9}, Type: "stone"}, world.Pos{X: 4})
	assert.Equal(t, i1, i2)

	i3, c3 := p.ResolveVoxel(stone, world.Pos{X: 2})
	i4, c4 := p.Resolve(stone.Pos, world.Pos{X: 2})
	assert.Equal(t, i4, i3)
	assert.Equal(t, c4, c3)
}
