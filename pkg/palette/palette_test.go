package palette

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivergingEndpoints(t *testing.T) {
	m, err := New(Default, 0, 100)
	require.NoError(t, err)

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	assert.Equal(t, white, m.Color(0), "outlet pressure is white")
	assert.Equal(t, color.RGBA{R: 85, G: 85, B: 255, A: 255}, m.Color(100), "inlet pressure")
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, m.Color(150), "saturated blue")
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, m.Color(-150), "saturated red")
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, m.Color(1e9), "clamped above")
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, m.Color(-1e9), "clamped below")
}

func TestEqualBoundaries(t *testing.T) {
	m, err := New(Default, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, m.Color(42))
}

func TestSci(t *testing.T) {
	m, err := New("sci", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, m.Color(0))
	assert.Equal(t, uint8(255), m.Color(1).R, "top of the range is red")
	assert.Equal(t, uint8(0), m.Color(1).B)
	assert.Equal(t, m.Color(-5), m.Color(0), "values below the range clamp")
}

func TestGradientSchemes(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name, 0, 100)
		require.NoError(t, err, name)
		for _, p := range []float64{-50, 0, 50, 100, 200, math.NaN()} {
			assert.Equal(t, uint8(0xff), m.Color(p).A, "%s at %g", name, p)
		}
	}

	m, err := New("viridis", 0, 100)
	require.NoError(t, err)
	assert.NotEqual(t, m.Color(0), m.Color(100))
	assert.Equal(t, m.Color(100), m.Color(500))
}

func TestUnknownScheme(t *testing.T) {
	_, err := New("rainbow-unicorn", 0, 1)
	assert.Error(t, err)
}
