package poster

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 250, G: 10, B: 10, A: 255}
	blue = color.RGBA{R: 10, G: 10, B: 240, A: 255}
)

// halves 左半边红色，右半边蓝色
func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, red)
			} else {
				img.SetRGBA(x, y, blue)
			}
		}
	}
	return img
}

func TestQuantizeTwoColors(t *testing.T) {
	palette := Quantize(halves(16, 8), 4)
	assert.ElementsMatch(t, []color.RGBA{red, blue}, palette)
}

func TestQuantizeUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	assert.Equal(t, []color.RGBA{{255, 255, 255, 255}}, Quantize(img, 8))
}

func TestSplitMasksAreDisjoint(t *testing.T) {
	layers, err := Split(halves(16, 8), []color.RGBA{red, blue})
	require.NoError(t, err)
	require.Len(t, layers, 2)

	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			inRed := layers[0].Mask.GrayAt(x, y).Y == 0
			inBlue := layers[1].Mask.GrayAt(x, y).Y == 0
			assert.NotEqual(t, inRed, inBlue, "pixel %d,%d", x, y)
			assert.Equal(t, x < 8, inRed, "pixel %d,%d", x, y)
		}
	}
}

func TestSplitErrors(t *testing.T) {
	_, err := Split(nil, []color.RGBA{red})
	assert.Error(t, err)
	_, err = Split(halves(2, 2), nil)
	assert.Error(t, err)
}

func TestExtractPaths(t *testing.T) {
	data := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<path d="M0 0 L1 1 Z"/>
<g transform="translate(0,10) scale(1,-1)">
  <path d="M2 2 L3 3 Z"/>
  <g transform="scale(2)"><path d="M4 4 Z"/></g>
</g>
</svg>`
	paths, err := extractPaths(data)
	require.NoError(t, err)
	assert.Equal(t, []Path{
		{D: "M0 0 L1 1 Z"},
		{Transform: "translate(0,10) scale(1,-1)", D: "M2 2 L3 3 Z"},
		{Transform: "translate(0,10) scale(1,-1) scale(2)", D: "M4 4 Z"},
	}, paths)

	_, err = extractPaths("<svg")
	assert.Error(t, err)
}

func TestRenderAndViewBox(t *testing.T) {
	p := &Poster{
		Width:  32,
		Height: 18,
		Layers: []TracedLayer{
			{Color: red, Paths: []Path{{D: "M0 0 L16 0 L16 18 L0 18 Z"}}},
			{Color: blue, Paths: []Path{{Transform: "translate(16,0)", D: "M0 0 L16 0 L16 18 L0 18 Z"}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "fill:#fa0a0a")
	assert.Contains(t, out, "fill:#0a0af0")
	assert.Contains(t, out, `transform="translate(16,0)"`)
	assert.Equal(t, 2, strings.Count(out, "<path"))

	box, err := ViewBox(out)
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0, 0, 32, 18}, box)
}

func TestCheckSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Poster{Width: 20, Height: 10}).Render(&buf))

	assert.NoError(t, CheckSize(buf.String(), 20, 10))
	assert.ErrorIs(t, CheckSize(buf.String(), 21, 10), ErrViewBox)
	assert.ErrorIs(t, CheckSize(buf.String(), 20, 11), ErrViewBox)
	assert.Error(t, CheckSize("<svg", 20, 10))
}

func TestFromImage(t *testing.T) {
	p, err := FromImage(halves(24, 12), 2)
	require.NoError(t, err)

	assert.Equal(t, 24, p.Width)
	assert.Equal(t, 12, p.Height)
	require.Len(t, p.Layers, 2)

	total := 0
	for _, l := range p.Layers {
		total += len(l.Paths)
	}
	assert.Greater(t, total, 0)
}

func TestFromImageErrors(t *testing.T) {
	_, err := FromImage(nil, 2)
	assert.Error(t, err)
	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), 2)
	assert.Error(t, err)
}
