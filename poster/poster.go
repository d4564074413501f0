// Package poster 把一帧图像量化成少量颜色，并描成矢量 SVG 海报。
package poster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	svgo "github.com/ajstarks/svgo"
	rsvg "github.com/rustyoz/svg"
)

const DefaultColors = 4

var ErrViewBox = errors.New("poster viewBox does not match frame size")

// TracedLayer 单个颜色图层的矢量路径
type TracedLayer struct {
	Color color.RGBA
	Paths []Path
}

type Poster struct {
	Width  int
	Height int
	Layers []TracedLayer
}

// FromImage 量化、分层并描边，colors <= 0 时取默认值
func FromImage(img image.Image, colors int) (*Poster, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if colors <= 0 {
		colors = DefaultColors
	}
	sz := img.Bounds().Size()
	if sz.X == 0 || sz.Y == 0 {
		return nil, errors.New("empty image")
	}

	layers, err := Split(img, Quantize(img, colors))
	if err != nil {
		return nil, err
	}

	p := &Poster{Width: sz.X, Height: sz.Y}
	for i, layer := range layers {
		paths, err := Trace(layer.Mask)
		if err != nil {
			return nil, fmt.Errorf("trace layer %d: %w", i, err)
		}
		p.Layers = append(p.Layers, TracedLayer{Color: layer.Color, Paths: paths})
	}
	return p, nil
}

// Render 输出单个 SVG 文档，每种颜色一个填充分组
func (p *Poster) Render(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svgo.New(ew)
	canvas.Startview(p.Width, p.Height, 0, 0, p.Width, p.Height)
	for _, layer := range p.Layers {
		canvas.Gstyle("fill:" + hexColor(layer.Color) + ";stroke:none")
		for _, path := range layer.Paths {
			if path.Transform != "" {
				canvas.Gtransform(path.Transform)
				canvas.Path(path.D)
				canvas.Gend()
				continue
			}
			canvas.Path(path.D)
		}
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

// ViewBox 读取 SVG 文档的 viewBox
func ViewBox(svgData string) ([4]float64, error) {
	var box [4]float64
	parsed, err := rsvg.ParseSvg(svgData, "poster", 1.0)
	if err != nil {
		return box, fmt.Errorf("parse svg: %w", err)
	}
	fields := strings.Fields(strings.ReplaceAll(parsed.ViewBox, ",", " "))
	if len(fields) != 4 {
		return box, fmt.Errorf("invalid viewBox %q", parsed.ViewBox)
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return box, fmt.Errorf("invalid viewBox %q: %w", parsed.ViewBox, err)
		}
		box[i] = v
	}
	return box, nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// errWriter 记住第一个写入错误，svgo 本身不返回错误
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}

// CheckSize 确认渲染出的文档 viewBox 为 0 0 w h
func CheckSize(svgData string, w, h int) error {
	box, err := ViewBox(svgData)
	if err != nil {
		return err
	}
	if box != [4]float64{0, 0, float64(w), float64(h)} {
		return fmt.Errorf("%w: got %v, want %dx%d", ErrViewBox, box, w, h)
	}
	return nil
}
