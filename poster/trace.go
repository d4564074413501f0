package poster

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"

	"github.com/gotranspile/gotrace"
)

// Path 是一条 SVG 路径及其所在分组的变换
type Path struct {
	Transform string
	D         string
}

// Trace 使用 gotrace 将黑白掩码（黑=前景）描成 SVG 路径
func Trace(mask *image.Gray) ([]Path, error) {
	svgData, err := traceGrayToSVG(mask)
	if err != nil {
		return nil, err
	}
	return extractPaths(svgData)
}

func traceGrayToSVG(mask *image.Gray) (string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", fmt.Errorf("trace bitmap: %w", err)
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", fmt.Errorf("render traced paths: %w", err)
	}
	return buf.String(), nil
}

type svgPath struct {
	D string `xml:"d,attr"`
}

type svgGroup struct {
	Transform string     `xml:"transform,attr"`
	Paths     []svgPath  `xml:"path"`
	Groups    []svgGroup `xml:"g"`
}

type svgDoc struct {
	Paths  []svgPath  `xml:"path"`
	Groups []svgGroup `xml:"g"`
}

// extractPaths 提取所有 <path> 的 d 属性，保留外层 <g> 的 transform
func extractPaths(data string) ([]Path, error) {
	var doc svgDoc
	if err := xml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("parse traced svg: %w", err)
	}

	var out []Path
	for _, p := range doc.Paths {
		if p.D != "" {
			out = append(out, Path{D: p.D})
		}
	}
	var walk func(g svgGroup, transform string)
	walk = func(g svgGroup, transform string) {
		if g.Transform != "" {
			if transform != "" {
				transform += " "
			}
			transform += g.Transform
		}
		for _, p := range g.Paths {
			if p.D != "" {
				out = append(out, Path{Transform: transform, D: p.D})
			}
		}
		for _, child := range g.Groups {
			walk(child, transform)
		}
	}
	for _, g := range doc.Groups {
		walk(g, "")
	}
	return out, nil
}
