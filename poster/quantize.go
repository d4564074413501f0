package poster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sort"

	vptypes "videoproc/types"
)

// 计算盒子范围
func calculateBoxRange(box *vptypes.Box) {
	if len(box.Pixels) == 0 {
		return
	}

	box.RMin, box.RMax = 255, 0
	box.GMin, box.GMax = 255, 0
	box.BMin, box.BMax = 255, 0

	for _, p := range box.Pixels {
		box.RMin, box.RMax = min(box.RMin, p.R), max(box.RMax, p.R)
		box.GMin, box.GMax = min(box.GMin, p.G), max(box.GMax, p.G)
		box.BMin, box.BMax = min(box.BMin, p.B), max(box.BMax, p.B)
	}
}

// Quantize 执行中位切分颜色量化，返回最多 colorCount 种颜色
func Quantize(img image.Image, colorCount int) []color.RGBA {
	bounds := img.Bounds()
	pixels := make([]vptypes.Pixel, 0, bounds.Dx()*bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, vptypes.Pixel{R: int(r >> 8), G: int(g >> 8), B: int(b >> 8)})
		}
	}

	initialBox := &vptypes.Box{Pixels: pixels}
	calculateBoxRange(initialBox)
	boxes := []*vptypes.Box{initialBox}

	for len(boxes) < colorCount && len(boxes) < len(pixels) {
		// 找到范围最大的盒子
		splitIdx, maxRange := -1, 0
		for i, box := range boxes {
			if len(box.Pixels) < 2 {
				continue
			}
			r := max(box.RMax-box.RMin, box.GMax-box.GMin, box.BMax-box.BMin)
			if r > maxRange {
				maxRange = r
				splitIdx = i
			}
		}
		// 所有盒子都是单色
		if splitIdx < 0 {
			break
		}
		box := boxes[splitIdx]

		rRange := box.RMax - box.RMin
		gRange := box.GMax - box.GMin
		bRange := box.BMax - box.BMin
		var key func(p vptypes.Pixel) int
		switch {
		case rRange >= gRange && rRange >= bRange:
			key = func(p vptypes.Pixel) int { return p.R }
		case gRange >= bRange:
			key = func(p vptypes.Pixel) int { return p.G }
		default:
			key = func(p vptypes.Pixel) int { return p.B }
		}
		sort.Slice(box.Pixels, func(i, j int) bool { return key(box.Pixels[i]) < key(box.Pixels[j]) })

		median := len(box.Pixels) / 2
		box1 := &vptypes.Box{Pixels: box.Pixels[:median]}
		box2 := &vptypes.Box{Pixels: box.Pixels[median:]}
		calculateBoxRange(box1)
		calculateBoxRange(box2)

		boxes = append(boxes[:splitIdx], append([]*vptypes.Box{box1, box2}, boxes[splitIdx+1:]...)...)
	}

	// 每个盒子取平均颜色
	var result []color.RGBA
	for _, box := range boxes {
		count := len(box.Pixels)
		if count == 0 {
			continue
		}
		var rSum, gSum, bSum int
		for _, p := range box.Pixels {
			rSum += p.R
			gSum += p.G
			bSum += p.B
		}
		result = append(result, color.RGBA{
			R: uint8(rSum / count),
			G: uint8(gSum / count),
			B: uint8(bSum / count),
			A: 255,
		})
	}
	return result
}

// Split 按最近颜色把图像拆成图层，每个像素只属于一个图层
func Split(img image.Image, palette []color.RGBA) ([]vptypes.Layer, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if len(palette) == 0 {
		return nil, errors.New("empty palette")
	}

	bounds := img.Bounds()
	layers := make([]vptypes.Layer, len(palette))
	for i, c := range palette {
		mask := image.NewGray(bounds)
		// 默认白色背景
		for j := range mask.Pix {
			mask.Pix[j] = 255
		}
		layers[i] = vptypes.Layer{Color: c, Mask: mask}
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rr, gg, bb := int(r>>8), int(g>>8), int(b>>8)

			bestIdx, bestDist := 0, math.MaxInt
			for i, c := range palette {
				dr, dg, db := rr-int(c.R), gg-int(c.G), bb-int(c.B)
				if dist := dr*dr + dg*dg + db*db; dist < bestDist {
					bestDist = dist
					bestIdx = i
				}
			}
			// 在目标图层上标记黑色
			layers[bestIdx].Mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	return layers, nil
}
