package vptypes

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Frame 表示一帧解码后的 BGR 图像
type Frame struct {
	Index int
	Mat   gocv.Mat
}

// Close 释放底层 Mat 的内存
func (f *Frame) Close() {
	_ = f.Mat.Close()
}

// Operation 是逐帧变换的标签，未知标签按原样复制
type Operation string

const (
	OpResize Operation = "resize"
	OpGray   Operation = "gray"
	OpBlur   Operation = "blur"
	OpCopy   Operation = "copy"
)

const (
	DefaultScale = 0.5
	DefaultKSize = 5
)

// Params 变换参数，零值取默认
type Params struct {
	Scale float64
	KSize int
}

func (p Params) WithDefaults() Params {
	if p.Scale == 0 {
		p.Scale = DefaultScale
	}
	if p.KSize == 0 {
		p.KSize = DefaultKSize
	}
	return p
}

// VideoInfo 视频基本信息
type VideoInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Codec      string
	Duration   float64
}

// Layer 表示某一帧中某个颜色的分割图层
type Layer struct {
	Color color.RGBA  // 图层颜色
	Mask  *image.Gray // 黑白掩码图：黑=该颜色，白=其他
}

// Pixel 表示一个像素的 RGB 值
type Pixel struct {
	R, G, B int
}

// Box 表示颜色盒子
type Box struct {
	Pixels     []Pixel
	RMin, RMax int
	GMin, GMax int
	BMin, BMax int
}
