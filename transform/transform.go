package transform

import (
	"context"
	"fmt"
	"image"

	vptypes "videoproc/types"

	"gocv.io/x/gocv"
)

// Validate 检查参数，未知操作不算错误（按复制处理）
func Validate(op vptypes.Operation, params vptypes.Params) error {
	params = params.WithDefaults()
	switch op {
	case vptypes.OpResize:
		if params.Scale <= 0 {
			return fmt.Errorf("invalid scale %v", params.Scale)
		}
	case vptypes.OpBlur:
		if params.KSize <= 0 {
			return fmt.Errorf("invalid kernel size %d", params.KSize)
		}
	}
	return nil
}

// Apply 对单帧执行变换，返回新帧，输入帧不变。
// size 是源视频的尺寸，缩放基于它而不是帧本身。
func Apply(frame vptypes.Frame, op vptypes.Operation, params vptypes.Params, size image.Point) (vptypes.Frame, error) {
	params = params.WithDefaults()
	dst := gocv.NewMat()

	var err error
	switch op {
	case vptypes.OpResize:
		w := int(float64(size.X) * params.Scale)
		h := int(float64(size.Y) * params.Scale)
		if w < 1 || h < 1 {
			dst.Close()
			return vptypes.Frame{}, fmt.Errorf("resize frame %d: target size %dx%d", frame.Index, w, h)
		}
		err = gocv.Resize(frame.Mat, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)

	case vptypes.OpGray:
		gray := gocv.NewMat()
		err = gocv.CvtColor(frame.Mat, &gray, gocv.ColorBGRToGray)
		if err == nil {
			// 转回3通道以便编码
			err = gocv.CvtColor(gray, &dst, gocv.ColorGrayToBGR)
		}
		gray.Close()

	case vptypes.OpBlur:
		k := OddKernel(params.KSize)
		err = gocv.GaussianBlur(frame.Mat, &dst, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	default:
		dst.Close()
		dst = frame.Mat.Clone()
	}

	if err != nil {
		dst.Close()
		return vptypes.Frame{}, fmt.Errorf("%s frame %d: %w", op, frame.Index, err)
	}
	if dst.Empty() {
		dst.Close()
		return vptypes.Frame{}, fmt.Errorf("%s frame %d: empty result", op, frame.Index)
	}
	return vptypes.Frame{Index: frame.Index, Mat: dst}, nil
}

// ApplyAll 按顺序变换整个帧序列；出错时释放已生成的帧
func ApplyAll(ctx context.Context, frames []vptypes.Frame, op vptypes.Operation, params vptypes.Params, size image.Point) ([]vptypes.Frame, error) {
	if err := Validate(op, params); err != nil {
		return nil, err
	}

	out := make([]vptypes.Frame, 0, len(frames))
	release := func() {
		for i := range out {
			out[i].Close()
		}
	}
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			release()
			return nil, err
		}
		pf, err := Apply(f, op, params, size)
		if err != nil {
			release()
			return nil, err
		}
		out = append(out, pf)
	}
	return out, nil
}

// OddKernel 把偶数核尺寸调整为下一个奇数
func OddKernel(k int) int {
	if k < 1 {
		return 1
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}
