package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	vptypes "videoproc/types"

	"gocv.io/x/gocv"
)

const DefaultFourCC = "mp4v"

var (
	ErrNoFrames = errors.New("no frames to write")
	ErrFourCC   = errors.New("fourcc must be exactly 4 characters")
)

type Encoder struct {
	fourcc string
}

func New(fourcc string) *Encoder {
	if fourcc == "" {
		fourcc = DefaultFourCC
	}
	return &Encoder{fourcc: fourcc}
}

// Write 把帧序列编码到 path，帧尺寸取第一帧。输出目录不存在时创建。
func (e *Encoder) Write(ctx context.Context, path string, fps float64, frames []vptypes.Frame) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if len(e.fourcc) != 4 {
		return fmt.Errorf("%w: %q", ErrFourCC, e.fourcc)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	first := frames[0].Mat
	vw, err := gocv.VideoWriterFile(path, e.fourcc, fps, first.Cols(), first.Rows(), first.Channels() > 1)
	if err != nil {
		if vw != nil {
			vw.Close()
		}
		return fmt.Errorf("open video writer %s: %w", path, err)
	}
	defer vw.Close()
	if !vw.IsOpened() {
		return fmt.Errorf("open video writer %s: codec %s unavailable", path, e.fourcc)
	}

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := vw.Write(f.Mat); err != nil {
			return fmt.Errorf("write frame %d: %w", f.Index, err)
		}
	}
	return vw.Close()
}
