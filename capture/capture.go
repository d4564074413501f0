package capture

import (
	"context"
	"errors"
	"fmt"

	vptypes "videoproc/types"

	"gocv.io/x/gocv"
)

var ErrOpen = errors.New("cannot open video")

// Source 是一个已打开的视频源
type Source struct {
	path string
	cap  *gocv.VideoCapture
}

func Open(path string) (*Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if vc != nil {
			vc.Close()
		}
		return nil, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w %s", ErrOpen, path)
	}
	return &Source{path: path, cap: vc}, nil
}

func (s *Source) Path() string { return s.path }

func (s *Source) IsOpened() bool {
	return s.cap != nil && s.cap.IsOpened()
}

// Info 返回 OpenCV 报告的尺寸、帧率与帧数
func (s *Source) Info() vptypes.VideoInfo {
	return vptypes.VideoInfo{
		Width:      int(s.cap.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(s.cap.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        s.cap.Get(gocv.VideoCaptureFPS),
		FrameCount: int(s.cap.Get(gocv.VideoCaptureFrameCount)),
	}
}

// ReadAll 顺序读取帧直到流结束，maxFrames <= 0 表示全部读取
func (s *Source) ReadAll(ctx context.Context, maxFrames int) ([]vptypes.Frame, error) {
	if !s.IsOpened() {
		return nil, fmt.Errorf("%w %s", ErrOpen, s.path)
	}

	var frames []vptypes.Frame
	for index := 0; maxFrames <= 0 || index < maxFrames; index++ {
		if err := ctx.Err(); err != nil {
			closeFrames(frames)
			return nil, err
		}
		mat := gocv.NewMat()
		if ok := s.cap.Read(&mat); !ok || mat.Empty() {
			mat.Close()
			break
		}
		frames = append(frames, vptypes.Frame{Index: index, Mat: mat})
	}
	return frames, nil
}

func (s *Source) Close() error {
	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	return err
}

func closeFrames(frames []vptypes.Frame) {
	for i := range frames {
		frames[i].Close()
	}
}
