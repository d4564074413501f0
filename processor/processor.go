package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"videoproc/capture"
	"videoproc/encoder"
	"videoproc/metrics"
	"videoproc/poster"
	"videoproc/tracing"
	"videoproc/transform"
	vptypes "videoproc/types"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	DefaultOutputDir  = "output"
	DefaultOutputName = "processed.mp4"
	// OpenCV 和 ffprobe 都拿不到帧率时使用
	FallbackFPS = 25.0
)

var (
	ErrNotLoaded = errors.New("video not loaded")
	ErrNoFrames  = errors.New("no frames")
)

// VideoProcessor 把整段视频解码到内存，逐帧变换后重新编码。
// 不是并发安全的，一个实例只处理一个输入文件。
type VideoProcessor struct {
	inputPath string
	outputDir string

	src    *capture.Source
	frames []vptypes.Frame
	info   vptypes.VideoInfo

	enc    *encoder.Encoder
	probe  bool
	logger *zap.Logger
}

type Option func(*VideoProcessor)

func WithLogger(l *zap.Logger) Option {
	return func(p *VideoProcessor) { p.logger = l }
}

func WithEncoder(e *encoder.Encoder) Option {
	return func(p *VideoProcessor) { p.enc = e }
}

// WithProbe 控制 OpenCV 帧率为 0 时是否调用 ffprobe
func WithProbe(enabled bool) Option {
	return func(p *VideoProcessor) { p.probe = enabled }
}

func New(inputPath, outputDir string, opts ...Option) *VideoProcessor {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	p := &VideoProcessor{
		inputPath: inputPath,
		outputDir: outputDir,
		probe:     true,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.enc == nil {
		p.enc = encoder.New(encoder.DefaultFourCC)
	}
	p.logger = p.logger.With(zap.String("input", inputPath))
	return p
}

func (p *VideoProcessor) InputPath() string { return p.inputPath }
func (p *VideoProcessor) OutputDir() string { return p.outputDir }
func (p *VideoProcessor) Info() vptypes.VideoInfo { return p.info }
func (p *VideoProcessor) Frames() []vptypes.Frame { return p.frames }
func (p *VideoProcessor) Loaded() bool { return p.src != nil && p.src.IsOpened() }

// LoadVideo 打开视频并读取尺寸和帧率
func (p *VideoProcessor) LoadVideo(ctx context.Context) error {
	ctx, span := tracing.Tracer().Start(ctx, "VideoProcessor.LoadVideo")
	defer span.End()
	defer observe("load", time.Now())

	if p.src != nil {
		p.src.Close()
	}
	src, err := capture.Open(p.inputPath)
	if err != nil {
		p.logger.Error("cannot open video", zap.Error(err))
		return err
	}
	p.src = src
	p.info = src.Info()

	if p.info.FPS <= 0 && p.probe {
		if probed, err := capture.Probe(ctx, p.inputPath); err != nil {
			p.logger.Warn("ffprobe fallback failed", zap.Error(err))
		} else {
			p.info.FPS = probed.FPS
			p.info.Codec = probed.Codec
			p.info.Duration = probed.Duration
		}
	}

	span.SetAttributes(
		attribute.Int("video.width", p.info.Width),
		attribute.Int("video.height", p.info.Height),
		attribute.Float64("video.fps", p.info.FPS),
	)
	p.logger.Info("video loaded",
		zap.Int("width", p.info.Width),
		zap.Int("height", p.info.Height),
		zap.Float64("fps", p.info.FPS),
	)
	return nil
}

// ExtractFrames 读取帧追加到内存序列，maxFrames <= 0 表示全部
func (p *VideoProcessor) ExtractFrames(ctx context.Context, maxFrames int) error {
	ctx, span := tracing.Tracer().Start(ctx, "VideoProcessor.ExtractFrames")
	defer span.End()
	defer observe("extract", time.Now())

	if !p.Loaded() {
		p.logger.Warn("video not loaded")
		return ErrNotLoaded
	}

	frames, err := p.src.ReadAll(ctx, maxFrames)
	if err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	offset := len(p.frames)
	for i := range frames {
		frames[i].Index += offset
	}
	p.frames = append(p.frames, frames...)
	metrics.FramesExtractedTotal.Add(float64(len(frames)))

	span.SetAttributes(attribute.Int("frames", len(p.frames)))
	p.logger.Info("frames extracted", zap.Int("count", len(p.frames)))
	return nil
}

// ProcessFrames 用变换后的帧替换当前序列
func (p *VideoProcessor) ProcessFrames(ctx context.Context, op vptypes.Operation, params vptypes.Params) error {
	ctx, span := tracing.Tracer().Start(ctx, "VideoProcessor.ProcessFrames")
	defer span.End()
	defer observe("process", time.Now())

	if len(p.frames) == 0 {
		p.logger.Warn("no frames to process")
		return ErrNoFrames
	}

	size := image.Pt(p.info.Width, p.info.Height)
	if size.X <= 0 || size.Y <= 0 {
		size = image.Pt(p.frames[0].Mat.Cols(), p.frames[0].Mat.Rows())
	}
	processed, err := transform.ApplyAll(ctx, p.frames, op, params, size)
	if err != nil {
		return fmt.Errorf("process frames: %w", err)
	}
	p.releaseFrames()
	p.frames = processed
	metrics.FramesProcessedTotal.WithLabelValues(string(op)).Add(float64(len(processed)))

	span.SetAttributes(attribute.String("operation", string(op)))
	p.logger.Info("frames processed", zap.Int("count", len(p.frames)), zap.String("operation", string(op)))
	return nil
}

// SaveVideo 按原帧率写出到输出目录，返回输出路径
func (p *VideoProcessor) SaveVideo(ctx context.Context, filename string) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "VideoProcessor.SaveVideo")
	defer span.End()
	defer observe("save", time.Now())

	if len(p.frames) == 0 {
		p.logger.Warn("no frames to save")
		return "", ErrNoFrames
	}
	if filename == "" {
		filename = DefaultOutputName
	}
	outputPath := filepath.Join(p.outputDir, filename)

	fps := p.info.FPS
	if fps <= 0 {
		p.logger.Warn("unknown frame rate, using fallback", zap.Float64("fps", FallbackFPS))
		fps = FallbackFPS
	}
	if err := p.enc.Write(ctx, outputPath, fps, p.frames); err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}

	span.SetAttributes(attribute.String("output", outputPath))
	p.logger.Info("video saved", zap.String("output", outputPath))
	return outputPath, nil
}

// SavePoster 把第一帧量化并描成 SVG 海报，返回输出路径
func (p *VideoProcessor) SavePoster(ctx context.Context, filename string, colors int) (string, error) {
	_, span := tracing.Tracer().Start(ctx, "VideoProcessor.SavePoster")
	defer span.End()
	defer observe("poster", time.Now())

	if len(p.frames) == 0 {
		return "", ErrNoFrames
	}
	img, err := p.frames[0].Mat.ToImage()
	if err != nil {
		return "", fmt.Errorf("frame to image: %w", err)
	}
	pst, err := poster.FromImage(img, colors)
	if err != nil {
		return "", fmt.Errorf("build poster: %w", err)
	}

	var buf bytes.Buffer
	if err := pst.Render(&buf); err != nil {
		return "", fmt.Errorf("render poster: %w", err)
	}
	// 海报坐标系与帧尺寸一致
	w, h := p.frames[0].Mat.Cols(), p.frames[0].Mat.Rows()
	if err := poster.CheckSize(buf.String(), w, h); err != nil {
		return "", fmt.Errorf("render poster: %w", err)
	}

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outputPath := filepath.Join(p.outputDir, filename)
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write poster file: %w", err)
	}

	p.logger.Info("poster saved",
		zap.String("output", outputPath),
		zap.Int("colors", len(pst.Layers)),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return outputPath, nil
}

// Close 释放视频句柄和帧，可重复调用
func (p *VideoProcessor) Close() error {
	var err error
	if p.src != nil {
		err = p.src.Close()
		p.src = nil
	}
	p.releaseFrames()
	p.logger.Debug("resources released")
	return err
}

func (p *VideoProcessor) releaseFrames() {
	for i := range p.frames {
		p.frames[i].Close()
	}
	p.frames = nil
}

func observe(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
