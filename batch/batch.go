package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"videoproc/metrics"
	"videoproc/processor"
	vptypes "videoproc/types"

	"go.uber.org/zap"
)

var ErrInputDir = errors.New("input directory does not exist")

// VideoExtensions 是批处理识别的扩展名
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// Uploader 在每个输出文件保存后被调用
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type Options struct {
	Parallel  int
	MaxFrames int
	Upload    Uploader
	Processor []processor.Option
	Logger    *zap.Logger
}

type Result struct {
	Processed []string // 输出文件路径
	Skipped   []string // 无法打开的输入
	Failed    map[string]error
}

// FindVideos 列出目录（不递归）中扩展名匹配的文件，按名称排序
func FindVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDir, dir)
		}
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if hasVideoExt(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasVideoExt(name string) bool {
	for _, ext := range VideoExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// OutputName 返回批处理输出文件名
func OutputName(inputPath string) string {
	return "processed_" + filepath.Base(inputPath)
}

// ProcessDir 批量处理目录中的视频。单个文件失败不会中断整个批次。
func ProcessDir(ctx context.Context, inputDir, outputDir string, op vptypes.Operation, params vptypes.Params, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	files, err := FindVideos(inputDir)
	if err != nil {
		log.Error("cannot scan input directory", zap.String("dir", inputDir), zap.Error(err))
		return nil, err
	}
	log.Info("video files found", zap.Int("count", len(files)), zap.String("dir", inputDir))

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	res := &Result{Failed: map[string]error{}}
	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				out, err := processOne(ctx, file, outputDir, op, params, opts, log)

				mu.Lock()
				switch {
				case errors.Is(err, errSkipped):
					res.Skipped = append(res.Skipped, file)
					metrics.VideosTotal.WithLabelValues("skipped").Inc()
				case err != nil:
					res.Failed[file] = err
					metrics.VideosTotal.WithLabelValues("failed").Inc()
				default:
					res.Processed = append(res.Processed, out)
					metrics.VideosTotal.WithLabelValues("processed").Inc()
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- f:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Strings(res.Processed)
	sort.Strings(res.Skipped)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

var errSkipped = errors.New("skipped")

func processOne(ctx context.Context, file, outputDir string, op vptypes.Operation, params vptypes.Params, opts Options, log *zap.Logger) (string, error) {
	log = log.With(zap.String("file", file))

	popts := append([]processor.Option{processor.WithLogger(log)}, opts.Processor...)
	p := processor.New(file, outputDir, popts...)
	defer p.Close()

	if err := p.LoadVideo(ctx); err != nil {
		log.Warn("skipping video", zap.Error(err))
		return "", errSkipped
	}
	if err := p.ExtractFrames(ctx, opts.MaxFrames); err != nil {
		log.Error("extract failed", zap.Error(err))
		return "", err
	}
	if err := p.ProcessFrames(ctx, op, params); err != nil {
		log.Error("process failed", zap.Error(err))
		return "", err
	}
	out, err := p.SaveVideo(ctx, OutputName(file))
	if err != nil {
		log.Error("save failed", zap.Error(err))
		return "", err
	}

	if opts.Upload != nil {
		key, err := opts.Upload.Upload(ctx, out)
		if err != nil {
			log.Error("upload failed", zap.Error(err))
			return "", err
		}
		log.Info("output uploaded", zap.String("key", key))
	}
	return out, nil
}
