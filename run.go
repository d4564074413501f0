package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"videoproc/batch"
	"videoproc/config"
	"videoproc/encoder"
	"videoproc/processor"
	"videoproc/storage"
	vptypes "videoproc/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 单文件模式未指定 -scale 时的缩放比例，批量模式沿用 vptypes.DefaultScale
const singleFileScale = 0.75

type runOptions struct {
	Input        string
	Dir          string
	OutputDir    string
	OutputName   string
	Operation    string
	Scale        float64
	KSize        int
	MaxFrames    int
	Parallel     int
	PosterColors int
	FourCC       string
}

func (o runOptions) params() vptypes.Params {
	return vptypes.Params{Scale: o.Scale, KSize: o.KSize}
}

func run(ctx context.Context, cfg *config.Config, opts runOptions, log *zap.Logger) error {
	runID := uuid.New()
	log = log.With(zap.String("run_id", runID.String()))

	var uploader batch.Uploader
	if cfg.S3Endpoint != "" {
		st, err := storage.NewStorage(storage.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
		}, runID)
		if err != nil {
			return err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return err
		}
		uploader = st
	}

	op := vptypes.Operation(strings.ToLower(opts.Operation))
	popts := []processor.Option{processor.WithEncoder(encoder.New(opts.FourCC))}

	if opts.Dir != "" {
		res, err := batch.ProcessDir(ctx, opts.Dir, opts.OutputDir, op, opts.params(), batch.Options{
			Parallel:  opts.Parallel,
			MaxFrames: opts.MaxFrames,
			Upload:    uploader,
			Processor: popts,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		log.Info("batch finished",
			zap.Int("processed", len(res.Processed)),
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("failed", len(res.Failed)),
		)
		return nil
	}

	if opts.Scale == 0 {
		opts.Scale = singleFileScale
	}
	return processFile(ctx, opts, op, popts, uploader, log)
}

func processFile(ctx context.Context, opts runOptions, op vptypes.Operation, popts []processor.Option, uploader batch.Uploader, log *zap.Logger) error {
	p := processor.New(opts.Input, opts.OutputDir, append(popts, processor.WithLogger(log))...)
	defer p.Close()

	if err := p.LoadVideo(ctx); err != nil {
		return err
	}
	if err := p.ExtractFrames(ctx, opts.MaxFrames); err != nil {
		return err
	}
	if err := p.ProcessFrames(ctx, op, opts.params()); err != nil {
		return err
	}
	out, err := p.SaveVideo(ctx, opts.OutputName)
	if err != nil {
		return err
	}
	outputs := []string{out}

	if opts.PosterColors > 0 {
		name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)) + ".svg"
		posterPath, err := p.SavePoster(ctx, name, opts.PosterColors)
		if err != nil {
			return err
		}
		outputs = append(outputs, posterPath)
	}

	if uploader != nil {
		for _, o := range outputs {
			key, err := uploader.Upload(ctx, o)
			if err != nil {
				return fmt.Errorf("upload output: %w", err)
			}
			log.Info("output uploaded", zap.String("key", key))
		}
	}
	return nil
}
