package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videoproc/config"
	"videoproc/logger"
	"videoproc/metrics"
	"videoproc/tracing"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}

	opts := runOptions{}
	flag.StringVar(&opts.Input, "input", "", "输入视频文件路径")
	flag.StringVar(&opts.Dir, "dir", "", "批量处理的输入目录")
	flag.StringVar(&opts.OutputDir, "output", cfg.OutputDir, "输出目录")
	flag.StringVar(&opts.OutputName, "name", cfg.OutputName, "单文件模式的输出文件名")
	flag.StringVar(&opts.Operation, "op", cfg.Operation, "处理操作: resize, gray, blur, copy")
	flag.Float64Var(&opts.Scale, "scale", cfg.Scale, "resize 缩放比例，0 表示单文件 0.75、批量 0.5")
	flag.IntVar(&opts.KSize, "ksize", cfg.KSize, "blur 高斯核尺寸")
	flag.IntVar(&opts.MaxFrames, "max", cfg.MaxFrames, "最大提取帧数，0 表示全部")
	flag.IntVar(&opts.Parallel, "parallel", cfg.Parallel, "批量模式并行处理的文件数")
	flag.IntVar(&opts.PosterColors, "poster", 0, "为第一帧生成 SVG 海报的颜色数，0 表示不生成")
	flag.StringVar(&opts.FourCC, "fourcc", cfg.FourCC, "输出视频编码")
	help := flag.Bool("help", false, "显示帮助信息")
	flag.Parse()

	if *help || (opts.Input == "") == (opts.Dir == "") {
		flag.Usage()
		if !*help {
			os.Exit(2)
		}
		return
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTelEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	if cfg.MetricsPort > 0 {
		srv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := run(ctx, cfg, opts, log); err != nil {
		log.Error("run failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
