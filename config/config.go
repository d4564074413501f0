package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	OutputDir  string  `env:"VIDEOPROC_OUTPUT_DIR" envDefault:"output"`
	OutputName string  `env:"VIDEOPROC_OUTPUT_NAME" envDefault:"processed.mp4"`
	Operation  string  `env:"VIDEOPROC_OPERATION"  envDefault:"resize"`
	Scale      float64 `env:"VIDEOPROC_SCALE"`
	KSize      int     `env:"VIDEOPROC_KSIZE"      envDefault:"5"`
	MaxFrames  int     `env:"VIDEOPROC_MAX_FRAMES" envDefault:"0"`
	Parallel   int     `env:"VIDEOPROC_PARALLEL"   envDefault:"1"`
	FourCC     string  `env:"VIDEOPROC_FOURCC"     envDefault:"mp4v"`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	S3SecretKey string `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	S3UseSSL    bool   `env:"S3_USE_SSL"    envDefault:"false"`
	S3Bucket    string `env:"S3_BUCKET"     envDefault:"processed"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
