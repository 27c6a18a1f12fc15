package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"echotrace/ai"
	"echotrace/audio"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config конфигурация движка детекции
type Config struct {
	Decoder    audio.DecoderConfig `yaml:"decoder"`
	Features   ai.ExtractorConfig  `yaml:"features"`
	Temporal   ai.TemporalConfig   `yaml:"temporal"`
	Thresholds ai.Thresholds       `yaml:"thresholds"`
	Log        LogConfig           `yaml:"log"`
}

// LogConfig настройки логирования
type LogConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // консольный формат вместо JSON
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Decoder:    audio.DefaultDecoderConfig(),
		Features:   ai.DefaultExtractorConfig(),
		Temporal:   ai.DefaultTemporalConfig(),
		Thresholds: ai.DefaultThresholds(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load читает YAML-файл поверх значений по умолчанию.
// Пустой путь означает конфигурацию по умолчанию.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse декодирует YAML из r поверх значений по умолчанию
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	// Подставляем переменные окружения в пути
	config.Decoder.FFmpegPath = os.ExpandEnv(config.Decoder.FFmpegPath)
	config.Decoder.ScratchDir = os.ExpandEnv(config.Decoder.ScratchDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	if c.Decoder.TargetSampleRate <= 0 {
		return fmt.Errorf("decoder.target_sample_rate must be positive, got %d", c.Decoder.TargetSampleRate)
	}
	if c.Decoder.TranscodeTimeout <= 0 {
		return fmt.Errorf("decoder.transcode_timeout must be positive, got %s", c.Decoder.TranscodeTimeout)
	}

	f := c.Features
	if f.FrameLength <= 0 || f.HopLength <= 0 || f.HopLength > f.FrameLength {
		return fmt.Errorf("features: invalid frame_length=%d hop_length=%d", f.FrameLength, f.HopLength)
	}
	if f.NMels <= 0 || f.NMFCC <= 0 || f.NMFCC > f.NMels {
		return fmt.Errorf("features: invalid n_mels=%d n_mfcc=%d", f.NMels, f.NMFCC)
	}
	if f.FMin <= 0 || f.FMax <= f.FMin {
		return fmt.Errorf("features: invalid pitch range fmin=%v fmax=%v", f.FMin, f.FMax)
	}
	if f.SilenceThreshold < 0 || f.VoicingThreshold <= 0 || f.TopDB < 0 {
		return fmt.Errorf("features: thresholds must be non-negative")
	}

	t := c.Temporal
	if t.ChunkSeconds <= 0 {
		return fmt.Errorf("temporal.chunk_seconds must be positive, got %v", t.ChunkSeconds)
	}
	if t.ConsistencyRatio < 0 || t.ConsistencyRatio > 1 {
		return fmt.Errorf("temporal.consistency_ratio must be in [0, 1], got %v", t.ConsistencyRatio)
	}
	if t.PitchThreshold < 0 {
		return fmt.Errorf("temporal.pitch_threshold must be non-negative, got %v", t.PitchThreshold)
	}
	if t.Workers <= 0 {
		return fmt.Errorf("temporal.workers must be positive, got %d", t.Workers)
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// BuildLogger создаёт zap.Logger по настройкам; verbose включает debug
func (l LogConfig) BuildLogger(verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if l.Development || verbose {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
