package ai

import (
	"context"
	"fmt"

	"echotrace/audio"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PitchConsistency устойчивость низкой вариативности тона во времени
type PitchConsistency string

const (
	// PitchConsistent большинство кусков имеют «машинно» ровный тон
	PitchConsistent PitchConsistency = "CONSISTENT"
	// PitchInconsistent ровный тон встречается эпизодически
	PitchInconsistent PitchConsistency = "INCONSISTENT"
	// PitchInconclusive запись слишком короткая для вывода
	PitchInconclusive PitchConsistency = "INCONCLUSIVE"
)

// TemporalConfig параметры анализа по кускам
type TemporalConfig struct {
	ChunkSeconds     float64 `yaml:"chunk_seconds"`
	PitchThreshold   float64 `yaml:"pitch_threshold"`   // кусок «машинный», если дисперсия ниже
	ConsistencyRatio float64 `yaml:"consistency_ratio"` // доля «машинных» кусков для CONSISTENT
	Workers          int     `yaml:"workers"`
}

// DefaultTemporalConfig значения по умолчанию
func DefaultTemporalConfig() TemporalConfig {
	return TemporalConfig{
		ChunkSeconds:     1.5,
		PitchThreshold:   0.12,
		ConsistencyRatio: 0.75,
		Workers:          4,
	}
}

// TemporalAnalyzer проверяет, держится ли ровный тон на протяжении записи
type TemporalAnalyzer struct {
	config    TemporalConfig
	extractor ExtractorConfig
	logger    *zap.Logger
}

// NewTemporalAnalyzer создаёт анализатор; YIN берёт параметры из extractor
func NewTemporalAnalyzer(config TemporalConfig, extractor ExtractorConfig, logger *zap.Logger) *TemporalAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &TemporalAnalyzer{
		config:    config,
		extractor: extractor,
		logger:    logger,
	}
}

// Analyze режет запись на куски и считает долю кусков с низкой дисперсией тона.
// Кусок без вокализованных фреймов или с ошибкой не засчитывается, но
// остаётся в знаменателе.
func (a *TemporalAnalyzer) Analyze(ctx context.Context, sample audio.Sample) PitchConsistency {
	if !sample.Valid() {
		return PitchInconclusive
	}

	chunkSize := int(a.config.ChunkSeconds * float64(sample.SampleRate))
	chunks := sample.Chunks(chunkSize)
	if len(chunks) < 2 {
		return PitchInconclusive
	}

	aiLike := make([]bool, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := a.chunkAILike(chunk)
			if err != nil {
				a.logger.Debug("chunk pitch tracking failed",
					zap.Int("chunk", i),
					zap.Error(err))
				return nil
			}
			aiLike[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Debug("temporal analysis cancelled", zap.Error(err))
		return PitchInconclusive
	}

	count := 0
	for _, ok := range aiLike {
		if ok {
			count++
		}
	}
	ratio := float64(count) / float64(len(chunks))

	a.logger.Debug("temporal analysis finished",
		zap.Int("chunks", len(chunks)),
		zap.Int("ai_like", count),
		zap.Float64("ratio", ratio))

	if ratio >= a.config.ConsistencyRatio {
		return PitchConsistent
	}
	return PitchInconsistent
}

// chunkAILike true, если в куске есть вокализованные фреймы и дисперсия F0 ниже порога
func (a *TemporalAnalyzer) chunkAILike(chunk audio.Sample) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pitch tracker panicked: %v", r)
		}
	}()

	tracker, err := NewPitchTracker(a.extractor.PitchConfig(chunk.SampleRate))
	if err != nil {
		return false, err
	}
	variance, voiced := tracker.VoicedPitchVariance(chunk.Samples)
	if voiced == 0 {
		return false, nil
	}
	return variance < a.config.PitchThreshold, nil
}
