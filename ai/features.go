package ai

import (
	"errors"
	"fmt"
	"math"

	"echotrace/audio"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyWaveform пустая волна или некорректная частота дискретизации
var ErrEmptyWaveform = errors.New("empty waveform")

// FeatureSet набор акустических признаков одной записи.
// Все числа конечные и неотрицательные.
type FeatureSet struct {
	DurationSeconds    float64          `json:"duration_seconds,omitempty"`
	PitchVariance      float64          `json:"pitch_variance"`
	RhythmVariance     float64          `json:"rhythm_variance"`
	PauseRatio         float64          `json:"pause_ratio"`
	SpectralSmoothness float64          `json:"spectral_smoothness"`
	PitchConsistency   PitchConsistency `json:"pitch_consistency,omitempty"`
	Language           Language         `json:"language,omitempty"`
}

// ExtractorConfig параметры извлечения признаков
type ExtractorConfig struct {
	FrameLength      int     `yaml:"frame_length"`
	HopLength        int     `yaml:"hop_length"`
	NMels            int     `yaml:"n_mels"`
	NMFCC            int     `yaml:"n_mfcc"`
	TopDB            float64 `yaml:"top_db"`
	SilenceThreshold float64 `yaml:"silence_threshold"`
	FMin             float64 `yaml:"fmin"`
	FMax             float64 `yaml:"fmax"`
	VoicingThreshold float64 `yaml:"voicing_threshold"`
	SilenceRMS       float64 `yaml:"silence_rms"`
}

// DefaultExtractorConfig значения по умолчанию (совпадают с librosa)
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		FrameLength:      2048,
		HopLength:        512,
		NMels:            128,
		NMFCC:            13,
		TopDB:            80,
		SilenceThreshold: 0.01,
		FMin:             DefaultFMin,
		FMax:             DefaultFMax,
		VoicingThreshold: 0.1,
		SilenceRMS:       1e-4,
	}
}

// PitchConfig конфигурация YIN для заданной частоты дискретизации
func (c ExtractorConfig) PitchConfig(sampleRate int) PitchConfig {
	return PitchConfig{
		SampleRate:  sampleRate,
		FrameLength: c.FrameLength,
		HopLength:   c.HopLength,
		FMin:        c.FMin,
		FMax:        c.FMax,
		Threshold:   c.VoicingThreshold,
		SilenceRMS:  c.SilenceRMS,
	}
}

// MelConfig конфигурация mel-спектрограммы для заданной частоты
func (c ExtractorConfig) MelConfig(sampleRate int) MelConfig {
	return MelConfig{
		SampleRate: sampleRate,
		NMels:      c.NMels,
		HopLength:  c.HopLength,
		WinLength:  c.FrameLength,
		NFFT:       c.FrameLength,
		Center:     true,
	}
}

// statistic один признак: вычисление и запись в FeatureSet.
// Каждый признак считается изолированно: ошибка или паника дают 0.
type statistic struct {
	name    string
	compute func(*analysis) (float64, error)
	assign  func(*FeatureSet, float64)
}

// Extractor вычисляет признаки из моно-волны
type Extractor struct {
	config ExtractorConfig
	stats  []statistic
	logger *zap.Logger
}

// NewExtractor создаёт экстрактор
func NewExtractor(config ExtractorConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		config: config,
		stats:  defaultStatistics(),
		logger: logger,
	}
}

func defaultStatistics() []statistic {
	return []statistic{
		{
			name:    "pitch_variance",
			compute: (*analysis).pitchVariance,
			assign:  func(fs *FeatureSet, v float64) { fs.PitchVariance = v },
		},
		{
			name:    "rhythm_variance",
			compute: (*analysis).rhythmVariance,
			assign:  func(fs *FeatureSet, v float64) { fs.RhythmVariance = v },
		},
		{
			name:    "pause_ratio",
			compute: (*analysis).pauseRatio,
			assign:  func(fs *FeatureSet, v float64) { fs.PauseRatio = v },
		},
		{
			name:    "spectral_smoothness",
			compute: (*analysis).spectralSmoothness,
			assign:  func(fs *FeatureSet, v float64) { fs.SpectralSmoothness = v },
		},
	}
}

// Extract возвращает ErrEmptyWaveform только для пустой волны.
// Сбой отдельного признака даёт для него 0 и запись в debug-лог.
func (e *Extractor) Extract(sample audio.Sample) (FeatureSet, error) {
	if !sample.Valid() {
		return FeatureSet{}, ErrEmptyWaveform
	}

	fs := FeatureSet{
		DurationSeconds: roundTo(sample.Duration(), 3),
	}

	a := &analysis{sample: sample, config: e.config}
	for _, st := range e.stats {
		v := e.isolate(st, a)
		st.assign(&fs, roundTo(sanitize(v), 6))
	}

	return fs, nil
}

// isolate выполняет вычисление признака с перехватом ошибок и паник
func (e *Extractor) isolate(st statistic, a *analysis) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("feature computation panicked",
				zap.String("feature", st.name),
				zap.Any("panic", r))
			v = 0
		}
	}()

	v, err := st.compute(a)
	if err != nil {
		e.logger.Debug("feature computation failed",
			zap.String("feature", st.name),
			zap.Error(err))
		return 0
	}
	return v
}

// analysis промежуточные данные одного вызова Extract.
// Mel-спектрограмма считается один раз для ритма и гладкости.
type analysis struct {
	sample audio.Sample
	config ExtractorConfig

	melDB  [][]float64
	melErr error
	melSet bool
}

func (a *analysis) mel() ([][]float64, error) {
	if a.melSet {
		return a.melDB, a.melErr
	}
	a.melSet = true

	proc, err := NewMelProcessor(a.config.MelConfig(a.sample.SampleRate))
	if err != nil {
		a.melErr = err
		return nil, err
	}
	a.melDB = proc.Decibels(a.sample.Samples, a.config.TopDB)
	return a.melDB, nil
}

func (a *analysis) pitchVariance() (float64, error) {
	tracker, err := NewPitchTracker(a.config.PitchConfig(a.sample.SampleRate))
	if err != nil {
		return 0, fmt.Errorf("pitch tracker: %w", err)
	}
	variance, _ := tracker.VoicedPitchVariance(a.sample.Samples)
	return variance, nil
}

func (a *analysis) rhythmVariance() (float64, error) {
	melDB, err := a.mel()
	if err != nil {
		return 0, fmt.Errorf("mel spectrogram: %w", err)
	}
	env := OnsetStrength(melDB)
	if len(env) == 0 {
		return 0, nil
	}
	return stat.PopVariance(env, nil), nil
}

func (a *analysis) pauseRatio() (float64, error) {
	rms := FrameRMS(a.sample.Samples, a.config.FrameLength, a.config.HopLength)
	return PauseRatio(rms, a.config.SilenceThreshold), nil
}

func (a *analysis) spectralSmoothness() (float64, error) {
	melDB, err := a.mel()
	if err != nil {
		return 0, fmt.Errorf("mel spectrogram: %w", err)
	}
	return SpectralSmoothness(MFCC(melDB, a.config.NMFCC)), nil
}

// roundTo округляет до places знаков после запятой
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// sanitize заменяет NaN, Inf и отрицательные значения нулём
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
