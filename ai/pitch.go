package ai

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Границы основного тона: C2..C7
const (
	DefaultFMin = 65.4
	DefaultFMax = 2093.0
)

// PitchConfig параметры YIN-трекера
type PitchConfig struct {
	SampleRate  int
	FrameLength int
	HopLength   int
	FMin        float64
	FMax        float64
	Threshold   float64 // порог CMNDF для вокализованного фрейма
	SilenceRMS  float64 // фреймы тише этого уровня считаются невокализованными
}

// PitchTracker оценивает F0 по фреймам алгоритмом YIN
type PitchTracker struct {
	config PitchConfig
	minTau int
	maxTau int
	window int // длина окна сравнения: FrameLength - maxTau
}

// NewPitchTracker проверяет конфигурацию и готовит диапазон лагов
func NewPitchTracker(config PitchConfig) (*PitchTracker, error) {
	if config.SampleRate <= 0 || config.FrameLength <= 0 || config.HopLength <= 0 {
		return nil, fmt.Errorf("invalid pitch config: rate=%d frame=%d hop=%d",
			config.SampleRate, config.FrameLength, config.HopLength)
	}
	if config.FMin <= 0 || config.FMax <= config.FMin {
		return nil, fmt.Errorf("invalid pitch range: %.1f..%.1f Hz", config.FMin, config.FMax)
	}

	sr := float64(config.SampleRate)
	minTau := int(math.Floor(sr / config.FMax))
	if minTau < 2 {
		minTau = 2
	}
	maxTau := int(math.Ceil(sr / config.FMin))
	if maxTau+2 >= config.FrameLength {
		return nil, fmt.Errorf("frame length %d too short for fmin %.1f Hz at %d Hz",
			config.FrameLength, config.FMin, config.SampleRate)
	}
	if minTau >= maxTau {
		return nil, fmt.Errorf("empty lag range for %d Hz", config.SampleRate)
	}

	return &PitchTracker{
		config: config,
		minTau: minTau,
		maxTau: maxTau,
		window: config.FrameLength - maxTau,
	}, nil
}

// Track возвращает F0 для каждого фрейма; NaN для невокализованных.
// Фреймы целиком лежат внутри сигнала, сигнал короче фрейма дополняется нулями.
func (p *PitchTracker) Track(samples []float32) []float64 {
	frameLen := p.config.FrameLength
	hop := p.config.HopLength

	if len(samples) == 0 {
		return nil
	}
	if len(samples) < frameLen {
		padded := make([]float32, frameLen)
		copy(padded, samples)
		samples = padded
	}

	numFrames := (len(samples)-frameLen)/hop + 1
	f0 := make([]float64, numFrames)

	diff := make([]float64, p.maxTau+2)
	cmndf := make([]float64, p.maxTau+2)

	for i := 0; i < numFrames; i++ {
		frame := samples[i*hop : i*hop+frameLen]
		f0[i] = p.estimate(frame, diff, cmndf)
	}
	return f0
}

// estimate YIN для одного фрейма
func (p *PitchTracker) estimate(frame []float32, diff, cmndf []float64) float64 {
	if frameRMS(frame) < p.config.SilenceRMS {
		return math.NaN()
	}

	limit := p.maxTau + 1
	w := p.window - 1

	// Разностная функция d(tau)
	diff[0] = 0
	for tau := 1; tau <= limit; tau++ {
		sum := 0.0
		for j := 0; j < w; j++ {
			d := float64(frame[j]) - float64(frame[j+tau])
			sum += d * d
		}
		diff[tau] = sum
	}

	// Кумулятивно нормированная разностная функция
	cmndf[0] = 1
	running := 0.0
	for tau := 1; tau <= limit; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / running
	}

	tau := -1
	for t := p.minTau; t <= p.maxTau; t++ {
		if cmndf[t] < p.config.Threshold {
			// спускаемся до локального минимума
			for t+1 <= p.maxTau && cmndf[t+1] < cmndf[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return math.NaN()
	}

	period := float64(tau)
	a, b, c := cmndf[tau-1], cmndf[tau], cmndf[tau+1]
	if denom := a - 2*b + c; denom != 0 {
		shift := (a - c) / (2 * denom)
		if math.Abs(shift) < 1 {
			period += shift
		}
	}

	freq := float64(p.config.SampleRate) / period
	if freq < p.config.FMin || freq > p.config.FMax {
		return math.NaN()
	}
	return freq
}

// VoicedPitchVariance дисперсия F0 по вокализованным фреймам и их количество
func (p *PitchTracker) VoicedPitchVariance(samples []float32) (float64, int) {
	var voiced []float64
	for _, f := range p.Track(samples) {
		if !math.IsNaN(f) {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return 0, 0
	}
	return stat.PopVariance(voiced, nil), len(voiced)
}
