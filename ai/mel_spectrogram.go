package ai

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// MelConfig конфигурация для вычисления Mel-спектрограммы
type MelConfig struct {
	SampleRate int
	NMels      int
	HopLength  int // шаг между фреймами
	WinLength  int // длина окна Ханна
	NFFT       int
	Center     bool // true = центрированные фреймы (как в librosa)
}

// DefaultMelConfig параметры librosa по умолчанию: n_fft=2048, hop=512, 128 mel
func DefaultMelConfig(sampleRate int) MelConfig {
	return MelConfig{
		SampleRate: sampleRate,
		NMels:      128,
		HopLength:  512,
		WinLength:  2048,
		NFFT:       2048,
		Center:     true,
	}
}

// MelProcessor обрабатывает аудио и вычисляет Mel-спектрограмму
type MelProcessor struct {
	config     MelConfig
	melFilters [][]float64
	window     []float64
	fft        *fourier.FFT
}

// NewMelProcessor создаёт новый процессор
func NewMelProcessor(config MelConfig) (*MelProcessor, error) {
	if config.SampleRate <= 0 || config.NMels <= 0 || config.HopLength <= 0 {
		return nil, fmt.Errorf("invalid mel config: rate=%d mels=%d hop=%d", config.SampleRate, config.NMels, config.HopLength)
	}
	if config.WinLength <= 1 || config.NFFT < config.WinLength {
		return nil, fmt.Errorf("invalid mel config: win=%d nfft=%d", config.WinLength, config.NFFT)
	}

	p := &MelProcessor{
		config: config,
	}

	p.melFilters = createMelFilterbank(config.NFFT, config.NMels, config.SampleRate)
	p.window = createHannWindow(config.WinLength)
	p.fft = fourier.NewFFT(config.NFFT)

	return p, nil
}

// numFrames количество фреймов для сигнала длины n
func (p *MelProcessor) numFrames(n int) int {
	if p.config.Center {
		return n/p.config.HopLength + 1
	}
	if n >= p.config.WinLength {
		return (n-p.config.WinLength)/p.config.HopLength + 1
	}
	return 1
}

// Power вычисляет mel-спектрограмму мощности: [numFrames][nMels]
func (p *MelProcessor) Power(samples []float32) [][]float64 {
	numFrames := p.numFrames(len(samples))
	melSpec := make([][]float64, numFrames)

	frameData := make([]float64, p.config.NFFT)
	coeffs := make([]complex128, p.config.NFFT/2+1)
	powerSpec := make([]float64, p.config.NFFT/2+1)

	for frame := 0; frame < numFrames; frame++ {
		frameStart := frame * p.config.HopLength
		if p.config.Center {
			// центр фрейма на позиции frame * hop_length
			frameStart -= p.config.WinLength / 2
		}

		// Извлекаем фрейм с паддингом нулями
		for i := range frameData {
			frameData[i] = 0
		}
		for i := 0; i < p.config.WinLength; i++ {
			sampleIdx := frameStart + i
			if sampleIdx >= 0 && sampleIdx < len(samples) {
				frameData[i] = float64(samples[sampleIdx]) * p.window[i]
			}
		}

		coeffs = p.fft.Coefficients(coeffs, frameData)

		// Power spectrum (только положительные частоты)
		for i := range powerSpec {
			re := real(coeffs[i])
			im := imag(coeffs[i])
			powerSpec[i] = re*re + im*im
		}

		melSpec[frame] = make([]float64, p.config.NMels)
		for m := 0; m < p.config.NMels; m++ {
			sum := 0.0
			for k, w := range p.melFilters[m] {
				if w != 0 {
					sum += powerSpec[k] * w
				}
			}
			melSpec[frame][m] = sum
		}
	}

	return melSpec
}

// Decibels вычисляет mel-спектрограмму в дБ с порогом topDB ниже максимума
func (p *MelProcessor) Decibels(samples []float32, topDB float64) [][]float64 {
	return PowerToDB(p.Power(samples), topDB)
}

// PowerToDB переводит мощность в дБ (ref=1, amin=1e-10), как librosa.power_to_db
func PowerToDB(power [][]float64, topDB float64) [][]float64 {
	const amin = 1e-10

	maxDB := math.Inf(-1)
	out := make([][]float64, len(power))
	for t, row := range power {
		out[t] = make([]float64, len(row))
		for m, v := range row {
			db := 10 * math.Log10(math.Max(amin, v))
			out[t][m] = db
			if db > maxDB {
				maxDB = db
			}
		}
	}

	if topDB > 0 {
		floor := maxDB - topDB
		for _, row := range out {
			for m, v := range row {
				if v < floor {
					row[m] = floor
				}
			}
		}
	}
	return out
}

// createMelFilterbank создаёт mel-фильтры
// Реализация совместима с torchaudio/librosa (работает в Hz, не bin indices)
func createMelFilterbank(nFFT, nMels, sampleRate int) [][]float64 {
	numBins := nFFT/2 + 1
	fMax := float64(sampleRate) / 2.0

	// Частоты для каждого FFT bin
	allFreqs := make([]float64, numBins)
	for i := 0; i < numBins; i++ {
		allFreqs[i] = float64(i) * fMax / float64(numBins-1)
	}

	// Mel points (nMels + 2 точек: left edge, centers, right edge)
	mMin := hzToMel(0)
	mMax := hzToMel(fMax)
	fPts := make([]float64, nMels+2)
	for i := 0; i < nMels+2; i++ {
		mel := mMin + float64(i)*(mMax-mMin)/float64(nMels+1)
		fPts[i] = melToHz(mel)
	}

	fDiff := make([]float64, nMels+1)
	for i := 0; i < nMels+1; i++ {
		fDiff[i] = fPts[i+1] - fPts[i]
	}

	filters := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		filters[m] = make([]float64, numBins)

		for k := 0; k < numBins; k++ {
			freq := allFreqs[k]

			lower := (freq - fPts[m]) / fDiff[m]
			upper := (fPts[m+2] - freq) / fDiff[m+1]

			// Берём минимум и ограничиваем [0, 1]
			val := math.Min(lower, upper)
			if val < 0 {
				val = 0
			}
			filters[m][k] = val
		}
	}

	return filters
}

// hzToMel преобразование Hz в mel (HTK formula)
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// melToHz преобразование mel в Hz
func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// createHannWindow создаёт окно Ханна
func createHannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := 0; i < size; i++ {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}
