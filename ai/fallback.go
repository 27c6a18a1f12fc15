package ai

import (
	"errors"
	"math"

	"echotrace/audio"
)

// ErrEmptyPayload синтезатору передали пустой набор байт
var ErrEmptyPayload = errors.New("empty payload")

// SynthesizeFeatures строит псевдо-признаки по энтропии байт, когда волну
// получить не удалось. Длительность и устойчивость тона не заполняются.
func SynthesizeFeatures(payload []byte) (FeatureSet, error) {
	if len(payload) == 0 {
		return FeatureSet{}, ErrEmptyPayload
	}

	h := ByteEntropy(payload)
	size := float64(len(payload))

	return FeatureSet{
		PitchVariance:      roundTo(math.Min(0.3, h/10), 6),
		RhythmVariance:     roundTo(math.Min(0.3, size/1e6), 6),
		PauseRatio:         roundTo(math.Max(0.02, h/12), 6),
		SpectralSmoothness: roundTo(math.Max(0, math.Min(0.95, 1-h/15)), 6),
	}, nil
}

// SynthesizeFeaturesBase64 то же для строки base64
func SynthesizeFeaturesBase64(audioBase64 string) (FeatureSet, error) {
	payload, err := audio.DecodeBase64(audioBase64)
	if err != nil {
		if errors.Is(err, audio.ErrEmptyAudio) {
			return FeatureSet{}, ErrEmptyPayload
		}
		return FeatureSet{}, err
	}
	return SynthesizeFeatures(payload)
}

// ByteEntropy энтропия Шеннона распределения байт, в битах (0..8)
func ByteEntropy(payload []byte) float64 {
	if len(payload) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range payload {
		counts[b]++
	}

	size := float64(len(payload))
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / size
		h -= p * math.Log2(p)
	}
	return h
}
