package audio

import (
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample переводит моно-волну в dstRate. Основной путь использует
// полифазный ресемплер; если он недоступен или вернул заметно меньше
// данных, применяется линейная интерполяция.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(samples) == 0 {
		return samples
	}

	expected := int(float64(len(samples)) * float64(dstRate) / float64(srcRate))

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return resampleLinear(samples, srcRate, dstRate)
	}

	output, err := r.Process(Sample{Samples: samples}.Float64())
	// Фильтр задерживает часть сэмплов; короткие записи уходят в линейный путь
	if err != nil || len(output) < expected*9/10 {
		return resampleLinear(samples, srcRate, dstRate)
	}

	result := make([]float32, len(output))
	for i, v := range output {
		// полифазный фильтр может слегка выйти за [-1, 1]
		result[i] = clampSample(float32(v))
	}
	return result
}

// resampleLinear выполняет линейную интерполяцию для ресемплинга
func resampleLinear(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	newLen := int(float64(len(samples)) / ratio)
	resampled := make([]float32, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		if srcIdx+1 < len(samples) {
			resampled[i] = samples[srcIdx]*(1-frac) + samples[srcIdx+1]*frac
		} else if srcIdx < len(samples) {
			resampled[i] = samples[srcIdx]
		}
	}

	return resampled
}
