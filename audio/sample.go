// Package audio декодирует входящие записи в моно-волну и пишет тестовые сигналы
package audio

// Sample моно-волна с нормализованными амплитудами [-1.0, 1.0]
type Sample struct {
	Samples    []float32
	SampleRate int // Гц
}

// Valid сообщает, пригоден ли сэмпл для анализа
func (s Sample) Valid() bool {
	return len(s.Samples) > 0 && s.SampleRate > 0
}

// Duration возвращает длительность в секундах
func (s Sample) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Chunks режет волну на неперекрывающиеся куски по chunkSize сэмплов.
// Хвост сохраняется только если он длиннее половины chunkSize.
func (s Sample) Chunks(chunkSize int) []Sample {
	if chunkSize <= 0 || len(s.Samples) == 0 {
		return nil
	}

	var chunks []Sample
	for start := 0; start < len(s.Samples); start += chunkSize {
		end := start + chunkSize
		if end > len(s.Samples) {
			end = len(s.Samples)
		}
		if end-start <= chunkSize/2 {
			continue
		}
		chunks = append(chunks, Sample{
			Samples:    s.Samples[start:end],
			SampleRate: s.SampleRate,
		})
	}
	return chunks
}

// Float64 возвращает копию волны в float64 (для DSP)
func (s Sample) Float64() []float64 {
	out := make([]float64, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = float64(v)
	}
	return out
}

// mixToMono усредняет каналы interleaved-буфера
func mixToMono(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
