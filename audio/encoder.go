package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/braheezy/shine-mp3/pkg/mp3"
)

// shineBlock количество сэмплов на канал в одном кадре MPEG Layer III
const shineBlock = 1152

// EncodeMP3 кодирует моно Sample в MP3 через shine-mp3 (чистый Go, без FFmpeg)
func EncodeMP3(w io.Writer, s Sample) error {
	if !s.Valid() {
		return fmt.Errorf("cannot encode empty sample")
	}

	encoder := mp3.NewEncoder(s.SampleRate, 1)

	// Shine кодирует блоками по 1152 сэмпла, дополняем хвост нулями
	padded := len(s.Samples)
	if rem := padded % shineBlock; rem != 0 {
		padded += shineBlock - rem
	}
	pcm := make([]int16, padded)
	for i, v := range s.Samples {
		pcm[i] = floatToPCM16(v)
	}

	if err := encoder.Write(w, pcm); err != nil {
		return fmt.Errorf("failed to encode MP3: %w", err)
	}
	return nil
}

// ToneConfig параметры синтетического тона
type ToneConfig struct {
	SampleRate   int
	Seconds      float64
	Frequency    float64 // базовая частота, Гц
	Amplitude    float64 // 0..1
	VibratoDepth float64 // девиация частоты, Гц (0 = ровный тон)
	VibratoRate  float64 // частота модуляции, Гц
}

// GenerateTone синтезирует синусоиду с опциональным вибрато.
// Ровный тон имитирует «неестественно стабильный» голос, вибрато - живой.
func GenerateTone(cfg ToneConfig) Sample {
	n := int(cfg.Seconds * float64(cfg.SampleRate))
	if n <= 0 || cfg.SampleRate <= 0 {
		return Sample{SampleRate: cfg.SampleRate}
	}

	samples := make([]float32, n)
	phase := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(cfg.SampleRate)
		freq := cfg.Frequency
		if cfg.VibratoDepth > 0 && cfg.VibratoRate > 0 {
			freq += cfg.VibratoDepth * math.Sin(2*math.Pi*cfg.VibratoRate*t)
		}
		samples[i] = float32(cfg.Amplitude * math.Sin(phase))
		phase += 2 * math.Pi * freq / float64(cfg.SampleRate)
	}

	return Sample{Samples: samples, SampleRate: cfg.SampleRate}
}
