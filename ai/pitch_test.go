package ai

import (
	"fmt"
	"math"
	"testing"

	"echotrace/audio"
)

const testRate = 16000

// tone ровная синусоида
func tone(freq, seconds float64) audio.Sample {
	return audio.GenerateTone(audio.ToneConfig{
		SampleRate: testRate,
		Seconds:    seconds,
		Frequency:  freq,
		Amplitude:  0.5,
	})
}

// steppedTone чередует частоты каждые segSeconds, «живая» интонация
func steppedTone(freqs []float64, segSeconds, seconds float64) audio.Sample {
	var samples []float32
	for i := 0; float64(len(samples)) < seconds*testRate; i++ {
		seg := tone(freqs[i%len(freqs)], segSeconds)
		samples = append(samples, seg.Samples...)
	}
	return audio.Sample{Samples: samples[:int(seconds*testRate)], SampleRate: testRate}
}

func silence(seconds float64) audio.Sample {
	return audio.Sample{Samples: make([]float32, int(seconds*testRate)), SampleRate: testRate}
}

func concat(parts ...audio.Sample) audio.Sample {
	var samples []float32
	for _, p := range parts {
		samples = append(samples, p.Samples...)
	}
	return audio.Sample{Samples: samples, SampleRate: testRate}
}

func newTestTracker(t *testing.T) *PitchTracker {
	t.Helper()
	tracker, err := NewPitchTracker(DefaultExtractorConfig().PitchConfig(testRate))
	if err != nil {
		t.Fatalf("NewPitchTracker failed: %v", err)
	}
	return tracker
}

func TestPitchTrackerPureTone(t *testing.T) {
	tracker := newTestTracker(t)

	for _, freq := range []float64{100, 200, 440} {
		t.Run(fmt.Sprintf("%.0fHz", freq), func(t *testing.T) {
			f0 := tracker.Track(tone(freq, 1).Samples)
			if len(f0) == 0 {
				t.Fatal("no frames")
			}

			voiced := 0
			for i, f := range f0 {
				if math.IsNaN(f) {
					continue
				}
				voiced++
				if math.Abs(f-freq)/freq > 0.01 {
					t.Errorf("frame %d: expected ~%.0f Hz, got %.2f Hz", i, freq, f)
				}
			}
			if voiced < len(f0)*9/10 {
				t.Errorf("%.0f Hz: only %d of %d frames voiced", freq, voiced, len(f0))
			}
		})
	}
}

func TestPitchTrackerFrames(t *testing.T) {
	tracker := newTestTracker(t)

	tests := []struct {
		name    string
		samples int
		frames  int
	}{
		{"empty", 0, 0},
		{"shorter than frame is padded", 1000, 1},
		{"exactly one frame", 2048, 1},
		{"one second", 16000, (16000-2048)/512 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tracker.Track(make([]float32, tt.samples))); got != tt.frames {
				t.Errorf("expected %d frames, got %d", tt.frames, got)
			}
		})
	}
}

func TestPitchTrackerSilence(t *testing.T) {
	tracker := newTestTracker(t)

	for i, f := range tracker.Track(silence(1).Samples) {
		if !math.IsNaN(f) {
			t.Fatalf("frame %d: silence must be unvoiced, got %.2f Hz", i, f)
		}
	}
	variance, voiced := tracker.VoicedPitchVariance(silence(1).Samples)
	if variance != 0 || voiced != 0 {
		t.Errorf("expected (0, 0), got (%v, %d)", variance, voiced)
	}
}

func TestVoicedPitchVariance(t *testing.T) {
	tracker := newTestTracker(t)

	steady, voiced := tracker.VoicedPitchVariance(tone(200, 2).Samples)
	if voiced == 0 {
		t.Fatal("steady tone has no voiced frames")
	}
	if steady > 0.01 {
		t.Errorf("steady tone variance too high: %v", steady)
	}

	stepped, voiced := tracker.VoicedPitchVariance(steppedTone([]float64{150, 250}, 0.25, 2).Samples)
	if voiced == 0 {
		t.Fatal("stepped tone has no voiced frames")
	}
	if stepped < 100 {
		t.Errorf("stepped tone variance too low: %v", stepped)
	}
}

func TestNewPitchTrackerInvalid(t *testing.T) {
	base := DefaultExtractorConfig().PitchConfig(testRate)

	tests := []struct {
		name   string
		modify func(c *PitchConfig)
	}{
		{"zero rate", func(c *PitchConfig) { c.SampleRate = 0 }},
		{"zero hop", func(c *PitchConfig) { c.HopLength = 0 }},
		{"inverted range", func(c *PitchConfig) { c.FMin, c.FMax = 500, 100 }},
		{"frame too short for fmin", func(c *PitchConfig) { c.FrameLength = 128 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)
			if _, err := NewPitchTracker(cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
