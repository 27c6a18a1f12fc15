package audio

import (
	"math"
	"testing"
)

func TestResample(t *testing.T) {
	tests := []struct {
		name    string
		srcRate int
		dstRate int
		seconds float64
	}{
		{"upsample 8k to 16k", 8000, 16000, 1},
		{"downsample 44.1k to 16k", 44100, 16000, 1},
		{"downsample 48k to 16k", 48000, 16000, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := GenerateTone(ToneConfig{SampleRate: tt.srcRate, Seconds: tt.seconds, Frequency: 300, Amplitude: 0.9})
			out := Resample(in.Samples, tt.srcRate, tt.dstRate)

			expected := float64(len(in.Samples)) * float64(tt.dstRate) / float64(tt.srcRate)
			if math.Abs(float64(len(out))-expected) > expected*0.1 {
				t.Errorf("expected ~%.0f samples, got %d", expected, len(out))
			}
			for i, v := range out {
				if v > 1 || v < -1 {
					t.Fatalf("sample %d out of range: %v", i, v)
				}
			}
		})
	}
}

func TestResampleNoop(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := Resample(in, 16000, 16000)
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Error("same rate must return the input unchanged")
	}
	if out := Resample(nil, 8000, 16000); len(out) != 0 {
		t.Errorf("expected empty output, got %d samples", len(out))
	}
}

func TestResampleLinear(t *testing.T) {
	out := resampleLinear([]float32{0, 1, 0, -1}, 1, 2)
	want := []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -1}
	if len(out) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(out))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}
