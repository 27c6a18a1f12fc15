package ai

import (
	"math"
	"testing"
)

func TestNewMelProcessorInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config MelConfig
	}{
		{"zero rate", MelConfig{SampleRate: 0, NMels: 128, HopLength: 512, WinLength: 2048, NFFT: 2048}},
		{"zero mels", MelConfig{SampleRate: 16000, NMels: 0, HopLength: 512, WinLength: 2048, NFFT: 2048}},
		{"nfft shorter than window", MelConfig{SampleRate: 16000, NMels: 128, HopLength: 512, WinLength: 2048, NFFT: 1024}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMelProcessor(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMelPowerShape(t *testing.T) {
	p, err := NewMelProcessor(DefaultMelConfig(testRate))
	if err != nil {
		t.Fatalf("NewMelProcessor failed: %v", err)
	}

	mel := p.Power(tone(440, 1).Samples)
	if want := testRate/512 + 1; len(mel) != want {
		t.Fatalf("expected %d frames, got %d", want, len(mel))
	}
	for i, row := range mel {
		if len(row) != 128 {
			t.Fatalf("frame %d: expected 128 bands, got %d", i, len(row))
		}
	}
}

func TestMelPowerPeakBand(t *testing.T) {
	p, err := NewMelProcessor(DefaultMelConfig(testRate))
	if err != nil {
		t.Fatalf("NewMelProcessor failed: %v", err)
	}

	low := p.Power(tone(300, 1).Samples)
	high := p.Power(tone(3000, 1).Samples)

	argmax := func(row []float64) int {
		best := 0
		for i, v := range row {
			if v > row[best] {
				best = i
			}
		}
		return best
	}

	mid := len(low) / 2
	if argmax(low[mid]) >= argmax(high[mid]) {
		t.Errorf("300 Hz peak band %d must be below 3000 Hz peak band %d", argmax(low[mid]), argmax(high[mid]))
	}
}

func TestPowerToDB(t *testing.T) {
	db := PowerToDB([][]float64{{1, 0.1}, {0, 1e-12}}, 80)

	want := [][]float64{{0, -10}, {-80, -80}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(db[i][j]-want[i][j]) > 1e-9 {
				t.Errorf("db[%d][%d] = %v, want %v", i, j, db[i][j], want[i][j])
			}
		}
	}

	// Без topDB ноль упирается в amin = 1e-10
	raw := PowerToDB([][]float64{{0}}, 0)
	if math.Abs(raw[0][0]+100) > 1e-9 {
		t.Errorf("expected -100 dB floor, got %v", raw[0][0])
	}
}

func TestMelFilterbank(t *testing.T) {
	filters := createMelFilterbank(2048, 128, testRate)
	if len(filters) != 128 {
		t.Fatalf("expected 128 filters, got %d", len(filters))
	}
	for m, f := range filters {
		if len(f) != 1025 {
			t.Fatalf("filter %d: expected 1025 bins, got %d", m, len(f))
		}
		peak := 0.0
		for _, w := range f {
			if w < 0 {
				t.Fatalf("filter %d has negative weight", m)
			}
			peak = math.Max(peak, w)
		}
		if peak > 1+1e-9 {
			t.Errorf("filter %d peak %v exceeds 1", m, peak)
		}
	}
}

func TestHzMelRoundTrip(t *testing.T) {
	for _, hz := range []float64{0, 65.4, 440, 1000, 8000} {
		if got := melToHz(hzToMel(hz)); math.Abs(got-hz) > 1e-6 {
			t.Errorf("round trip %v Hz -> %v Hz", hz, got)
		}
	}
}
