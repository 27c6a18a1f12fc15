package ai

import (
	"math"
	"testing"
)

func TestDCTBasisOrthonormal(t *testing.T) {
	const n = 16
	basis := dctBasis(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dot := 0.0
			for k := 0; k < n; k++ {
				dot += basis[i][k] * basis[j][k]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Fatalf("<b%d, b%d> = %v, want %v", i, j, dot, want)
			}
		}
	}
}

func TestMFCC(t *testing.T) {
	melDB := [][]float64{
		{-20, -20, -20, -20},
		{-40, -10, -30, -20},
	}

	mfcc := MFCC(melDB, 3)
	if len(mfcc) != 2 || len(mfcc[0]) != 3 {
		t.Fatalf("unexpected shape %dx%d", len(mfcc), len(mfcc[0]))
	}
	// Постоянный спектр: только нулевой коэффициент, равный -20*sqrt(4)
	if math.Abs(mfcc[0][0]+40) > 1e-9 {
		t.Errorf("c0 = %v, want -40", mfcc[0][0])
	}
	for k := 1; k < 3; k++ {
		if math.Abs(mfcc[0][k]) > 1e-9 {
			t.Errorf("c%d = %v, want 0", k, mfcc[0][k])
		}
	}

	if MFCC(nil, 13) != nil {
		t.Error("expected nil for empty input")
	}
	if got := MFCC(melDB, 10); len(got[0]) != 4 {
		t.Errorf("n_mfcc must be capped by n_mels, got %d", len(got[0]))
	}
}

func TestSpectralSmoothness(t *testing.T) {
	tests := []struct {
		name string
		mfcc [][]float64
		want float64
	}{
		{"empty", nil, 0},
		{"single frame", [][]float64{{1, 2}}, 1},
		{"constant", [][]float64{{1, -2}, {1, -2}, {1, -2}}, 1},
		// mean|mfcc| = 1, mean|delta| = 2 -> clamp(1-2) = 0
		{"alternating sign", [][]float64{{1}, {-1}, {1}}, 0},
		// mean|mfcc| = 2, mean|delta| = 1 -> 0.5
		{"half", [][]float64{{1.5}, {2.5}}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpectralSmoothness(tt.mfcc); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOnsetStrength(t *testing.T) {
	env := OnsetStrength([][]float64{
		{0, 0},
		{1, 3},
		{0, 5},
	})
	want := []float64{0, 2, 1}
	if len(env) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(env))
	}
	for i := range want {
		if math.Abs(env[i]-want[i]) > 1e-12 {
			t.Errorf("env[%d] = %v, want %v", i, env[i], want[i])
		}
	}

	if OnsetStrength(nil) != nil {
		t.Error("expected nil for empty spectrogram")
	}
}

func TestFrameRMS(t *testing.T) {
	samples := make([]float32, 4096)
	for i := range samples {
		samples[i] = 0.5
	}

	rms := FrameRMS(samples, 2048, 512)
	if want := 4096/512 + 1; len(rms) != want {
		t.Fatalf("expected %d frames, got %d", want, len(rms))
	}
	// Первый фрейм центрирован на нуле: половина окна - паддинг
	if math.Abs(rms[0]-0.5*math.Sqrt(0.5)) > 1e-9 {
		t.Errorf("first frame rms = %v", rms[0])
	}
	if math.Abs(rms[4]-0.5) > 1e-9 {
		t.Errorf("middle frame rms = %v, want 0.5", rms[4])
	}

	if FrameRMS(nil, 2048, 512) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestPauseRatio(t *testing.T) {
	tests := []struct {
		name string
		rms  []float64
		want float64
	}{
		{"empty", nil, 0},
		{"all quiet", []float64{0, 0.001, 0.009}, 1},
		{"none quiet", []float64{0.01, 0.5}, 0},
		{"half", []float64{0.005, 0.2, 0, 0.3}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PauseRatio(tt.rms, 0.01); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
