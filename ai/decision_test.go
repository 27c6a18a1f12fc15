package ai

import (
	"math"
	"testing"
)

// features собирает FeatureSet с заданным числом сработавших индикаторов
func features(pitch, rhythm, pause, smooth float64, lang Language) FeatureSet {
	return FeatureSet{
		PitchVariance:      pitch,
		RhythmVariance:     rhythm,
		PauseRatio:         pause,
		SpectralSmoothness: smooth,
		Language:           lang,
	}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name        string
		fs          FeatureSet
		class       Classification
		confidence  float64
		explanation string
	}{
		{
			name:        "no indicators",
			fs:          features(5, 1, 0.3, 0.5, LanguageEnglish),
			class:       ClassificationHuman,
			confidence:  1.0,
			explanation: "Normal voice characteristics detected",
		},
		{
			name:        "one indicator",
			fs:          features(0.1, 1, 0.3, 0.5, LanguageEnglish),
			class:       ClassificationHuman,
			confidence:  0.8,
			explanation: "unnaturally stable pitch",
		},
		{
			name:        "two indicators use tie policy",
			fs:          features(0.1, 0.05, 0.3, 0.5, LanguageHindi),
			class:       ClassificationAI,
			confidence:  0.55,
			explanation: "unnaturally stable pitch, uniform speech rhythm",
		},
		{
			name:        "three indicators",
			fs:          features(5, 0.05, 0.01, 0.9, LanguageEnglish),
			class:       ClassificationAI,
			confidence:  0.9,
			explanation: "uniform speech rhythm, lack of natural pauses",
		},
		{
			name:        "all indicators",
			fs:          features(0, 0, 0, 1, LanguageTelugu),
			class:       ClassificationAI,
			confidence:  0.9,
			explanation: "unnaturally stable pitch, uniform speech rhythm",
		},
		{
			name:        "thresholds are strict",
			fs:          features(0.14, 0.10, 0.03, 0.85, LanguageEnglish),
			class:       ClassificationHuman,
			confidence:  1.0,
			explanation: "Normal voice characteristics detected",
		},
		{
			name:        "smoothness and pause only",
			fs:          features(5, 1, 0.01, 0.95, LanguageEnglish),
			class:       ClassificationAI,
			confidence:  0.55,
			explanation: "lack of natural pauses, over-smooth speech texture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.fs, th)
			if r.Classification != tt.class {
				t.Errorf("expected %s, got %s", tt.class, r.Classification)
			}
			if r.Confidence != tt.confidence {
				t.Errorf("expected confidence %v, got %v", tt.confidence, r.Confidence)
			}
			if r.Explanation != tt.explanation {
				t.Errorf("expected explanation %q, got %q", tt.explanation, r.Explanation)
			}
			if r.Language != tt.fs.Language {
				t.Errorf("expected language %s, got %s", tt.fs.Language, r.Language)
			}
		})
	}
}

func TestClassifyTonalPitchThreshold(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		lang      Language
		triggered bool
	}{
		{LanguageTamil, true},
		{LanguageTelugu, true},
		{LanguageMalayalam, true},
		{LanguageEnglish, false},
		{LanguageHindi, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			score, reasons := Score(features(0.15, 1, 0.3, 0.5, tt.lang), th)
			if (score == 1) != tt.triggered {
				t.Errorf("pitch 0.15 for %s: triggered=%v, reasons=%v", tt.lang, score == 1, reasons)
			}
		})
	}
}

func TestClassifyTiePolicyOverride(t *testing.T) {
	th := DefaultThresholds()
	th.Tie = TiePolicy{Classification: ClassificationHuman, Confidence: 0.6}

	r := Classify(features(0.1, 0.05, 0.3, 0.5, LanguageEnglish), th)
	if r.Classification != ClassificationHuman || r.Confidence != 0.6 {
		t.Errorf("tie override ignored: %+v", r)
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	th := DefaultThresholds()
	values := []float64{0, 0.01, 0.05, 0.12, 0.5, 0.9, 1, 100}

	for _, p := range values {
		for _, r := range values {
			for _, pa := range values {
				for _, s := range values {
					res := Classify(features(p, r, pa, s, LanguageTamil), th)
					if res.Classification != ClassificationAI && res.Classification != ClassificationHuman {
						t.Fatalf("unexpected classification %q", res.Classification)
					}
					if res.Confidence < 0 || res.Confidence > 1 {
						t.Fatalf("confidence out of range: %v", res.Confidence)
					}
					if res.Confidence != math.Round(res.Confidence*100)/100 {
						t.Fatalf("confidence not rounded to 2 places: %v", res.Confidence)
					}
					if res.Explanation == "" {
						t.Fatal("empty explanation")
					}
				}
			}
		}
	}
}

func TestSafeDefault(t *testing.T) {
	r := SafeDefault(LanguageMalayalam)
	want := Result{
		Classification: ClassificationAI,
		Confidence:     0.55,
		Explanation:    "Mixed acoustic indicators detected with moderate confidence",
		Language:       LanguageMalayalam,
	}
	if r != want {
		t.Errorf("expected %+v, got %+v", want, r)
	}

	if got := SafeDefault("Klingon").Language; got != LanguageEnglish {
		t.Errorf("unknown language must fall back to English, got %s", got)
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("default thresholds invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(th *Thresholds)
	}{
		{"negative pitch", func(th *Thresholds) { th.Pitch = -1 }},
		{"nan smoothness", func(th *Thresholds) { th.Smoothness = math.NaN() }},
		{"unknown tie class", func(th *Thresholds) { th.Tie.Classification = "MAYBE" }},
		{"tie confidence above 1", func(th *Thresholds) { th.Tie.Confidence = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.modify(&th)
			if err := th.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHeuristicClassifier(t *testing.T) {
	c := NewHeuristicClassifier(DefaultThresholds())
	if c.Name() != "heuristic" {
		t.Errorf("unexpected name %q", c.Name())
	}

	var _ Classifier = c
	if c.Thresholds() != DefaultThresholds() {
		t.Errorf("unexpected thresholds %+v", c.Thresholds())
	}
	fs := features(0, 0, 0, 1, LanguageEnglish)
	if got, want := c.Classify(fs), Classify(fs, DefaultThresholds()); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestIndicatorsOrder(t *testing.T) {
	want := []string{
		"unnaturally stable pitch",
		"uniform speech rhythm",
		"lack of natural pauses",
		"over-smooth speech texture",
	}
	if len(Indicators) != len(want) {
		t.Fatalf("expected %d indicators, got %d", len(want), len(Indicators))
	}
	for i, ind := range Indicators {
		if ind.Reason != want[i] {
			t.Errorf("indicator %d: expected %q, got %q", i, want[i], ind.Reason)
		}
	}
}
