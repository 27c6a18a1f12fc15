package ai

import (
	"fmt"
	"math"
	"strings"
)

// Classification итоговый вердикт
type Classification string

const (
	ClassificationAI    Classification = "AI_GENERATED"
	ClassificationHuman Classification = "HUMAN"
)

// Тексты объяснений
const (
	ExplanationNormal      = "Normal voice characteristics detected"
	ExplanationSafeDefault = "Mixed acoustic indicators detected with moderate confidence"
)

// SafeDefaultConfidence уверенность безопасного ответа
const SafeDefaultConfidence = 0.55

// Result результат классификации
type Result struct {
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidenceScore"`
	Explanation    string         `json:"explanation"`
	Language       Language       `json:"language"`
}

// TiePolicy вердикт при score == 2 (ровно половина индикаторов)
type TiePolicy struct {
	Classification Classification `yaml:"classification"`
	Confidence     float64        `yaml:"confidence"`
}

// DefaultTiePolicy при ничьей склоняемся к AI с низкой уверенностью
var DefaultTiePolicy = TiePolicy{
	Classification: ClassificationAI,
	Confidence:     SafeDefaultConfidence,
}

// Thresholds пороги индикаторов
type Thresholds struct {
	Pitch      float64   `yaml:"pitch"`       // pitch_variance ниже порога
	TonalPitch float64   `yaml:"tonal_pitch"` // то же для Tamil, Telugu, Malayalam
	Rhythm     float64   `yaml:"rhythm"`      // rhythm_variance ниже порога
	Pause      float64   `yaml:"pause"`       // pause_ratio ниже порога
	Smoothness float64   `yaml:"smoothness"`  // spectral_smoothness выше порога
	Tie        TiePolicy `yaml:"tie"`
}

// DefaultThresholds эмпирические пороги
func DefaultThresholds() Thresholds {
	return Thresholds{
		Pitch:      0.14,
		TonalPitch: 0.16,
		Rhythm:     0.10,
		Pause:      0.03,
		Smoothness: 0.85,
		Tie:        DefaultTiePolicy,
	}
}

// PitchThreshold порог дисперсии тона для языка
func (t Thresholds) PitchThreshold(lang Language) float64 {
	if lang.Tonal() {
		return t.TonalPitch
	}
	return t.Pitch
}

// Validate проверяет пороги и политику ничьей
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"pitch":       t.Pitch,
		"tonal_pitch": t.TonalPitch,
		"rhythm":      t.Rhythm,
		"pause":       t.Pause,
		"smoothness":  t.Smoothness,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("threshold %s must be non-negative, got %v", name, v)
		}
	}
	if t.Tie.Classification != ClassificationAI && t.Tie.Classification != ClassificationHuman {
		return fmt.Errorf("tie classification must be %s or %s, got %q",
			ClassificationAI, ClassificationHuman, t.Tie.Classification)
	}
	if t.Tie.Confidence < 0 || t.Tie.Confidence > 1 {
		return fmt.Errorf("tie confidence must be in [0, 1], got %v", t.Tie.Confidence)
	}
	return nil
}

// Indicator один признак «синтетического» голоса
type Indicator struct {
	Name      string
	Reason    string
	Triggered func(fs FeatureSet, t Thresholds) bool
}

// Indicators проверяются по порядку; порядок задаёт порядок причин в объяснении
var Indicators = []Indicator{
	{
		Name:   "pitch",
		Reason: "unnaturally stable pitch",
		Triggered: func(fs FeatureSet, t Thresholds) bool {
			return fs.PitchVariance < t.PitchThreshold(fs.Language)
		},
	},
	{
		Name:   "rhythm",
		Reason: "uniform speech rhythm",
		Triggered: func(fs FeatureSet, t Thresholds) bool {
			return fs.RhythmVariance < t.Rhythm
		},
	},
	{
		Name:   "pause",
		Reason: "lack of natural pauses",
		Triggered: func(fs FeatureSet, t Thresholds) bool {
			return fs.PauseRatio < t.Pause
		},
	},
	{
		Name:   "smoothness",
		Reason: "over-smooth speech texture",
		Triggered: func(fs FeatureSet, t Thresholds) bool {
			return fs.SpectralSmoothness > t.Smoothness
		},
	},
}

// Score число сработавших индикаторов и их причины
func Score(fs FeatureSet, t Thresholds) (int, []string) {
	var reasons []string
	for _, ind := range Indicators {
		if ind.Triggered(fs, t) {
			reasons = append(reasons, ind.Reason)
		}
	}
	return len(reasons), reasons
}

// Classify сводит индикаторы в вердикт. Язык берётся из fs.Language.
func Classify(fs FeatureSet, t Thresholds) Result {
	score, reasons := Score(fs, t)

	var (
		class      Classification
		confidence float64
	)
	switch {
	case score >= 3:
		class = ClassificationAI
		confidence = math.Min(0.9, 0.6+0.1*float64(score))
	case score <= 1:
		class = ClassificationHuman
		confidence = math.Max(0.6, 1-0.2*float64(score))
	default:
		class = t.Tie.Classification
		confidence = t.Tie.Confidence
	}

	explanation := ExplanationNormal
	if len(reasons) > 0 {
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
		explanation = strings.Join(reasons, ", ")
	}

	return Result{
		Classification: class,
		Confidence:     clamp01(roundTo(confidence, 2)),
		Explanation:    explanation,
		Language:       fs.Language,
	}
}

// SafeDefault ответ, когда анализ не удался. Неизвестный язык заменяется на English.
func SafeDefault(lang Language) Result {
	if _, err := ParseLanguage(string(lang)); err != nil {
		lang = LanguageEnglish
	}
	return Result{
		Classification: ClassificationAI,
		Confidence:     SafeDefaultConfidence,
		Explanation:    ExplanationSafeDefault,
		Language:       lang,
	}
}
