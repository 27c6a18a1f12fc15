// Package ai извлекает акустические признаки голоса и принимает решение HUMAN / AI_GENERATED
package ai

// Classifier интерфейс движка классификации.
// Позволяет подключать другие бэкенды без изменения сервиса.
type Classifier interface {
	// Classify выносит вердикт по набору признаков.
	// Язык передаётся в fs.Language
	Classify(fs FeatureSet) Result

	// Name возвращает имя движка (для логирования)
	Name() string
}

// EngineType тип движка классификации
type EngineType string

const (
	// EngineTypeHeuristic - табличные пороги по четырём индикаторам
	EngineTypeHeuristic EngineType = "heuristic"
)

// HeuristicClassifier движок на порогах Thresholds
type HeuristicClassifier struct {
	thresholds Thresholds
}

// NewHeuristicClassifier создаёт движок с заданными порогами
func NewHeuristicClassifier(thresholds Thresholds) *HeuristicClassifier {
	return &HeuristicClassifier{thresholds: thresholds}
}

// Classify реализует Classifier
func (c *HeuristicClassifier) Classify(fs FeatureSet) Result {
	return Classify(fs, c.thresholds)
}

// Name реализует Classifier
func (c *HeuristicClassifier) Name() string {
	return string(EngineTypeHeuristic)
}

// Thresholds текущие пороги
func (c *HeuristicClassifier) Thresholds() Thresholds {
	return c.thresholds
}
