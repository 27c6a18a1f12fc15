package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"echotrace/ai"
	"echotrace/audio"
	"echotrace/internal/api"
	"echotrace/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AudioDecoder превращает base64 в волну или пометку «недоступно»
type AudioDecoder interface {
	Decode(ctx context.Context, audioBase64, format string) (audio.DecodeResult, error)
}

// FeatureExtractor вычисляет признаки из волны
type FeatureExtractor interface {
	Extract(sample audio.Sample) (ai.FeatureSet, error)
}

// ConsistencyAnalyzer оценивает устойчивость тона по кускам
type ConsistencyAnalyzer interface {
	Analyze(ctx context.Context, sample audio.Sample) ai.PitchConsistency
}

// Source откуда взяты признаки
type Source string

const (
	SourceDecoded     Source = "decoded"      // извлечены из волны
	SourceFallback    Source = "fallback"     // синтезированы по байтам
	SourceSafeDefault Source = "safe_default" // анализ не удался
)

// ValidationError ошибка входных данных (язык, пустой или битый base64)
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Analysis результат обработки одного запроса
type Analysis struct {
	ID         uuid.UUID        `json:"id"`
	Source     Source           `json:"source"`
	DecodePath audio.DecodePath `json:"decodePath,omitempty"`
	Features   *ai.FeatureSet   `json:"features,omitempty"`
	Result     ai.Result        `json:"result"`
	Elapsed    time.Duration    `json:"elapsed"`
}

// Response ответ в формате API
func (a *Analysis) Response() api.AnalyzeResponse {
	return api.AnalyzeResponse{
		Classification:  string(a.Result.Classification),
		ConfidenceScore: a.Result.Confidence,
		Language:        string(a.Result.Language),
		Explanation:     a.Result.Explanation,
	}
}

// DetectionService связывает декодер, экстрактор, анализатор и классификатор.
// Не хранит состояния между запросами и безопасен для конкурентного использования.
type DetectionService struct {
	decoder    AudioDecoder
	extractor  FeatureExtractor
	temporal   ConsistencyAnalyzer
	classifier ai.Classifier
	logger     *zap.Logger
}

// NewDetectionService создаёт сервис из готовых компонентов
func NewDetectionService(
	decoder AudioDecoder,
	extractor FeatureExtractor,
	temporal ConsistencyAnalyzer,
	classifier ai.Classifier,
	logger *zap.Logger,
) *DetectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetectionService{
		decoder:    decoder,
		extractor:  extractor,
		temporal:   temporal,
		classifier: classifier,
		logger:     logger,
	}
}

// NewFromConfig собирает сервис со встроенными компонентами
func NewFromConfig(cfg *config.Config, logger *zap.Logger) *DetectionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	classifier := ai.NewHeuristicClassifier(cfg.Thresholds)
	th := classifier.Thresholds()
	logger.Debug("detection service configured",
		zap.String("classifier", classifier.Name()),
		zap.Float64("pitch", th.Pitch),
		zap.Float64("tonal_pitch", th.TonalPitch),
		zap.Float64("rhythm", th.Rhythm),
		zap.Float64("pause", th.Pause),
		zap.Float64("smoothness", th.Smoothness),
		zap.String("tie", string(th.Tie.Classification)))

	return NewDetectionService(
		audio.NewDecoder(cfg.Decoder, logger.Named("decoder")),
		ai.NewExtractor(cfg.Features, logger.Named("features")),
		ai.NewTemporalAnalyzer(cfg.Temporal, cfg.Features, logger.Named("temporal")),
		classifier,
		logger,
	)
}

// Analyze обрабатывает запрос. Ошибка возвращается только для некорректного
// ввода (*ValidationError); любой сбой дальше даёт безопасный ответ.
func (s *DetectionService) Analyze(ctx context.Context, req api.AnalyzeRequest) (*Analysis, error) {
	start := time.Now()
	id := uuid.New()
	logger := s.logger.With(zap.String("request_id", id.String()))

	lang, err := ai.ParseLanguage(req.Language)
	if err != nil {
		return nil, &ValidationError{Field: "language", Err: err}
	}
	format := audio.NormalizeFormat(req.Format())

	decoded, err := s.decode(ctx, req.AudioBase64, format)
	if err != nil {
		if errors.Is(err, audio.ErrEmptyAudio) || errors.Is(err, audio.ErrInvalidBase64) {
			return nil, &ValidationError{Field: "audioBase64", Err: err}
		}
		logger.Error("audio decoding failed", zap.Error(err))
		return s.safeDefault(id, lang, start), nil
	}

	analysis := s.analyzeDecoded(ctx, logger, id, lang, decoded)
	analysis.Elapsed = time.Since(start)

	logger.Info("analysis finished",
		zap.String("language", string(lang)),
		zap.String("format", format),
		zap.String("source", string(analysis.Source)),
		zap.String("classification", string(analysis.Result.Classification)),
		zap.Float64("confidence", analysis.Result.Confidence),
		zap.Duration("elapsed", analysis.Elapsed))

	return analysis, nil
}

// AnalyzeSample классифицирует уже декодированную волну (запись с микрофона)
func (s *DetectionService) AnalyzeSample(ctx context.Context, sample audio.Sample, language string) (*Analysis, error) {
	start := time.Now()
	id := uuid.New()
	logger := s.logger.With(zap.String("request_id", id.String()))

	lang, err := ai.ParseLanguage(language)
	if err != nil {
		return nil, &ValidationError{Field: "language", Err: err}
	}

	analysis := s.analyzeDecoded(ctx, logger, id, lang, audio.DecodeResult{
		Status: audio.DecodeOK,
		Sample: sample,
	})
	analysis.Elapsed = time.Since(start)

	logger.Info("sample analysis finished",
		zap.String("language", string(lang)),
		zap.String("source", string(analysis.Source)),
		zap.String("classification", string(analysis.Result.Classification)),
		zap.Duration("elapsed", analysis.Elapsed))

	return analysis, nil
}

// decode вызывает декодер с перехватом паник
func (s *DetectionService) decode(ctx context.Context, audioBase64, format string) (res audio.DecodeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panicked: %v", r)
		}
	}()
	return s.decoder.Decode(ctx, audioBase64, format)
}

// analyzeDecoded строит признаки и вердикт; при любом сбое возвращает безопасный ответ
func (s *DetectionService) analyzeDecoded(
	ctx context.Context,
	logger *zap.Logger,
	id uuid.UUID,
	lang ai.Language,
	decoded audio.DecodeResult,
) (analysis *Analysis) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked", zap.Any("panic", r))
			analysis = s.safeDefault(id, lang, start)
		}
	}()

	var (
		fs     ai.FeatureSet
		source Source
		err    error
	)

	switch decoded.Status {
	case audio.DecodeOK:
		fs, err = s.extractor.Extract(decoded.Sample)
		if err != nil {
			logger.Error("feature extraction failed", zap.Error(err))
			return s.safeDefault(id, lang, start)
		}
		fs.PitchConsistency = s.temporal.Analyze(ctx, decoded.Sample)
		source = SourceDecoded

	case audio.DecodeUnavailable:
		fs, err = ai.SynthesizeFeatures(decoded.Payload)
		if err != nil {
			logger.Error("feature synthesis failed", zap.Error(err))
			return s.safeDefault(id, lang, start)
		}
		source = SourceFallback
		logger.Debug("using synthesized features", zap.NamedError("reason", decoded.Reason))

	default:
		logger.Error("unknown decode status", zap.Stringer("status", decoded.Status))
		return s.safeDefault(id, lang, start)
	}

	fs.Language = lang
	result := s.classifier.Classify(fs)

	return &Analysis{
		ID:         id,
		Source:     source,
		DecodePath: decoded.Path,
		Features:   &fs,
		Result:     result,
	}
}

func (s *DetectionService) safeDefault(id uuid.UUID, lang ai.Language, start time.Time) *Analysis {
	return &Analysis{
		ID:      id,
		Source:  SourceSafeDefault,
		Result:  ai.SafeDefault(lang),
		Elapsed: time.Since(start),
	}
}
