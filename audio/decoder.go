package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

var (
	// ErrEmptyAudio пустой base64 или пустой результат декодирования
	ErrEmptyAudio = errors.New("empty audio input")
	// ErrInvalidBase64 строка не является корректным base64
	ErrInvalidBase64 = errors.New("invalid base64 audio data")
	// ErrUnsupportedFormat формат нельзя декодировать в памяти
	ErrUnsupportedFormat = errors.New("format not decodable in memory")
)

// DecodeStatus исход декодирования
type DecodeStatus int

const (
	// DecodeOK волна получена
	DecodeOK DecodeStatus = iota
	// DecodeUnavailable ни один путь декодирования не сработал
	DecodeUnavailable
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeOK:
		return "ok"
	case DecodeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("DecodeStatus(%d)", int(s))
	}
}

// DecodePath каким путём получена волна
type DecodePath string

const (
	DecodePathMemory DecodePath = "memory"
	DecodePathFFmpeg DecodePath = "ffmpeg"
)

// DecodeResult результат декодирования: либо Sample, либо пометка Unavailable.
// Sample заполнен только при Status == DecodeOK.
type DecodeResult struct {
	Status  DecodeStatus
	Sample  Sample
	Path    DecodePath
	Payload []byte // байты после base64, нужны синтезатору признаков
	Reason  error  // почему волна недоступна
}

// DecoderConfig настройки декодера
type DecoderConfig struct {
	TargetSampleRate int           `yaml:"target_sample_rate"`
	FFmpegPath       string        `yaml:"ffmpeg_path"`
	ScratchDir       string        `yaml:"scratch_dir"`
	TranscodeTimeout time.Duration `yaml:"transcode_timeout"`
}

// DefaultDecoderConfig возвращает конфигурацию по умолчанию
func DefaultDecoderConfig() DecoderConfig {
	return DecoderConfig{
		TargetSampleRate: 16000,
		TranscodeTimeout: 30 * time.Second,
	}
}

// Decoder превращает base64 + формат в моно-волну
type Decoder struct {
	config     DecoderConfig
	transcoder Transcoder
	logger     *zap.Logger
}

// NewDecoder создаёт декодер с FFmpeg в качестве запасного пути
func NewDecoder(config DecoderConfig, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		config:     config,
		transcoder: NewFFmpegTranscoder(config.FFmpegPath, config.ScratchDir, config.TranscodeTimeout, logger),
		logger:     logger,
	}
}

// WithTranscoder заменяет запасной путь (используется в тестах)
func (d *Decoder) WithTranscoder(t Transcoder) *Decoder {
	d.transcoder = t
	return d
}

// DecodeBase64 проверяет и декодирует base64. Пробелы и переводы строк
// игнорируются, допускается base64 без паддинга.
func DecodeBase64(audioBase64 string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, audioBase64)
	if cleaned == "" {
		return nil, ErrEmptyAudio
	}

	payload, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		var rawErr error
		payload, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
	}
	if len(payload) == 0 {
		return nil, ErrEmptyAudio
	}

	return payload, nil
}

// NormalizeFormat приводит тег формата к нижнему регистру, пустой = mp3
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	format = strings.TrimPrefix(format, ".")
	format = strings.TrimPrefix(format, "audio/")
	switch format {
	case "":
		return "mp3"
	case "mpeg", "mpga":
		return "mp3"
	case "wave", "x-wav":
		return "wav"
	}
	return format
}

// Decode возвращает ошибку только для пустого или битого base64.
// Если ни память, ни FFmpeg не дали волну, возвращается DecodeUnavailable.
func (d *Decoder) Decode(ctx context.Context, audioBase64, format string) (DecodeResult, error) {
	payload, err := DecodeBase64(audioBase64)
	if err != nil {
		return DecodeResult{}, err
	}
	format = NormalizeFormat(format)

	// 1. Прямое декодирование из памяти
	sample, memErr := d.decodeInMemory(payload, format)
	if memErr == nil {
		if result, ok := d.finish(sample, payload, DecodePathMemory); ok {
			return result, nil
		}
		memErr = ErrEmptyAudio
	}
	d.logger.Debug("in-memory decode failed, trying ffmpeg",
		zap.String("format", format),
		zap.Int("bytes", len(payload)),
		zap.Error(memErr))

	// 2. Запасной путь: временный файл + FFmpeg
	var ffErr error
	if d.transcoder == nil {
		ffErr = ErrFFmpegNotFound
	} else {
		sample, ffErr = d.transcoder.Transcode(ctx, payload, format)
		if ffErr == nil {
			if result, ok := d.finish(sample, payload, DecodePathFFmpeg); ok {
				return result, nil
			}
			ffErr = ErrEmptyAudio
		}
	}

	// 3. Сдаёмся: дальше работает синтезатор признаков
	reason := errors.Join(memErr, ffErr)
	d.logger.Info("audio decode unavailable",
		zap.String("format", format),
		zap.Int("bytes", len(payload)),
		zap.Error(reason))

	return DecodeResult{
		Status:  DecodeUnavailable,
		Payload: payload,
		Reason:  reason,
	}, nil
}

// decodeInMemory декодирует WAV и MP3 без внешних процессов
func (d *Decoder) decodeInMemory(payload []byte, format string) (sample Sample, err error) {
	// go-mp3 может паниковать на повреждённых кадрах
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("in-memory decoder panicked: %v", r)
		}
	}()

	switch {
	case isWAV(payload) || format == "wav":
		return ReadWAV(bytes.NewReader(payload))
	case format == "mp3":
		return DecodeMP3(bytes.NewReader(payload))
	default:
		return Sample{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// finish ресемплирует волну к целевой частоте
func (d *Decoder) finish(sample Sample, payload []byte, path DecodePath) (DecodeResult, bool) {
	if d.config.TargetSampleRate > 0 && sample.SampleRate != d.config.TargetSampleRate {
		sample = Sample{
			Samples:    Resample(sample.Samples, sample.SampleRate, d.config.TargetSampleRate),
			SampleRate: d.config.TargetSampleRate,
		}
	}
	if !sample.Valid() {
		return DecodeResult{}, false
	}

	d.logger.Debug("audio decoded",
		zap.String("path", string(path)),
		zap.Int("sample_rate", sample.SampleRate),
		zap.Float64("duration", sample.Duration()))

	return DecodeResult{
		Status:  DecodeOK,
		Sample:  sample,
		Path:    path,
		Payload: payload,
	}, true
}
