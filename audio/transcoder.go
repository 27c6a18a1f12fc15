package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrFFmpegNotFound возвращается, если бинарник FFmpeg не найден
var ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

// Transcoder переводит закодированный поток в Sample через внешний инструмент
type Transcoder interface {
	Transcode(ctx context.Context, payload []byte, format string) (Sample, error)
}

// FFmpegTranscoder конвертирует аудио через FFmpeg во временной директории
type FFmpegTranscoder struct {
	path       string        // явный путь к ffmpeg (пусто = автопоиск)
	scratchDir string        // база для временных директорий (пусто = os.TempDir)
	timeout    time.Duration // лимит на один запуск ffmpeg
	logger     *zap.Logger
}

// NewFFmpegTranscoder создаёт транскодер
func NewFFmpegTranscoder(path, scratchDir string, timeout time.Duration, logger *zap.Logger) *FFmpegTranscoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegTranscoder{
		path:       path,
		scratchDir: scratchDir,
		timeout:    timeout,
		logger:     logger,
	}
}

// FindFFmpeg ищет FFmpeg в следующих местах (в порядке приоритета):
// 1. Явно заданный путь
// 2. Рядом с исполняемым файлом
// 3. В текущей рабочей директории (vendor/ffmpeg, build/resources)
// 4. Системный PATH
func FindFFmpeg(explicit string) (string, error) {
	if explicit != "" {
		if fileExists(explicit) {
			return explicit, nil
		}
		// Разрешаем имя команды без пути, например "ffmpeg6"
		if p, err := exec.LookPath(explicit); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, explicit)
	}

	var searchPaths []string

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths, filepath.Join(execDir, "ffmpeg"))
		searchPaths = append(searchPaths, filepath.Join(execDir, "..", "Resources", "ffmpeg"))
	}

	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(cwd, "vendor", "ffmpeg", "ffmpeg"))
		searchPaths = append(searchPaths, filepath.Join(cwd, "build", "resources", "ffmpeg"))
	}

	for _, path := range searchPaths {
		if fileExists(path) {
			return path, nil
		}
	}

	if systemPath, err := exec.LookPath("ffmpeg"); err == nil {
		return systemPath, nil
	}

	return "", ErrFFmpegNotFound
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Transcode пишет payload во временный файл, конвертирует в 16-bit mono WAV
// и перечитывает результат. Временная директория удаляется при любом исходе.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, payload []byte, format string) (Sample, error) {
	dir, err := os.MkdirTemp(t.scratchDir, "echotrace-*")
	if err != nil {
		return Sample{}, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input."+fileExtension(format))
	if err := os.WriteFile(inPath, payload, 0o600); err != nil {
		return Sample{}, fmt.Errorf("failed to write scratch input: %w", err)
	}

	ffmpeg, err := FindFFmpeg(t.path)
	if err != nil {
		return Sample{}, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	outPath := filepath.Join(dir, "output.wav")
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner",
		"-loglevel", "error",
		"-y",          // перезаписать файл
		"-i", inPath,  // формат входа определяет сам ffmpeg
		"-vn",         // без видео
		"-ac", "1",    // моно
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return Sample{}, fmt.Errorf("ffmpeg transcode failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	f, err := os.Open(outPath)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to open transcoded WAV: %w", err)
	}
	defer f.Close()

	sample, err := ReadWAV(f)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to read transcoded WAV: %w", err)
	}

	t.logger.Debug("ffmpeg transcode finished",
		zap.String("path", ffmpeg),
		zap.String("format", format),
		zap.Int("samples", len(sample.Samples)),
		zap.Duration("elapsed", time.Since(start)))

	return sample, nil
}

// fileExtension оставляет в имени формата только [a-z0-9]
func fileExtension(format string) string {
	ext := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(format))
	if ext == "" {
		return "bin"
	}
	return ext
}
