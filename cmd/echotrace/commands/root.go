package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"echotrace/internal/config"
)

var (
	// Глобальные флаги
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "echotrace",
	Short: "Acoustic AI-voice detection",
	Long: `echotrace - classifies speech recordings as HUMAN or AI_GENERATED.

The decision is made from four explainable acoustic indicators: pitch
variance, rhythm variance, pause ratio and spectral smoothness. No
external service or trained model is involved.

Supported languages: Tamil, English, Hindi, Malayalam, Telugu.

Examples:
  # Classify an mp3 file
  echotrace analyze -f sample.mp3 -l English

  # Show the extracted features too
  echotrace analyze -f sample.wav -l Tamil --features

  # Generate a flat test tone and classify it
  echotrace tone -o flat.mp3 --freq 200 --seconds 4
  echotrace analyze -f flat.mp3 -l Hindi

  # Record 5 seconds from the microphone
  echotrace record -l Telugu --seconds 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute запускает корневую команду. Ctrl+C отменяет текущую команду.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
}

// loadConfig читает файл из --config или возвращает значения по умолчанию
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config not available: %w", err)
	}
	return cfg, nil
}

// newLogger строит логгер процесса из конфига и --verbose
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := cfg.Log.BuildLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// IsVerbose включён ли подробный режим
func IsVerbose() bool {
	return verbose
}
