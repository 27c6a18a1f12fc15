package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"echotrace/internal/api"
	"echotrace/internal/service"
)

var (
	analyzeFile     string
	analyzeLanguage string
	analyzeFormat   string
	analyzeFeatures bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a recording as HUMAN or AI_GENERATED",
	Long: `Reads an audio file, encodes it as base64 and runs the detection pipeline.

The audio format is taken from --format, or from the file extension.
Formats other than mp3 and wav are decoded with ffmpeg when it is installed;
otherwise byte-level fallback features are used.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "audio file to analyze ('-' for stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "recording language (Tamil, English, Hindi, Malayalam, Telugu)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "audio format (default: file extension, then mp3)")
	analyzeCmd.Flags().BoolVar(&analyzeFeatures, "features", false, "include extracted features in the output")
	analyzeCmd.MarkFlagRequired("file")
	analyzeCmd.MarkFlagRequired("language")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput печатается при --features
type analyzeOutput struct {
	Response api.AnalyzeResponse `json:"response"`
	*service.Analysis
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := readInput(cmd, analyzeFile)
	if err != nil {
		return err
	}

	format := analyzeFormat
	if format == "" && analyzeFile != "-" {
		format = strings.TrimPrefix(filepath.Ext(analyzeFile), ".")
	}

	svc := service.NewFromConfig(cfg, logger)
	analysis, err := svc.Analyze(cmd.Context(), api.AnalyzeRequest{
		AudioBase64: base64.StdEncoding.EncodeToString(data),
		Language:    analyzeLanguage,
		AudioFormat: format,
	})
	if err != nil {
		return err
	}

	if analyzeFeatures {
		return printJSON(cmd.OutOrStdout(), analyzeOutput{
			Response: analysis.Response(),
			Analysis: analysis,
		})
	}
	return printJSON(cmd.OutOrStdout(), analysis.Response())
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
