package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"echotrace/audio"
	"echotrace/internal/service"
)

var (
	recordLanguage string
	recordSeconds  float64
	recordDevice   string
	recordList     bool
	recordFeatures bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone and classify",
	Long: `Records mono audio from the default (or selected) capture device and runs
feature extraction, temporal analysis and the decision engine on it.
Press Ctrl+C to stop early; the audio captured so far is analyzed.`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordLanguage, "language", "l", "", "spoken language (Tamil, English, Hindi, Malayalam, Telugu)")
	recordCmd.Flags().Float64Var(&recordSeconds, "seconds", 5, "recording length in seconds")
	recordCmd.Flags().StringVar(&recordDevice, "device", "", "capture device name (substring match)")
	recordCmd.Flags().BoolVar(&recordList, "list-devices", false, "list capture devices and exit")
	recordCmd.Flags().BoolVar(&recordFeatures, "features", false, "include extracted features in the output")

	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	recorder, err := audio.NewRecorder(cfg.Decoder.TargetSampleRate, logger.Named("recorder"))
	if err != nil {
		return err
	}
	defer recorder.Close()

	if recordList {
		devices, err := recorder.ListDevices()
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), devices)
	}

	if recordLanguage == "" {
		return fmt.Errorf("--language is required")
	}
	if recordSeconds <= 0 {
		return fmt.Errorf("--seconds must be positive, got %v", recordSeconds)
	}
	if recordDevice != "" {
		if err := recorder.UseDevice(recordDevice); err != nil {
			return err
		}
	}

	sample, err := recorder.Record(cmd.Context(), time.Duration(recordSeconds*float64(time.Second)))
	if err != nil {
		return err
	}

	svc := service.NewFromConfig(cfg, logger)
	analysis, err := svc.AnalyzeSample(cmd.Context(), sample, recordLanguage)
	if err != nil {
		return err
	}

	if recordFeatures {
		return printJSON(cmd.OutOrStdout(), analyzeOutput{
			Response: analysis.Response(),
			Analysis: analysis,
		})
	}
	return printJSON(cmd.OutOrStdout(), analysis.Response())
}
