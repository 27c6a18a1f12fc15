package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"echotrace/audio"
)

var (
	toneOutput      string
	toneFrequency   float64
	toneSeconds     float64
	toneSampleRate  int
	toneAmplitude   float64
	toneVibrato     float64
	toneVibratoRate float64
)

var toneCmd = &cobra.Command{
	Use:   "tone",
	Short: "Write a synthetic test tone (mp3 or wav)",
	Long: `Generates a sine tone, optionally with vibrato, and writes it as mp3 or wav
(chosen by the output file extension). A flat tone looks machine-like to the
engine; a tone with vibrato has high pitch variance.`,
	RunE: runTone,
}

func init() {
	toneCmd.Flags().StringVarP(&toneOutput, "output", "o", "", "output file (.mp3 or .wav)")
	toneCmd.Flags().Float64Var(&toneFrequency, "freq", 200, "base frequency in Hz")
	toneCmd.Flags().Float64Var(&toneSeconds, "seconds", 3, "length in seconds")
	toneCmd.Flags().IntVar(&toneSampleRate, "sample-rate", 44100, "sample rate in Hz")
	toneCmd.Flags().Float64Var(&toneAmplitude, "amplitude", 0.5, "peak amplitude (0..1)")
	toneCmd.Flags().Float64Var(&toneVibrato, "vibrato", 0, "vibrato depth in Hz (0 = flat tone)")
	toneCmd.Flags().Float64Var(&toneVibratoRate, "vibrato-rate", 1, "vibrato rate in Hz")
	toneCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(toneCmd)
}

func runTone(cmd *cobra.Command, args []string) error {
	if toneSeconds <= 0 || toneSampleRate <= 0 {
		return fmt.Errorf("--seconds and --sample-rate must be positive")
	}
	if toneAmplitude <= 0 || toneAmplitude > 1 {
		return fmt.Errorf("--amplitude must be in (0, 1], got %v", toneAmplitude)
	}

	sample := audio.GenerateTone(audio.ToneConfig{
		SampleRate:   toneSampleRate,
		Seconds:      toneSeconds,
		Frequency:    toneFrequency,
		Amplitude:    toneAmplitude,
		VibratoDepth: toneVibrato,
		VibratoRate:  toneVibratoRate,
	})

	f, err := os.Create(toneOutput)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(toneOutput)); ext {
	case ".wav":
		err = audio.WriteWAV(f, sample)
	case ".mp3", "":
		err = audio.EncodeMP3(f, sample)
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to write tone: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%.2fs, %d Hz)\n", toneOutput, sample.Duration(), sample.SampleRate)
	return nil
}
