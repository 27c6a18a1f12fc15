package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"mp3":       "mp3",
		"OGG":       "ogg",
		"../evil":   "evil",
		"m4a/aac":   "m4aaac",
		"":          "bin",
		"///":       "bin",
		"webm opus": "webmopus",
	}
	for in, want := range tests {
		if got := fileExtension(in); got != want {
			t.Errorf("fileExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("scratch files left behind: %v", names)
	}
}

func TestTranscoderRemovesScratchOnFailure(t *testing.T) {
	scratch := t.TempDir()
	missing := filepath.Join(scratch, "no-such-ffmpeg")

	tr := NewFFmpegTranscoder(missing, scratch, time.Second, nil)
	_, err := tr.Transcode(context.Background(), []byte("payload"), "ogg")
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Fatalf("expected ErrFFmpegNotFound, got %v", err)
	}
	assertEmptyDir(t, scratch)
}

func TestTranscoderWAV(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skipf("ffmpeg not installed: %v", err)
	}

	tone := GenerateTone(ToneConfig{SampleRate: 22050, Seconds: 0.5, Frequency: 440, Amplitude: 0.5})
	var buf bytes.Buffer
	if err := WriteWAV(&buf, tone); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	scratch := t.TempDir()
	tr := NewFFmpegTranscoder(ffmpeg, scratch, 30*time.Second, nil)
	sample, err := tr.Transcode(context.Background(), buf.Bytes(), "wav")
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}
	if !sample.Valid() {
		t.Fatal("expected a valid sample")
	}
	if sample.SampleRate != 22050 {
		t.Errorf("expected source rate 22050, got %d", sample.SampleRate)
	}
	assertEmptyDir(t, scratch)
}

func TestTranscoderGarbageInput(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skipf("ffmpeg not installed: %v", err)
	}

	scratch := t.TempDir()
	tr := NewFFmpegTranscoder(ffmpeg, scratch, 30*time.Second, nil)
	if _, err := tr.Transcode(context.Background(), []byte("not audio"), "ogg"); err == nil {
		t.Error("expected ffmpeg to reject garbage input")
	}
	assertEmptyDir(t, scratch)
}

func TestFindFFmpegExplicitMissing(t *testing.T) {
	_, err := FindFFmpeg(filepath.Join(t.TempDir(), "ffmpeg-missing"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}
