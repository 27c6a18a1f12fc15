package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Reader читает MP3 из памяти используя чистый Go (без FFmpeg)
type MP3Reader struct {
	decoder    *mp3.Decoder
	sampleRate int
}

// NewMP3Reader создаёт декодер поверх произвольного io.Reader
func NewMP3Reader(r io.Reader) (*MP3Reader, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Reader{
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
	}, nil
}

// SampleRate возвращает частоту дискретизации
func (r *MP3Reader) SampleRate() int {
	return r.sampleRate
}

// ReadAllStereo читает весь поток и возвращает отдельные каналы (left, right)
func (r *MP3Reader) ReadAllStereo() ([]float32, []float32, error) {
	// Длина потока может быть неизвестна, поэтому читаем до EOF
	pcmData, err := io.ReadAll(r.decoder)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	// signed 16-bit stereo, interleaved: 4 байта на фрейм
	numSamples := len(pcmData) / 4

	left := make([]float32, numSamples)
	right := make([]float32, numSamples)

	for i := 0; i < numSamples; i++ {
		leftSample := int16(binary.LittleEndian.Uint16(pcmData[i*4:]))
		rightSample := int16(binary.LittleEndian.Uint16(pcmData[i*4+2:]))

		left[i] = float32(leftSample) / 32768.0
		right[i] = float32(rightSample) / 32768.0
	}

	return left, right, nil
}

// ReadAllMono читает весь поток и возвращает моно (среднее каналов)
func (r *MP3Reader) ReadAllMono() ([]float32, error) {
	left, right, err := r.ReadAllStereo()
	if err != nil {
		return nil, err
	}

	mono := make([]float32, len(left))
	for i := 0; i < len(left); i++ {
		mono[i] = (left[i] + right[i]) / 2.0
	}

	return mono, nil
}

// DecodeMP3 декодирует MP3 поток целиком в моно Sample
func DecodeMP3(r io.Reader) (Sample, error) {
	reader, err := NewMP3Reader(r)
	if err != nil {
		return Sample{}, err
	}

	mono, err := reader.ReadAllMono()
	if err != nil {
		return Sample{}, err
	}
	if len(mono) == 0 {
		return Sample{}, fmt.Errorf("MP3 stream contains no audio frames")
	}

	return Sample{Samples: mono, SampleRate: reader.SampleRate()}, nil
}
