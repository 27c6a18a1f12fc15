package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
)

// ErrNotWAV возвращается, если поток не является RIFF/WAVE
var ErrNotWAV = errors.New("not a RIFF/WAVE stream")

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// isWAV проверяет сигнатуру RIFF....WAVE
func isWAV(payload []byte) bool {
	return len(payload) >= 12 &&
		bytes.Equal(payload[0:4], []byte("RIFF")) &&
		bytes.Equal(payload[8:12], []byte("WAVE"))
}

// maxFmtChunk верхняя граница fmt-чанка (WAVE_FORMAT_EXTENSIBLE занимает 40 байт),
// остаток пропускается
const maxFmtChunk = 64

// errPCMSubFormat extensible-поток с целочисленным PCM внутри
var errPCMSubFormat = errors.New("extensible WAV carries integer PCM")

// wavFormat содержимое fmt-чанка
type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// ReadWAV читает WAV и сводит каналы в моно. Целочисленный PCM (8/16/24/32 бит)
// декодирует go-audio/wav; IEEE float разбирается вручную, так как go-audio/wav
// читает 32-битные сэмплы только как целые.
func ReadWAV(r io.ReadSeeker) (Sample, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Sample{}, fmt.Errorf("failed to read WAV header: %w", err)
	}
	if !isWAV(header[:]) {
		return Sample{}, ErrNotWAV
	}
	if err := rewind(r); err != nil {
		return Sample{}, err
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return Sample{}, fmt.Errorf("invalid WAV stream: %w", err)
		}
		return Sample{}, fmt.Errorf("invalid WAV stream")
	}

	switch dec.WavAudioFormat {
	case wavFormatPCM:
	case wavFormatIEEEFloat, wavFormatExtensible:
		if err := rewind(r); err != nil {
			return Sample{}, err
		}
		sample, err := readFloatWAV(r)
		if !errors.Is(err, errPCMSubFormat) {
			return sample, err
		}
		if err := rewind(r); err != nil {
			return Sample{}, err
		}
		dec = wav.NewDecoder(r)
	default:
		return Sample{}, fmt.Errorf("unsupported WAV encoding: format=%d bits=%d", dec.WavAudioFormat, dec.BitDepth)
	}

	return readPCMWAV(dec)
}

func rewind(r io.Seeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind WAV stream: %w", err)
	}
	return nil
}

// readPCMWAV нормализует целочисленные сэмплы go-audio/wav в [-1, 1]
func readPCMWAV(dec *wav.Decoder) (Sample, error) {
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Sample{}, fmt.Errorf("failed to decode WAV data: %w", err)
	}
	if buf == nil {
		return Sample{}, fmt.Errorf("WAV stream has no data chunk")
	}

	bits := buf.SourceBitDepth
	if bits < 8 || bits > 32 {
		return Sample{}, fmt.Errorf("unsupported bits per sample: %d", bits)
	}
	scale := float32(int64(1) << (bits - 1))

	interleaved := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if bits == 8 {
			v -= 128 // 8-битный PCM беззнаковый
		}
		interleaved[i] = clampSample(float32(v) / scale)
	}

	format := dec.Format()
	return monoSample(interleaved, format.NumChannels, format.SampleRate)
}

// readFloatWAV проходит по чанкам и читает IEEE float 32/64 бит
func readFloatWAV(r io.Reader) (Sample, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Sample{}, fmt.Errorf("failed to read WAV header: %w", err)
	}

	var format *wavFormat
	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Sample{}, fmt.Errorf("WAV stream has no data chunk")
			}
			return Sample{}, fmt.Errorf("failed to read WAV chunk: %w", err)
		}
		id := string(chunkHeader[0:4])
		size := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch id {
		case "fmt ":
			f, err := readFmtChunk(r, size)
			if err != nil {
				return Sample{}, err
			}
			format = f
		case "data":
			if format == nil {
				return Sample{}, fmt.Errorf("WAV data chunk before fmt chunk")
			}
			// ffmpeg при записи в pipe оставляет размер 0xFFFFFFFF, читаем до EOF
			data, err := io.ReadAll(io.LimitReader(r, size))
			if err != nil {
				return Sample{}, fmt.Errorf("failed to read WAV data: %w", err)
			}
			return decodeFloatData(data, format)
		default:
			if _, err := io.CopyN(io.Discard, r, size+size%2); err != nil {
				return Sample{}, fmt.Errorf("failed to skip %q chunk: %w", id, err)
			}
		}
	}
}

// readFmtChunk читает не больше maxFmtChunk байт fmt-чанка и пропускает остаток
func readFmtChunk(r io.Reader, size int64) (*wavFormat, error) {
	if size < 16 {
		return nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
	}
	body := make([]byte, min(size, maxFmtChunk))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read fmt chunk: %w", err)
	}
	if rest := size - int64(len(body)) + size%2; rest > 0 {
		if _, err := io.CopyN(io.Discard, r, rest); err != nil {
			return nil, fmt.Errorf("failed to skip fmt chunk tail: %w", err)
		}
	}

	format := &wavFormat{
		audioFormat:   binary.LittleEndian.Uint16(body[0:2]),
		channels:      binary.LittleEndian.Uint16(body[2:4]),
		sampleRate:    binary.LittleEndian.Uint32(body[4:8]),
		bitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
	}
	// WAVE_FORMAT_EXTENSIBLE: реальный формат в первых байтах SubFormat GUID
	if format.audioFormat == wavFormatExtensible && len(body) >= 26 {
		format.audioFormat = binary.LittleEndian.Uint16(body[24:26])
	}
	if format.audioFormat == wavFormatPCM {
		return nil, errPCMSubFormat
	}
	return format, nil
}

// decodeFloatData конвертирует float-сэмплы в моно float32
func decodeFloatData(data []byte, format *wavFormat) (Sample, error) {
	if format.audioFormat != wavFormatIEEEFloat {
		return Sample{}, fmt.Errorf("unsupported WAV encoding: format=%d bits=%d", format.audioFormat, format.bitsPerSample)
	}

	var convert func(b []byte) float32
	switch format.bitsPerSample {
	case 32:
		convert = func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	case 64:
		convert = func(b []byte) float32 {
			return float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}
	default:
		return Sample{}, fmt.Errorf("unsupported float WAV bits per sample: %d", format.bitsPerSample)
	}

	bytesPerSample := int(format.bitsPerSample) / 8
	n := len(data) / bytesPerSample
	interleaved := make([]float32, n)
	for i := 0; i < n; i++ {
		interleaved[i] = clampSample(convert(data[i*bytesPerSample:]))
	}

	return monoSample(interleaved, int(format.channels), int(format.sampleRate))
}

func monoSample(interleaved []float32, channels, sampleRate int) (Sample, error) {
	if channels <= 0 || sampleRate <= 0 {
		return Sample{}, fmt.Errorf("invalid WAV format: channels=%d rate=%d", channels, sampleRate)
	}
	mono := mixToMono(interleaved, channels)
	if len(mono) == 0 {
		return Sample{}, fmt.Errorf("WAV stream contains no samples")
	}
	return Sample{Samples: mono, SampleRate: sampleRate}, nil
}

// clampSample ограничивает сэмпл [-1, 1]; NaN и ±Inf становятся тишиной
func clampSample(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)) || math.IsInf(float64(v), 0):
		return 0
	case v > 1.0:
		return 1.0
	case v < -1.0:
		return -1.0
	}
	return v
}

// WriteWAV записывает моно Sample как PCM16 WAV
func WriteWAV(w io.Writer, s Sample) error {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := s.SampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := uint32(len(s.Samples) * bitsPerSample / 8)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))           // chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(wavFormatPCM)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))     // channels
	binary.Write(&buf, binary.LittleEndian, uint32(s.SampleRate)) // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))     // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))   // block align
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)

	for _, v := range s.Samples {
		binary.Write(&buf, binary.LittleEndian, floatToPCM16(v))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// floatToPCM16 клампит и конвертирует сэмпл в int16
func floatToPCM16(s float32) int16 {
	return int16(clampSample(s) * 32767)
}
