package audio

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"
)

// Device устройство захвата
type Device struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

// Recorder записывает моно-сэмпл с микрофона через miniaudio
type Recorder struct {
	ctx        *malgo.AllocatedContext
	sampleRate int
	deviceID   *malgo.DeviceID
	logger     *zap.Logger
}

// NewRecorder инициализирует аудио-контекст
func NewRecorder(sampleRate int, logger *zap.Logger) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("miniaudio", zap.String("message", strings.TrimSpace(message)))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}

	return &Recorder{
		ctx:        ctx,
		sampleRate: sampleRate,
		logger:     logger,
	}, nil
}

// ListDevices возвращает список устройств захвата
func (r *Recorder) ListDevices() ([]Device, error) {
	captureDevices, err := r.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	devices := make([]Device, 0, len(captureDevices))
	for _, dev := range captureDevices {
		devices = append(devices, Device{
			ID:        deviceIDToString(dev.ID),
			Name:      dev.Name(),
			IsDefault: dev.IsDefault != 0,
		})
	}
	return devices, nil
}

// UseDevice выбирает устройство по имени (частичное совпадение, без регистра)
func (r *Recorder) UseDevice(name string) error {
	devices, err := r.ctx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	nameLower := strings.ToLower(name)
	for _, dev := range devices {
		if strings.Contains(strings.ToLower(dev.Name()), nameLower) {
			id := dev.ID
			r.deviceID = &id
			return nil
		}
	}
	return fmt.Errorf("capture device not found: %s", name)
}

// Record пишет звук в течение duration или до отмены ctx
func (r *Recorder) Record(ctx context.Context, duration time.Duration) (Sample, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(r.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if r.deviceID != nil {
		deviceConfig.Capture.DeviceID = r.deviceID.Pointer()
	}

	var (
		mu      sync.Mutex
		samples = make([]float32, 0, int(duration.Seconds()*float64(r.sampleRate))+r.sampleRate)
	)

	onRecvFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		sampleCount := int(framecount) * int(deviceConfig.Capture.Channels)
		if len(pInputSamples) < sampleCount*4 {
			return
		}

		mu.Lock()
		for i := 0; i < sampleCount; i++ {
			bits := uint32(pInputSamples[i*4]) | uint32(pInputSamples[i*4+1])<<8 | uint32(pInputSamples[i*4+2])<<16 | uint32(pInputSamples[i*4+3])<<24
			samples = append(samples, math.Float32frombits(bits))
		}
		mu.Unlock()
	}

	device, err := malgo.InitDevice(r.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		return Sample{}, fmt.Errorf("failed to init capture device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return Sample{}, fmt.Errorf("failed to start capture: %w", err)
	}
	r.logger.Info("microphone capture started",
		zap.Int("sample_rate", r.sampleRate),
		zap.Duration("duration", duration))

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	if err := device.Stop(); err != nil {
		r.logger.Warn("failed to stop capture device", zap.Error(err))
	}

	mu.Lock()
	defer mu.Unlock()

	if len(samples) == 0 {
		return Sample{}, fmt.Errorf("no audio captured")
	}

	captured := make([]float32, len(samples))
	copy(captured, samples)

	r.logger.Info("microphone capture finished", zap.Int("samples", len(captured)))
	// При отмене ctx возвращаем то, что успели записать
	return Sample{Samples: captured, SampleRate: r.sampleRate}, nil
}

// Close освобождает ресурсы
func (r *Recorder) Close() {
	if r.ctx != nil {
		r.ctx.Uninit()
		r.ctx.Free()
		r.ctx = nil
	}
}

// deviceIDToString использует первые 32 байта ID как строку
func deviceIDToString(id malgo.DeviceID) string {
	var result strings.Builder
	for _, b := range id[:32] {
		if b == 0 {
			break
		}
		result.WriteByte(b)
	}
	return result.String()
}
