package ai

import "math"

// frameRMS RMS энергия фрейма
func frameRMS(frame []float32) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// FrameRMS RMS по центрированным фреймам (паддинг нулями по frameLength/2 с каждой стороны)
func FrameRMS(samples []float32, frameLength, hopLength int) []float64 {
	if len(samples) == 0 || frameLength <= 0 || hopLength <= 0 {
		return nil
	}

	half := frameLength / 2
	numFrames := len(samples)/hopLength + 1
	rms := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i*hopLength - half
		var sum float64
		for j := 0; j < frameLength; j++ {
			idx := start + j
			if idx >= 0 && idx < len(samples) {
				v := float64(samples[idx])
				sum += v * v
			}
		}
		rms[i] = math.Sqrt(sum / float64(frameLength))
	}
	return rms
}

// PauseRatio доля фреймов с энергией ниже threshold
func PauseRatio(rms []float64, threshold float64) float64 {
	if len(rms) == 0 {
		return 0
	}
	quiet := 0
	for _, v := range rms {
		if v < threshold {
			quiet++
		}
	}
	return float64(quiet) / float64(len(rms))
}
