package ai

import (
	"math"
)

// MFCC вычисляет nMFCC кепстральных коэффициентов из дБ mel-спектрограммы
// (DCT-II с орто-нормировкой по полосам). Результат: [numFrames][nMFCC].
func MFCC(melDB [][]float64, nMFCC int) [][]float64 {
	if len(melDB) == 0 || nMFCC <= 0 {
		return nil
	}
	nMels := len(melDB[0])
	if nMels == 0 {
		return nil
	}
	if nMFCC > nMels {
		nMFCC = nMels
	}

	basis := dctBasis(nMFCC, nMels)
	out := make([][]float64, len(melDB))
	for t, row := range melDB {
		coeffs := make([]float64, nMFCC)
		for k := 0; k < nMFCC; k++ {
			var sum float64
			for n, v := range row {
				sum += v * basis[k][n]
			}
			coeffs[k] = sum
		}
		out[t] = coeffs
	}
	return out
}

// dctBasis матрица DCT-II (ortho) размером [k][n]
func dctBasis(k, n int) [][]float64 {
	basis := make([][]float64, k)
	scale0 := math.Sqrt(1.0 / float64(n))
	scale := math.Sqrt(2.0 / float64(n))
	for i := 0; i < k; i++ {
		basis[i] = make([]float64, n)
		s := scale
		if i == 0 {
			s = scale0
		}
		for j := 0; j < n; j++ {
			basis[i][j] = s * math.Cos(math.Pi*float64(i)*(2*float64(j)+1)/(2*float64(n)))
		}
	}
	return basis
}

// SpectralSmoothness 1 - mean|ΔMFCC| / mean|MFCC|, ограничено [0, 1].
// Дельта берётся между соседними фреймами.
func SpectralSmoothness(mfcc [][]float64) float64 {
	if len(mfcc) == 0 {
		return 0
	}

	var absSum float64
	var count int
	for _, row := range mfcc {
		for _, v := range row {
			absSum += math.Abs(v)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	meanAbs := absSum / float64(count)

	var deltaSum float64
	var deltaCount int
	for t := 1; t < len(mfcc); t++ {
		for k := range mfcc[t] {
			deltaSum += math.Abs(mfcc[t][k] - mfcc[t-1][k])
			deltaCount++
		}
	}
	meanDelta := 0.0
	if deltaCount > 0 {
		meanDelta = deltaSum / float64(deltaCount)
	}

	return clamp01(1 - meanDelta/(meanAbs+1e-9))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
