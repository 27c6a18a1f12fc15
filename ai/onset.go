package ai

// OnsetStrength огибающая атак: положительный прирост дБ-спектра между
// соседними фреймами, усреднённый по mel-полосам. Первый фрейм равен 0.
func OnsetStrength(melDB [][]float64) []float64 {
	if len(melDB) == 0 {
		return nil
	}

	env := make([]float64, len(melDB))
	for t := 1; t < len(melDB); t++ {
		prev, cur := melDB[t-1], melDB[t]
		if len(cur) == 0 {
			continue
		}
		var sum float64
		for m := range cur {
			if d := cur[m] - prev[m]; d > 0 {
				sum += d
			}
		}
		env[t] = sum / float64(len(cur))
	}
	return env
}
