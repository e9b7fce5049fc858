package nn

import (
	"fmt"
	"math"
)

// Argmax returns the index of the largest value. Ties resolve to the lowest
// index so greedy action selection is reproducible under a fixed seed.
func Argmax(values []float64) (int, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best, nil
}

// Max returns the largest value.
func Max(values []float64) (float64, error) {
	idx, err := Argmax(values)
	if err != nil {
		return 0, err
	}
	return values[idx], nil
}

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Avg returns the arithmetic mean of values.
func Avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("values must not be empty")
	}
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values)), nil
}

// Std returns population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Avg(values)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, value := range values {
		diff := mean - value
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values))), nil
}
