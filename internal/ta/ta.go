package ta

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when an indicator has no data to work with.
var ErrInsufficientData = errors.New("insufficient price data")

// MovingAverage returns the simple moving average of the last n prices.
// A series shorter than n is averaged over what exists; only an empty
// series is an error.
func MovingAverage(prices []float64, n int) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrInsufficientData
	}
	if n <= 0 || n > len(prices) {
		n = len(prices)
	}
	sum := 0.0
	for i := len(prices) - n; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(n), nil
}

// RSI computes the relative strength index over the given period.
// Returns NaN when there are not enough prices.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

// StdDev is the population standard deviation of the last n prices.
func StdDev(prices []float64, n int) float64 {
	if n <= 0 || len(prices) < n {
		return math.NaN()
	}
	m, _ := MovingAverage(prices, n)
	s := 0.0
	for i := len(prices) - n; i < len(prices); i++ {
		d := prices[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}
