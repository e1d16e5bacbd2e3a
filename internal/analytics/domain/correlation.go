package analytics

import (
	"math"

	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// MinCorrelationReadings is the smallest sample for which correlations
// are reported.
const MinCorrelationReadings = 10

var correlationPairs = []struct {
	key    string
	first  func(readings.Reading) float64
	second func(readings.Reading) float64
}{
	{"temperature_humidity", temperatureOf, humidityOf},
	{"temperature_methane", temperatureOf, methaneOf},
	{"temperature_other_gases", temperatureOf, otherGasesOf},
	{"humidity_methane", humidityOf, methaneOf},
	{"humidity_other_gases", humidityOf, otherGasesOf},
	{"methane_other_gases", methaneOf, otherGasesOf},
}

// ComputeCorrelations returns the Pearson coefficient for each
// unordered sensor pair over the raw readings, rounded to three
// decimals. Fewer than MinCorrelationReadings readings yields nil.
// A zero-variance series correlates at 0 with everything.
func ComputeCorrelations(window []readings.Reading) map[string]float64 {
	if len(window) < MinCorrelationReadings {
		return nil
	}
	result := make(map[string]float64, len(correlationPairs))
	for _, pair := range correlationPairs {
		result[pair.key] = Round3(pearson(window, pair.first, pair.second))
	}
	return result
}

func pearson(window []readings.Reading, first, second func(readings.Reading) float64) float64 {
	n := float64(len(window))
	var sumX, sumY float64
	for _, reading := range window {
		sumX += first(reading)
		sumY += second(reading)
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for _, reading := range window {
		dx := first(reading) - meanX
		dy := second(reading) - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func temperatureOf(r readings.Reading) float64 { return r.Temperature }
func humidityOf(r readings.Reading) float64    { return r.Humidity }
func methaneOf(r readings.Reading) float64     { return r.Methane }
func otherGasesOf(r readings.Reading) float64  { return r.OtherGases }
