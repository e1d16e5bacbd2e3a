package alerts

import (
	"fmt"

	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// ThresholdConfig holds the alert limits for every sensor. Zero values
// are replaced by defaults when loaded through the settings provider.
type ThresholdConfig struct {
	TempMax        float64 `yaml:"temp_max" json:"temp_max"`
	TempMin        float64 `yaml:"temp_min" json:"temp_min"`
	TempWarningMax float64 `yaml:"temp_warning_max" json:"temp_warning_max"`
	TempWarningMin float64 `yaml:"temp_warning_min" json:"temp_warning_min"`

	HumidityMax        float64 `yaml:"humidity_max" json:"humidity_max"`
	HumidityMin        float64 `yaml:"humidity_min" json:"humidity_min"`
	HumidityWarningMax float64 `yaml:"humidity_warning_max" json:"humidity_warning_max"`
	HumidityWarningMin float64 `yaml:"humidity_warning_min" json:"humidity_warning_min"`

	MethaneCritical float64 `yaml:"methane_critical" json:"methane_critical"`
	MethaneWarning  float64 `yaml:"methane_warning" json:"methane_warning"`

	GasCritical float64 `yaml:"other_gases_critical" json:"other_gases_critical"`
	GasWarning  float64 `yaml:"other_gases_warning" json:"other_gases_warning"`

	ExhaustFanTrigger float64 `yaml:"exhaust_fan_trigger" json:"exhaust_fan_trigger"`
}

// DefaultThresholds returns the compiled-in fallback limits.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		TempMax:            35.0,
		TempMin:            15.0,
		TempWarningMax:     32.0,
		TempWarningMin:     18.0,
		HumidityMax:        80.0,
		HumidityMin:        40.0,
		HumidityWarningMax: 75.0,
		HumidityWarningMin: 45.0,
		MethaneCritical:    300,
		MethaneWarning:     200,
		GasCritical:        400,
		GasWarning:         300,
		ExhaustFanTrigger:  200,
	}
}

// ExhaustFanOn reports whether the exhaust fan should run for the
// given methane level.
func (c ThresholdConfig) ExhaustFanOn(methane float64) bool {
	return methane >= c.ExhaustFanTrigger
}

// Evaluate checks a reading against the configured thresholds and
// returns at most one alert per sensor, critical taking precedence
// over warning. Severity checks run high before low. The returned
// alerts carry sensor, severity, value, threshold and message; the
// caller assigns IDs and timestamps.
func Evaluate(reading readings.Reading, cfg ThresholdConfig) []Alert {
	var result []Alert
	if alert := checkTemperature(reading.Temperature, cfg); alert != nil {
		result = append(result, *alert)
	}
	if alert := checkHumidity(reading.Humidity, cfg); alert != nil {
		result = append(result, *alert)
	}
	if alert := checkMethane(reading.Methane, cfg); alert != nil {
		result = append(result, *alert)
	}
	if alert := checkOtherGases(reading.OtherGases, cfg); alert != nil {
		result = append(result, *alert)
	}
	for i := range result {
		result[i].SensorID = reading.SensorID
	}
	return result
}

func checkTemperature(value float64, cfg ThresholdConfig) *Alert {
	switch {
	case value > cfg.TempMax:
		return breach(SensorTemperature, SeverityCritical, value, cfg.TempMax,
			fmt.Sprintf("CRITICAL: Temperature too high (%g°C exceeds %g°C)", value, cfg.TempMax))
	case value < cfg.TempMin:
		return breach(SensorTemperature, SeverityCritical, value, cfg.TempMin,
			fmt.Sprintf("CRITICAL: Temperature too low (%g°C below %g°C)", value, cfg.TempMin))
	case value > cfg.TempWarningMax:
		return breach(SensorTemperature, SeverityWarning, value, cfg.TempWarningMax,
			fmt.Sprintf("WARNING: Temperature high (%g°C exceeds %g°C)", value, cfg.TempWarningMax))
	case value < cfg.TempWarningMin:
		return breach(SensorTemperature, SeverityWarning, value, cfg.TempWarningMin,
			fmt.Sprintf("WARNING: Temperature low (%g°C below %g°C)", value, cfg.TempWarningMin))
	}
	return nil
}

func checkHumidity(value float64, cfg ThresholdConfig) *Alert {
	switch {
	case value > cfg.HumidityMax:
		return breach(SensorHumidity, SeverityCritical, value, cfg.HumidityMax,
			fmt.Sprintf("CRITICAL: Humidity too high (%g%% exceeds %g%%)", value, cfg.HumidityMax))
	case value < cfg.HumidityMin:
		return breach(SensorHumidity, SeverityCritical, value, cfg.HumidityMin,
			fmt.Sprintf("CRITICAL: Humidity too low (%g%% below %g%%)", value, cfg.HumidityMin))
	case value > cfg.HumidityWarningMax:
		return breach(SensorHumidity, SeverityWarning, value, cfg.HumidityWarningMax,
			fmt.Sprintf("WARNING: Humidity high (%g%% exceeds %g%%)", value, cfg.HumidityWarningMax))
	case value < cfg.HumidityWarningMin:
		return breach(SensorHumidity, SeverityWarning, value, cfg.HumidityWarningMin,
			fmt.Sprintf("WARNING: Humidity low (%g%% below %g%%)", value, cfg.HumidityWarningMin))
	}
	return nil
}

func checkMethane(value float64, cfg ThresholdConfig) *Alert {
	switch {
	case value > cfg.MethaneCritical:
		return breach(SensorMethane, SeverityCritical, value, cfg.MethaneCritical,
			fmt.Sprintf("CRITICAL: Methane level too high (%g ppm exceeds %g ppm)", value, cfg.MethaneCritical))
	case value > cfg.MethaneWarning:
		return breach(SensorMethane, SeverityWarning, value, cfg.MethaneWarning,
			fmt.Sprintf("WARNING: Methane level elevated (%g ppm exceeds %g ppm)", value, cfg.MethaneWarning))
	}
	return nil
}

func checkOtherGases(value float64, cfg ThresholdConfig) *Alert {
	switch {
	case value > cfg.GasCritical:
		return breach(SensorOtherGases, SeverityCritical, value, cfg.GasCritical,
			fmt.Sprintf("CRITICAL: Other gases level too high (%g exceeds %g)", value, cfg.GasCritical))
	case value > cfg.GasWarning:
		return breach(SensorOtherGases, SeverityWarning, value, cfg.GasWarning,
			fmt.Sprintf("WARNING: Other gases level elevated (%g exceeds %g)", value, cfg.GasWarning))
	}
	return nil
}

func breach(sensor Sensor, severity Severity, value, threshold float64, message string) *Alert {
	return &Alert{
		Sensor:    sensor,
		Severity:  severity,
		Value:     value,
		Threshold: threshold,
		Message:   message,
	}
}
