package readings

// AirQuality classifies combined gas levels for the dashboard.
type AirQuality string

const (
	AirQualityGood      AirQuality = "Good"
	AirQualityModerate  AirQuality = "Moderate"
	AirQualityPoor      AirQuality = "Poor"
	AirQualityHazardous AirQuality = "Hazardous"
)

// Air quality band limits for methane and other gases.
const (
	airQualityGoodMethane     = 100.0
	airQualityGoodGases       = 200.0
	airQualityModerateMethane = 200.0
	airQualityModerateGases   = 300.0
	airQualityPoorMethane     = 300.0
	airQualityPoorGases       = 400.0
)

// AirQualityFor bands methane and other gas levels into a status.
func AirQualityFor(methane, otherGases float64) AirQuality {
	switch {
	case methane < airQualityGoodMethane && otherGases < airQualityGoodGases:
		return AirQualityGood
	case methane < airQualityModerateMethane && otherGases < airQualityModerateGases:
		return AirQualityModerate
	case methane < airQualityPoorMethane && otherGases < airQualityPoorGases:
		return AirQualityPoor
	default:
		return AirQualityHazardous
	}
}
