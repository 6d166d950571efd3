package report

import (
	"github.com/lox/forecastview/internal/models"
)

// Condition categorizes a forecast day.
type Condition string

const (
	ConditionClearWarm    Condition = "clear_warm"
	ConditionClearCool    Condition = "clear_cool"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionMostlyCloudy Condition = "mostly_cloudy"
	ConditionLightRain    Condition = "light_rain"
	ConditionHeavyRain    Condition = "heavy_rain"
	ConditionFog          Condition = "fog"
	ConditionHot          Condition = "hot"
	ConditionFrost        Condition = "frost"
)

const (
	hotThresholdC   = 35
	frostThresholdC = 2
	warmThresholdC  = 25
	heavyRainMM     = 10
	lightRainMM     = 0.5
	fogVisibilityM  = 1000
	mostlyCloudyPct = 70
	partlyCloudyPct = 30
)

var conditionLabels = map[Condition]string{
	ConditionClearWarm:    "Clear and warm",
	ConditionClearCool:    "Clear",
	ConditionPartlyCloudy: "Partly cloudy",
	ConditionMostlyCloudy: "Mostly cloudy",
	ConditionLightRain:    "Showers",
	ConditionHeavyRain:    "Heavy rain",
	ConditionFog:          "Fog",
	ConditionHot:          "Hot",
	ConditionFrost:        "Frost",
}

func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return string(c)
}

// DayCondition picks a condition from a day summary. Temperature extremes
// take priority, then rain, fog and cloud cover.
func DayCondition(s models.DaySummary, unit models.TemperatureUnit) Condition {
	maxC := unit.ToCelsius(s.TempMax)
	minC := unit.ToCelsius(s.TempMin)

	if maxC >= hotThresholdC {
		return ConditionHot
	}
	if minC <= frostThresholdC {
		return ConditionFrost
	}

	if s.PrecipTotal >= heavyRainMM {
		return ConditionHeavyRain
	}
	if s.PrecipTotal >= lightRainMM {
		return ConditionLightRain
	}

	if len(s.Observations) > 0 && s.VisibilityMin < fogVisibilityM {
		return ConditionFog
	}

	clouds := meanCloudiness(s.Observations)
	if clouds >= mostlyCloudyPct {
		return ConditionMostlyCloudy
	}
	if clouds >= partlyCloudyPct {
		return ConditionPartlyCloudy
	}

	if maxC >= warmThresholdC {
		return ConditionClearWarm
	}
	return ConditionClearCool
}

func meanCloudiness(obs []models.Observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range obs {
		sum += o.Cloudiness
	}
	return sum / float64(len(obs))
}
