package report

import (
	"math"
	"time"
)

// MoonPhase represents the lunar phase on a given day.
type MoonPhase string

const (
	MoonNew            MoonPhase = "new"
	MoonWaxingCrescent MoonPhase = "waxing_crescent"
	MoonFirstQuarter   MoonPhase = "first_quarter"
	MoonWaxingGibbous  MoonPhase = "waxing_gibbous"
	MoonFull           MoonPhase = "full"
	MoonWaningGibbous  MoonPhase = "waning_gibbous"
	MoonLastQuarter    MoonPhase = "last_quarter"
	MoonWaningCrescent MoonPhase = "waning_crescent"
)

const lunarCycle = 29.53

// reference new moon: January 6, 2000 18:14 UTC
var referenceNewMoon = time.Date(2000, 1, 6, 18, 14, 0, 0, time.UTC)

var moonPhases = []MoonPhase{
	MoonNew, MoonWaxingCrescent, MoonFirstQuarter, MoonWaxingGibbous,
	MoonFull, MoonWaningGibbous, MoonLastQuarter, MoonWaningCrescent,
}

var moonNames = map[MoonPhase]string{
	MoonNew:            "New Moon",
	MoonWaxingCrescent: "Waxing Crescent",
	MoonFirstQuarter:   "First Quarter",
	MoonWaxingGibbous:  "Waxing Gibbous",
	MoonFull:           "Full Moon",
	MoonWaningGibbous:  "Waning Gibbous",
	MoonLastQuarter:    "Last Quarter",
	MoonWaningCrescent: "Waning Crescent",
}

// Moon is the moon phase shown on the day view.
type Moon struct {
	Phase        MoonPhase
	Name         string
	Illumination int // 0-100
}

func cyclePosition(t time.Time) float64 {
	days := t.Sub(referenceNewMoon).Hours() / 24
	pos := math.Mod(days, lunarCycle)
	if pos < 0 {
		pos += lunarCycle
	}
	return pos
}

// MoonOn approximates the moon phase and illumination at t.
func MoonOn(t time.Time) Moon {
	pos := cyclePosition(t)
	phase := moonPhases[int(pos/lunarCycle*8)%8]
	angle := pos / lunarCycle * 2 * math.Pi
	return Moon{
		Phase:        phase,
		Name:         moonNames[phase],
		Illumination: int((1 - math.Cos(angle)) / 2 * 100),
	}
}
