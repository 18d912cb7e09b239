package scaler

import (
	"fmt"
	"math"
	"time"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// RiegelExponent is the fatigue exponent used to project race times across
// distances.
const RiegelExponent = 1.06

// defaultEasy is the easy pace in seconds per mile used when no goal time is
// known.
var defaultEasy = map[domain.Tier]float64{
	domain.TierBuilder: 630,
	domain.TierLow:     600,
	domain.TierMid:     540,
	domain.TierHigh:    480,
}

// zone offsets relative to marathon pace.
const (
	easyFactor     = 1.18
	recoveryFactor = 1.25
	longFactor     = 1.12
	steadyFactor   = 1.05
)

// Paces holds seconds-per-mile for every zone.
type Paces struct {
	marathon float64
	race     float64
}

// NewPaces derives training paces from the goal race time, or from the
// tier's default easy pace when goal is zero.
func NewPaces(d domain.Distance, t domain.Tier, goal time.Duration) (Paces, error) {
	if !d.Valid() {
		return Paces{}, fmt.Errorf("%w: unknown distance %q", domain.ErrInvalidInput, d)
	}
	if goal > 0 {
		raceSec := goal.Seconds()
		marathon := Riegel(raceSec, d.Miles(), domain.DistanceMarathon.Miles())
		return Paces{
			marathon: marathon / domain.DistanceMarathon.Miles(),
			race:     raceSec / d.Miles(),
		}, nil
	}
	easy, ok := defaultEasy[t]
	if !ok {
		return Paces{}, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, t)
	}
	p := Paces{marathon: easy / easyFactor}
	p.race = p.at(d.Miles())
	return p, nil
}

// Riegel projects a time in seconds over fromMiles to toMiles.
func Riegel(sec, fromMiles, toMiles float64) float64 {
	return sec * math.Pow(toMiles/fromMiles, RiegelExponent)
}

// at is the projected race pace over miles.
func (p Paces) at(miles float64) float64 {
	m := domain.DistanceMarathon.Miles()
	return Riegel(p.marathon*m, m, miles) / miles
}

// SecPerMile returns the pace for zone in seconds per mile.
func (p Paces) SecPerMile(z domain.PaceZone) float64 {
	switch z {
	case domain.PaceEasy:
		return p.marathon * easyFactor
	case domain.PaceRecovery:
		return p.marathon * recoveryFactor
	case domain.PaceLong:
		return p.marathon * longFactor
	case domain.PaceSteady:
		return p.marathon * steadyFactor
	case domain.PaceMarathon:
		return p.marathon
	case domain.PaceThreshold:
		// roughly one-hour race pace
		return p.at(9.3)
	case domain.PaceInterval:
		return p.at(domain.Distance5K.Miles())
	case domain.PaceRepetition:
		return p.at(1)
	case domain.PaceRace:
		return p.race
	}
	return p.marathon * easyFactor
}

// Format returns the zone pace as m:ss/mi.
func (p Paces) Format(z domain.PaceZone) string {
	return FormatPace(p.SecPerMile(z))
}

// FormatPace renders seconds per mile as m:ss/mi.
func FormatPace(secPerMile float64) string {
	if secPerMile <= 0 {
		return "-"
	}
	total := int(math.Round(secPerMile))
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d/mi", m, s)
}

// FormatDuration renders minutes as h:mm.
func FormatDuration(minutes float64) string {
	m := int64(math.Round(minutes))
	h := m / 60
	m = m % 60
	return fmt.Sprintf("%d:%02d", h, m)
}

// Minutes is the time to cover miles at zone pace.
func (p Paces) Minutes(z domain.PaceZone, miles float64) float64 {
	return miles * p.SecPerMile(z) / 60
}

// Miles is the distance covered in minutes at zone pace.
func (p Paces) Miles(z domain.PaceZone, minutes float64) float64 {
	sec := p.SecPerMile(z)
	if sec <= 0 {
		return 0
	}
	return minutes * 60 / sec
}
