// Package volume computes the week count, phase boundaries and per-week
// volume fractions (of peak) for a whole plan.
package volume

import (
	"fmt"
	"math"

	"github.com/Nmdk1/StrideIQ-sub003/internal/domain"
)

// peakMiles is the peak-week target in miles by distance and tier.
var peakMiles = map[domain.Distance]map[domain.Tier]float64{
	domain.Distance5K:       {domain.TierBuilder: 25, domain.TierLow: 30, domain.TierMid: 35, domain.TierHigh: 50},
	domain.Distance10K:      {domain.TierBuilder: 30, domain.TierLow: 35, domain.TierMid: 40, domain.TierHigh: 55},
	domain.DistanceHalf:     {domain.TierBuilder: 35, domain.TierLow: 40, domain.TierMid: 45, domain.TierHigh: 60},
	domain.DistanceMarathon: {domain.TierBuilder: 45, domain.TierLow: 50, domain.TierMid: 55, domain.TierHigh: 70},
}

// initialMiles is the week-one target before any athlete-specific scaling.
var initialMiles = map[domain.Distance]map[domain.Tier]float64{
	domain.Distance5K:       {domain.TierBuilder: 15, domain.TierLow: 18, domain.TierMid: 21, domain.TierHigh: 30},
	domain.Distance10K:      {domain.TierBuilder: 18, domain.TierLow: 21, domain.TierMid: 24, domain.TierHigh: 33},
	domain.DistanceHalf:     {domain.TierBuilder: 21, domain.TierLow: 24, domain.TierMid: 27, domain.TierHigh: 36},
	domain.DistanceMarathon: {domain.TierBuilder: 27, domain.TierLow: 30, domain.TierMid: 33, domain.TierHigh: 42},
}

// PeakVolume returns the peak-week mileage for distance and tier.
func PeakVolume(d domain.Distance, t domain.Tier) (float64, error) {
	return lookup(peakMiles, d, t)
}

// InitialVolume returns the default week-one mileage for distance and tier.
func InitialVolume(d domain.Distance, t domain.Tier) (float64, error) {
	return lookup(initialMiles, d, t)
}

func lookup(table map[domain.Distance]map[domain.Tier]float64, d domain.Distance, t domain.Tier) (float64, error) {
	byTier, ok := table[d]
	if !ok {
		return 0, fmt.Errorf("%w: unknown distance %q", domain.ErrInvalidInput, d)
	}
	v, ok := byTier[t]
	if !ok {
		return 0, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, t)
	}
	return v, nil
}

// TaperWeeks is one week for short races and two for half and marathon,
// shortened for fast adapters and lengthened for slow ones.
func TaperWeeks(d domain.Distance, tau1 float64) int {
	n := 2
	if d.IsShort() {
		n = 1
	}
	switch {
	case tau1 > 0 && tau1 < 30:
		n--
	case tau1 > 45:
		n++
	}
	return clamp(n, 1, 3)
}

// RecoveryFrequency is the number of loading weeks between recovery weeks.
func RecoveryFrequency(tau1 float64) int {
	switch {
	case tau1 > 0 && tau1 < 30:
		return 4
	case tau1 > 45:
		return 3
	}
	return 3
}

// MaxIncrease is the largest allowed week-over-week volume increase going
// from week to week+1.
func MaxIncrease(week int) float64 {
	if week <= 3 {
		return 0.15
	}
	return 0.10
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
