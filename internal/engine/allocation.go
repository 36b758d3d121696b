package engine

import (
	"strconv"
	"strings"
)

// allocationTolerance is the maximum drift between the share sum and the
// configured total before rescaling kicks in.
const allocationTolerance = 1e-6

// ParseAllocation parses the "NAME:UNITS,NAME:UNITS" allocation string form.
// Malformed entries (no colon, empty name, non-numeric value) are skipped
// rather than rejected; an unusable allocation falls back to the default
// agent in NormalizeAllocation.
func ParseAllocation(raw string) map[string]float64 {
	parsed := make(map[string]float64)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" || !strings.Contains(entry, ":") {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		parsed[name] = value
	}
	return parsed
}

// NormalizeAllocation returns an allocation whose shares sum to totalUnits
// (within allocationTolerance). An empty allocation assigns everything to
// defaultAgent. A non-positive sum zeroes all shares and assigns everything
// to defaultAgent. Otherwise shares are rescaled proportionally. The input
// map is never mutated.
func NormalizeAllocation(shares map[string]float64, totalUnits float64, defaultAgent string) map[string]float64 {
	normalized := make(map[string]float64, len(shares)+1)
	for name, units := range shares {
		normalized[name] = units
	}
	if len(normalized) == 0 {
		normalized[defaultAgent] = totalUnits
		return normalized
	}

	var sum float64
	for _, units := range normalized {
		sum += units
	}
	if sum <= 0 {
		for name := range normalized {
			normalized[name] = 0
		}
		normalized[defaultAgent] = totalUnits
		return normalized
	}
	if diff := sum - totalUnits; diff > allocationTolerance || diff < -allocationTolerance {
		scale := totalUnits / sum
		for name, units := range normalized {
			normalized[name] = units * scale
		}
	}
	return normalized
}
