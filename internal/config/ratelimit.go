package config

import (
	"fmt"
	"math"
	"strconv"
)

// ParseRateLimit parses a github_rate_limit value: a positive number of
// requests per second.
func ParseRateLimit(value string) (float64, error) {
	rps, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(rps) || math.IsInf(rps, 0) || rps <= 0 {
		return 0, fmt.Errorf("invalid rate limit %q: must be a positive number", value)
	}
	return rps, nil
}

// RateBurst is the burst allowed for a rate limit: one second's worth of
// requests, at least one.
func RateBurst(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}
