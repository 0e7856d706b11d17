// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import "strings"

// The service runs on its own calendar: ten named months of 24 days.
const (
	DaysPerMonth  = 24
	MonthsPerYear = 10
	DaysPerYear   = DaysPerMonth * MonthsPerYear
)

// Months lists the service calendar months in order.
var Months = [MonthsPerYear]string{
	"Frostmere", "Emberfall", "Lunaris", "Verdantia", "Solstice",
	"Duskveil", "Starshade", "Aurorath", "Mysthaven", "Eclipsion",
}

// MonthIndex returns the zero-based position of a month name.
// Matching ignores case and surrounding whitespace.
func MonthIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, m := range Months {
		if strings.EqualFold(m, name) {
			return i, true
		}
	}
	return 0, false
}

// ServiceDate is a date on the service calendar. Day is 1-based; zero means
// the record had no day of month.
type ServiceDate struct {
	Year  int    `json:"year"`
	Month string `json:"month"`
	Day   int    `json:"day,omitempty"`
}

// Tick converts the date to a monotonically increasing day count, the unit
// used by the fallback recency windows. Unknown months count as the first
// month and a missing day as the first day.
func (d ServiceDate) Tick() int {
	month, _ := MonthIndex(d.Month)
	day := d.Day
	if day < 1 {
		day = 1
	}
	return d.Year*DaysPerYear + month*DaysPerMonth + (day - 1)
}
