// Package pipeline ranks and filters the bridge table for the dashboard views.
//
// Every function here is pure: it reads the table, builds a fresh result and
// never mutates its input. Calling one twice with the same arguments yields
// the same output.
package pipeline

import (
	"fmt"
	"slices"

	"bridgedash/internal/models"
)

const (
	// BarLimit is the number of bridges ranked for the bar view.
	BarLimit = 20

	// DefaultMaterials is how many materials the pie view keeps.
	DefaultMaterials = 6
)

// RankedSubset is a ranked, filtered copy of some of the table's records.
type RankedSubset []models.BridgeRecord

// TopByTraffic returns up to n records with the largest average daily
// traffic, in descending order. Records without a numeric traffic value are
// not ranked. Zero-traffic records and records missing the state name or
// structure number are dropped after ranking, so fewer than n may remain.
// Tied values keep their table order.
//
// TopByTraffic panics if n <= 0.
func TopByTraffic(table *models.BridgeTable, n int) RankedSubset {
	checkLimit("TopByTraffic", n)
	top := rank(table, n, nil)
	return filter(top, func(r models.BridgeRecord) bool {
		return r.AverageDailyTraffic.Value != 0 &&
			r.StateName != "" &&
			r.StructureNumber != ""
	})
}

// TopByTrafficWithCoordinates is like TopByTraffic but ranks only records
// with both latitude and longitude. The coordinate filter runs before
// ranking; the zero-traffic filter runs after it.
//
// TopByTrafficWithCoordinates panics if n <= 0.
func TopByTrafficWithCoordinates(table *models.BridgeTable, n int) RankedSubset {
	checkLimit("TopByTrafficWithCoordinates", n)
	top := rank(table, n, models.BridgeRecord.HasCoordinates)
	return filter(top, func(r models.BridgeRecord) bool {
		return r.AverageDailyTraffic.Value != 0
	})
}

// rank keeps records with valid traffic that satisfy keep (if non-nil),
// stable-sorts them by descending traffic and returns the first n.
func rank(table *models.BridgeTable, n int, keep func(models.BridgeRecord) bool) RankedSubset {
	candidates := make(RankedSubset, 0, table.Len())
	for _, r := range table.Records() {
		if !r.AverageDailyTraffic.Valid {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		candidates = append(candidates, r)
	}
	slices.SortStableFunc(candidates, func(a, b models.BridgeRecord) int {
		switch {
		case a.AverageDailyTraffic.Value > b.AverageDailyTraffic.Value:
			return -1
		case a.AverageDailyTraffic.Value < b.AverageDailyTraffic.Value:
			return 1
		}
		return 0
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func filter(rs RankedSubset, keep func(models.BridgeRecord) bool) RankedSubset {
	out := make(RankedSubset, 0, len(rs))
	for _, r := range rs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func checkLimit(op string, n int) {
	if n <= 0 {
		panic(fmt.Sprintf("pipeline: %s called with non-positive limit %d", op, n))
	}
}
