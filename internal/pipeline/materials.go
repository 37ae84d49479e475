package pipeline

import (
	"slices"

	"bridgedash/internal/models"
)

// MaterialCount is how many records use one main span material.
type MaterialCount struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

// MaterialFrequency lists materials by descending count.
type MaterialFrequency []MaterialCount

// MaterialShare is a retained material with its share of the retained total.
type MaterialShare struct {
	Material string  `json:"material"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// TopMaterials counts MainSpanMaterial over every record, missing values
// excluded, and keeps the k most frequent. Equal counts keep the order in
// which the materials were first seen. Zero-traffic records are counted.
//
// TopMaterials panics if k <= 0.
func TopMaterials(table *models.BridgeTable, k int) MaterialFrequency {
	checkLimit("TopMaterials", k)

	index := make(map[string]int)
	var freq MaterialFrequency
	for _, r := range table.Records() {
		if r.MainSpanMaterial == "" {
			continue
		}
		i, ok := index[r.MainSpanMaterial]
		if !ok {
			i = len(freq)
			index[r.MainSpanMaterial] = i
			freq = append(freq, MaterialCount{Material: r.MainSpanMaterial})
		}
		freq[i].Count++
	}

	slices.SortStableFunc(freq, func(a, b MaterialCount) int {
		return b.Count - a.Count
	})
	if len(freq) > k {
		freq = freq[:k]
	}
	if freq == nil {
		freq = MaterialFrequency{}
	}
	return freq
}

// Total sums the retained counts.
func (f MaterialFrequency) Total() int {
	total := 0
	for _, m := range f {
		total += m.Count
	}
	return total
}

// Shares converts counts to percentages of the retained total, not of the
// whole table, so the shares of a non-empty frequency always sum to 100.
func (f MaterialFrequency) Shares() []MaterialShare {
	total := f.Total()
	shares := make([]MaterialShare, 0, len(f))
	for _, m := range f {
		pct := 0.0
		if total > 0 {
			pct = float64(m.Count) / float64(total) * 100
		}
		shares = append(shares, MaterialShare{
			Material: m.Material,
			Count:    m.Count,
			Percent:  pct,
		})
	}
	return shares
}
