package analytics

import (
	"sort"

	"koksgladje/internal/facts"
)

// Heatmap window bounds.
const (
	MinGridMonths = 3
	MaxGridMonths = 24
)

// Grid is a dense store×month matrix of summed sales. Months are the most
// recent k calendar months present in the data, chronological; every
// (store, month) cell is filled, missing combinations with zero.
type Grid struct {
	Months []string  `json:"months"`
	Rows   []GridRow `json:"rows"`
}

// GridRow is one store's sales across the grid months.
type GridRow struct {
	Store  string    `json:"store"`
	Values []float64 `json:"values"`
}

// StoreMonthGrid sums total amount by (store, month) over the last months
// calendar months in the data. The store label is the resolved store name,
// falling back to the raw id; months is clamped to [3, 24].
func StoreMonthGrid(txs []facts.Transaction, stores []facts.Store, months int) Grid {
	if months < MinGridMonths {
		months = MinGridMonths
	}
	if months > MaxGridMonths {
		months = MaxGridMonths
	}

	all := Months(txs)
	if len(all) > months {
		all = all[len(all)-months:]
	}
	window := make(map[string]bool, len(all))
	for _, ym := range all {
		window[ym] = true
	}

	names := storeNames(stores)

	totals := make(map[string]map[string]float64)
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		ym := YearMonth(*tx.Date)
		if !window[ym] {
			continue
		}
		label := storeLabel(names, tx.StoreID)
		if totals[label] == nil {
			totals[label] = make(map[string]float64)
		}
		totals[label][ym] += tx.TotalAmount
	}

	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]GridRow, 0, len(labels))
	for _, label := range labels {
		values := make([]float64, len(all))
		for i, ym := range all {
			values[i] = totals[label][ym]
		}
		rows = append(rows, GridRow{Store: label, Values: values})
	}

	return Grid{Months: all, Rows: rows}
}
