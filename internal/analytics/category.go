// Package analytics turns fact rows into grouped summaries for the
// dashboard views. Every function is pure: identical inputs give
// identical, reproducibly ordered outputs.
package analytics

import (
	"sort"
	"strconv"

	"koksgladje/internal/facts"
)

// CategoryTotal is one category's summed sales.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total_sek"`
}

// FillLineTotals returns a copy of items where every missing total price
// has been derived as quantity × unit price. Items that already carry a
// total keep it untouched, so running this more than once changes nothing.
func FillLineTotals(items []facts.LineItem) []facts.LineItem {
	out := make([]facts.LineItem, len(items))
	for i, li := range items {
		if li.TotalPrice == nil {
			total := li.Quantity * li.UnitPrice
			li.TotalPrice = &total
		}
		out[i] = li
	}
	return out
}

// SalesByCategory left-joins line items to products on product id and sums
// total price per resolved category, descending. Items with no matching
// product keep an empty category label, which still forms a group.
func SalesByCategory(items []facts.LineItem, products []facts.Product) []CategoryTotal {
	categoryOf := make(map[int64]string, len(products))
	for _, p := range products {
		categoryOf[p.ProductID] = p.Category
	}

	items = FillLineTotals(items)

	totals := make(map[string]float64)
	var order []string
	for _, li := range items {
		category := categoryOf[li.ProductID]
		if _, seen := totals[category]; !seen {
			order = append(order, category)
		}
		totals[category] += *li.TotalPrice
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, category := range order {
		out = append(out, CategoryTotal{Category: category, Total: totals[category]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })

	return out
}

// storeLabel resolves a store id to its display name, falling back to the
// raw id when no master data matches.
func storeLabel(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return strconv.FormatInt(id, 10)
}

func storeNames(stores []facts.Store) map[int64]string {
	names := make(map[int64]string, len(stores))
	for _, s := range stores {
		names[s.StoreID] = s.StoreName
	}
	return names
}
