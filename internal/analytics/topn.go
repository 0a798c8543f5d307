package analytics

import (
	"sort"
	"strconv"

	"koksgladje/internal/facts"
)

// Default truncation sizes for the top-N views.
const (
	TopChartSize = 10
	TopTableSize = 20
)

// NameTotal is one entity's summed sales, used by the top-N charts.
type NameTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total_sek"`
}

// NameCount is one entity's distinct-transaction count.
type NameCount struct {
	Name         string `json:"name"`
	Transactions int64  `json:"transactions"`
}

// ProductRow is one row of the top-products table: quantity and sales.
type ProductRow struct {
	Name  string  `json:"name"`
	Qty   float64 `json:"qty"`
	Sales float64 `json:"sales_sek"`
}

// StoreSales is one store's summed sales with its county.
type StoreSales struct {
	Store  string  `json:"store"`
	County string  `json:"county"`
	Total  float64 `json:"total_sek"`
}

// TopProducts sums total price per product name and keeps the n best
// sellers, descending. Ties keep the items' first-seen order, so repeated
// runs on identical input truncate identically.
func TopProducts(items []facts.LineItem, products []facts.Product, n int) []NameTotal {
	nameOf := make(map[int64]string, len(products))
	for _, p := range products {
		nameOf[p.ProductID] = p.ProductName
	}

	items = FillLineTotals(items)

	totals := make(map[string]float64)
	var order []string
	for _, li := range items {
		name := nameOf[li.ProductID]
		if name == "" {
			name = strconv.FormatInt(li.ProductID, 10)
		}
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] += *li.TotalPrice
	}

	out := make([]NameTotal, 0, len(order))
	for _, name := range order {
		out = append(out, NameTotal{Name: name, Total: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })

	return truncate(out, n)
}

// ProductTable builds the tabular top-N: quantity and sales per product,
// sorted by sales descending.
func ProductTable(items []facts.LineItem, products []facts.Product, n int) []ProductRow {
	nameOf := make(map[int64]string, len(products))
	for _, p := range products {
		nameOf[p.ProductID] = p.ProductName
	}

	items = FillLineTotals(items)

	type agg struct {
		qty   float64
		sales float64
	}
	totals := make(map[string]*agg)
	var order []string
	for _, li := range items {
		name := nameOf[li.ProductID]
		if name == "" {
			name = strconv.FormatInt(li.ProductID, 10)
		}
		a, seen := totals[name]
		if !seen {
			a = &agg{}
			totals[name] = a
			order = append(order, name)
		}
		a.qty += li.Quantity
		a.sales += *li.TotalPrice
	}

	out := make([]ProductRow, 0, len(order))
	for _, name := range order {
		out = append(out, ProductRow{Name: name, Qty: totals[name].qty, Sales: totals[name].sales})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sales > out[j].Sales })

	return truncate(out, n)
}

// TopCustomers counts distinct transactions per customer and keeps the n
// most active, descending. Transactions without resolvable customer master
// data group under an empty label rather than being dropped.
func TopCustomers(txs []facts.Transaction, customers []facts.Customer, n int) []NameCount {
	nameOf := make(map[int64]string, len(customers))
	for _, c := range customers {
		nameOf[c.CustomerID] = c.CustomerName
	}

	key := func(tx facts.Transaction) string {
		if tx.CustomerID == nil {
			return ""
		}
		return nameOf[*tx.CustomerID]
	}
	return topByDistinctTransactions(txs, key, n)
}

// TopStores counts distinct transactions per store, falling back to the
// raw store id when no master data matches.
func TopStores(txs []facts.Transaction, stores []facts.Store, n int) []NameCount {
	names := storeNames(stores)
	key := func(tx facts.Transaction) string {
		return storeLabel(names, tx.StoreID)
	}
	return topByDistinctTransactions(txs, key, n)
}

// SalesByStore sums total amount per store, descending. When counties is
// non-empty only stores in those counties are included.
func SalesByStore(txs []facts.Transaction, stores []facts.Store, counties []string) []StoreSales {
	type master struct {
		name   string
		county string
	}
	byID := make(map[int64]master, len(stores))
	for _, s := range stores {
		byID[s.StoreID] = master{name: s.StoreName, county: s.County}
	}

	wanted := make(map[string]bool, len(counties))
	for _, c := range counties {
		wanted[c] = true
	}

	type agg struct {
		county string
		total  float64
	}
	totals := make(map[string]*agg)
	var order []string
	for _, tx := range txs {
		m := byID[tx.StoreID]
		if len(wanted) > 0 && !wanted[m.county] {
			continue
		}
		label := m.name
		if label == "" {
			label = strconv.FormatInt(tx.StoreID, 10)
		}
		a, seen := totals[label]
		if !seen {
			a = &agg{county: m.county}
			totals[label] = a
			order = append(order, label)
		}
		a.total += tx.TotalAmount
	}

	out := make([]StoreSales, 0, len(order))
	for _, label := range order {
		out = append(out, StoreSales{Store: label, County: totals[label].county, Total: totals[label].total})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })

	return out
}

func topByDistinctTransactions(txs []facts.Transaction, key func(facts.Transaction) string, n int) []NameCount {
	distinct := make(map[string]map[int64]bool)
	var order []string
	for _, tx := range txs {
		k := key(tx)
		if distinct[k] == nil {
			distinct[k] = make(map[int64]bool)
			order = append(order, k)
		}
		distinct[k][tx.TransactionID] = true
	}

	out := make([]NameCount, 0, len(order))
	for _, k := range order {
		out = append(out, NameCount{Name: k, Transactions: int64(len(distinct[k]))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Transactions > out[j].Transactions })

	return truncate(out, n)
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
