package analytics

import (
	"sort"
	"time"

	"koksgladje/internal/facts"
)

// MonthTotal is summed sales for one calendar month ("YYYY-MM").
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total_sek"`
}

// WeekdayTotal is summed sales for one weekday.
type WeekdayTotal struct {
	Weekday string  `json:"weekday"`
	Total   float64 `json:"total_sek"`
}

// DayTotal is summed sales for one calendar day ("YYYY-MM-DD").
type DayTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total_sek"`
}

// weekdayLabels is the fixed display order, Monday first.
var weekdayLabels = [7]string{"Mån", "Tis", "Ons", "Tor", "Fre", "Lör", "Sön"}

// YearMonth formats a date as its calendar month bucket.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}

// MonthlySales sums total amount per calendar month, chronologically.
// Transactions without a parseable date are dropped first.
func MonthlySales(txs []facts.Transaction) []MonthTotal {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		totals[YearMonth(*tx.Date)] += tx.TotalAmount
	}

	months := make([]string, 0, len(totals))
	for ym := range totals {
		months = append(months, ym)
	}
	// "YYYY-MM" sorts chronologically by construction
	sort.Strings(months)

	out := make([]MonthTotal, 0, len(months))
	for _, ym := range months {
		out = append(out, MonthTotal{Month: ym, Total: totals[ym]})
	}
	return out
}

// WeekdaySales sums total amount per weekday. All seven buckets are always
// present in Monday-first order; weekdays with no transactions hold zero.
func WeekdaySales(txs []facts.Transaction) []WeekdayTotal {
	var totals [7]float64
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		// time.Weekday counts Sunday as 0; shift so Monday is 0.
		idx := (int(tx.Date.Weekday()) + 6) % 7
		totals[idx] += tx.TotalAmount
	}

	out := make([]WeekdayTotal, 7)
	for i, label := range weekdayLabels {
		out[i] = WeekdayTotal{Weekday: label, Total: totals[i]}
	}
	return out
}

// DailySales sums total amount per calendar day, chronologically.
func DailySales(txs []facts.Transaction) []DayTotal {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		totals[tx.Date.Format("2006-01-02")] += tx.TotalAmount
	}

	days := make([]string, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]DayTotal, 0, len(days))
	for _, d := range days {
		out = append(out, DayTotal{Date: d, Total: totals[d]})
	}
	return out
}

// Months lists the distinct calendar months present in the data,
// chronologically.
func Months(txs []facts.Transaction) []string {
	seen := make(map[string]bool)
	var months []string
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		ym := YearMonth(*tx.Date)
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	sort.Strings(months)
	return months
}

// FilterMonth keeps the transactions dated within one calendar month.
func FilterMonth(txs []facts.Transaction, ym string) []facts.Transaction {
	out := []facts.Transaction{}
	for _, tx := range txs {
		if tx.Date != nil && YearMonth(*tx.Date) == ym {
			out = append(out, tx)
		}
	}
	return out
}

// DistinctTransactions counts the distinct transaction ids in the set.
func DistinctTransactions(txs []facts.Transaction) int64 {
	distinct := make(map[int64]bool)
	for _, tx := range txs {
		distinct[tx.TransactionID] = true
	}
	return int64(len(distinct))
}

// TotalAmount sums the transaction totals.
func TotalAmount(txs []facts.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.TotalAmount
	}
	return total
}

// AverageOrderValue divides summed total amount by the number of distinct
// transaction ids. The second return is false when the set is empty, so
// an empty month is undefined rather than a division error.
func AverageOrderValue(txs []facts.Transaction) (float64, bool) {
	distinct := make(map[int64]bool)
	var total float64
	for _, tx := range txs {
		distinct[tx.TransactionID] = true
		total += tx.TotalAmount
	}
	if len(distinct) == 0 {
		return 0, false
	}
	return total / float64(len(distinct)), true
}
