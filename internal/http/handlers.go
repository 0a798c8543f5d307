package http

import (
	"net/http"

	"koksgladje/internal/analytics"
	"koksgladje/internal/log"
)

// handleStatus reports row counts per fact table, the quickest sanity
// check that the data sources load and the volumes are plausible.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	items, err := s.data.LineItems(ctx)
	if err != nil {
		s.fail(w, r, "load line items", err)
		return
	}
	products, err := s.data.ProductsWithCategories(ctx)
	if err != nil {
		s.fail(w, r, "load products", err)
		return
	}
	txs, err := s.data.Transactions(ctx)
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	stores, err := s.data.Stores(ctx)
	if err != nil {
		s.fail(w, r, "load stores", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"transactiondetails": len(items),
		"products":           len(products),
		"transactions":       len(txs),
		"stores":             len(stores),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	categories, err := s.data.Categories(r.Context())
	if err != nil {
		s.fail(w, r, "load categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCategorySales(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	sales, err := s.data.SalesByCategory(r.Context())
	if err != nil {
		s.fail(w, r, "load category sales", err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleMonthlyCategorySales(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	monthly, err := s.data.MonthlySalesByCategory(r.Context())
	if err != nil {
		s.fail(w, r, "load monthly category sales", err)
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

// handleInsightCategories is the in-memory join variant of the category
// view: line items joined to products, summed per resolved category.
func (s *Server) handleInsightCategories(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	items, err := s.data.LineItems(ctx)
	if err != nil {
		s.fail(w, r, "load line items", err)
		return
	}
	products, err := s.data.ProductsWithCategories(ctx)
	if err != nil {
		s.fail(w, r, "load products", err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.SalesByCategory(items, products))
}

func (s *Server) handleInsightMonthly(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	txs, err := s.data.Transactions(r.Context())
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.MonthlySales(txs))
}

func (s *Server) handleInsightWeekdays(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	txs, err := s.data.Transactions(r.Context())
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.WeekdaySales(txs))
}

// handleHeatmap serves the store×month grid. The months parameter picks
// the window size; out-of-range values are clamped, not rejected.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	txs, err := s.data.Transactions(ctx)
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	stores, err := s.data.Stores(ctx)
	if err != nil {
		s.fail(w, r, "load stores", err)
		return
	}

	months := queryInt(r, "months", s.heatmapMonths)
	writeJSON(w, http.StatusOK, analytics.StoreMonthGrid(txs, stores, months))
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	items, err := s.data.LineItems(ctx)
	if err != nil {
		s.fail(w, r, "load line items", err)
		return
	}
	products, err := s.data.ProductsWithCategories(ctx)
	if err != nil {
		s.fail(w, r, "load products", err)
		return
	}

	limit := queryInt(r, "limit", analytics.TopChartSize)
	writeJSON(w, http.StatusOK, analytics.TopProducts(items, products, limit))
}

func (s *Server) handleProductTable(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	items, err := s.data.LineItems(ctx)
	if err != nil {
		s.fail(w, r, "load line items", err)
		return
	}
	products, err := s.data.ProductsWithCategories(ctx)
	if err != nil {
		s.fail(w, r, "load products", err)
		return
	}

	limit := queryInt(r, "limit", analytics.TopTableSize)
	writeJSON(w, http.StatusOK, analytics.ProductTable(items, products, limit))
}

// handleStoreSales sums sales per store, optionally filtered to one or
// more counties (?county=Skåne&county=Halland).
func (s *Server) handleStoreSales(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	txs, err := s.data.Transactions(ctx)
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	stores, err := s.data.Stores(ctx)
	if err != nil {
		s.fail(w, r, "load stores", err)
		return
	}

	counties := r.URL.Query()["county"]
	writeJSON(w, http.StatusOK, analytics.SalesByStore(txs, stores, counties))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	txs, err := s.data.Transactions(r.Context())
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Months(txs))
}

// monthSummary is the KPI view for one calendar month.
type monthSummary struct {
	Month        string                `json:"month"`
	Transactions int64                 `json:"transactions"`
	TotalSEK     float64               `json:"total_sek"`
	AvgOrderSEK  *float64              `json:"avg_order_sek"`
	TopCustomers []analytics.NameCount `json:"top_customers,omitempty"`
	TopStores    []analytics.NameCount `json:"top_stores,omitempty"`
	Daily        []analytics.DayTotal  `json:"daily"`
}

// handleMonthSummary serves the per-month KPIs: distinct transaction
// count, total sales, average order value, the most active customers
// (stores when no customer data exists) and the daily series. Defaults to
// the latest month present in the data.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	ctx := r.Context()

	txs, err := s.data.Transactions(ctx)
	if err != nil {
		s.fail(w, r, "load transactions", err)
		return
	}

	months := analytics.Months(txs)
	month := r.URL.Query().Get("month")
	if month == "" {
		if len(months) == 0 {
			writeJSON(w, http.StatusOK, monthSummary{Daily: []analytics.DayTotal{}})
			return
		}
		month = months[len(months)-1]
	}

	cur := analytics.FilterMonth(txs, month)

	summary := monthSummary{
		Month:        month,
		Transactions: analytics.DistinctTransactions(cur),
		TotalSEK:     analytics.TotalAmount(cur),
		Daily:        analytics.DailySales(cur),
	}
	if aov, ok := analytics.AverageOrderValue(cur); ok {
		summary.AvgOrderSEK = &aov
	}

	customers, err := s.data.Customers(ctx)
	if err != nil {
		s.fail(w, r, "load customers", err)
		return
	}
	if len(customers) > 0 {
		summary.TopCustomers = analytics.TopCustomers(cur, customers, analytics.TopChartSize)
	} else {
		stores, err := s.data.Stores(ctx)
		if err != nil {
			s.fail(w, r, "load stores", err)
			return
		}
		summary.TopStores = analytics.TopStores(cur, stores, analytics.TopChartSize)
	}

	writeJSON(w, http.StatusOK, summary)
}

// fail logs a structural failure and answers with a generic 500. Normal
// empty-result conditions never take this path.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldOperation, op, log.FieldError, err.Error())
	writeError(w, http.StatusInternalServerError, op+" failed")
}
