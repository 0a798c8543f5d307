// Package facts exposes the analysis-ready views of the sales database.
//
// Every accessor wraps one fixed query, memoizes the whole result for a
// bounded time, and presents a stable lower-case column schema no matter
// how the backing store names its columns.
package facts

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"koksgladje/internal/cache"
)

// Accessor cache keys.
const (
	KeyTransactions         = "transactions"
	KeyLineItems            = "details"
	KeyProducts             = "products_with_categories"
	KeyStores               = "stores"
	KeyCustomers            = "customers"
	KeyCategories           = "categories"
	KeySalesByCategory      = "sales_by_category"
	KeyMonthlyCategorySales = "monthly_sales_by_category"
)

// Querier is the slice of the storage layer the accessors need.
type Querier interface {
	Select(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error
	HasTable(ctx context.Context, name string) (bool, error)
}

// Repository owns the fact accessors and their shared result cache.
type Repository struct {
	db    Querier
	cache *cache.Store[any]
	group singleflight.Group
}

// NewRepository creates a Repository caching each accessor result for ttl.
func NewRepository(db Querier, ttl time.Duration) *Repository {
	return &Repository{
		db:    db,
		cache: cache.New[any](ttl),
	}
}

// Invalidate drops one accessor's cached result, forcing the next call to
// re-query storage.
func (r *Repository) Invalidate(key string) {
	r.cache.Invalidate(key)
}

// InvalidateAll drops every cached accessor result.
func (r *Repository) InvalidateAll() {
	r.cache.InvalidateAll()
}

// cached serves key from the cache or recomputes it via fetch. Concurrent
// callers for the same key share a single recompute.
func cached[T any](ctx context.Context, r *Repository, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := r.cache.Get(key); ok {
		return v.(T), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// Another caller may have refreshed while we waited for the flight.
		if v, ok := r.cache.Get(key); ok {
			return v, nil
		}

		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		r.cache.Set(key, data)
		slog.DebugContext(ctx, "Fact accessor refreshed", "accessor", key)
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Transactions returns all transactions ordered by date.
func (r *Repository) Transactions(ctx context.Context) ([]Transaction, error) {
	return cached(ctx, r, KeyTransactions, func(ctx context.Context) ([]Transaction, error) {
		out := []Transaction{}
		err := r.db.Select(ctx, `
			SELECT
				t.TransactionID   AS transactionid,
				t.StoreID         AS storeid,
				t.CustomerID      AS customerid,
				t.TransactionDate AS date,
				t.TotalAmount     AS totalamount
			FROM Transactions t
			ORDER BY t.TransactionDate
		`, nil, func(rows *sql.Rows) error {
			var (
				tx       Transaction
				customer sql.NullInt64
				date     sql.NullString
				amount   sql.NullFloat64
			)
			if err := rows.Scan(&tx.TransactionID, &tx.StoreID, &customer, &date, &amount); err != nil {
				return err
			}
			if customer.Valid {
				tx.CustomerID = &customer.Int64
			}
			tx.Date = parseDate(date)
			tx.TotalAmount = amount.Float64
			out = append(out, tx)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// LineItems returns all transaction line items ordered by transaction id.
func (r *Repository) LineItems(ctx context.Context) ([]LineItem, error) {
	return cached(ctx, r, KeyLineItems, func(ctx context.Context) ([]LineItem, error) {
		out := []LineItem{}
		err := r.db.Select(ctx, `
			SELECT
				td.TransactionID   AS transactionid,
				td.ProductID       AS productid,
				td.Quantity        AS quantity,
				td.PriceAtPurchase AS unitprice,
				td.TotalPrice      AS totalprice
			FROM TransactionDetails td
			ORDER BY td.TransactionID
		`, nil, func(rows *sql.Rows) error {
			var (
				li    LineItem
				total sql.NullFloat64
			)
			if err := rows.Scan(&li.TransactionID, &li.ProductID, &li.Quantity, &li.UnitPrice, &total); err != nil {
				return err
			}
			if total.Valid {
				li.TotalPrice = &total.Float64
			}
			out = append(out, li)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// ProductsWithCategories returns products with their category label resolved,
// falling back to the stringified category id for unregistered categories.
func (r *Repository) ProductsWithCategories(ctx context.Context) ([]Product, error) {
	return cached(ctx, r, KeyProducts, func(ctx context.Context) ([]Product, error) {
		out := []Product{}
		err := r.db.Select(ctx, `
			SELECT
				p.ProductID    AS productid,
				p.ProductName  AS productname,
				p.CategoryID   AS categoryid,
				COALESCE(pc.CategoryName, CAST(p.CategoryID AS TEXT)) AS category,
				p.Description  AS description,
				p.Price        AS price,
				p.CostPrice    AS costprice
			FROM Products p
			LEFT JOIN ProductCategories pc ON p.CategoryID = pc.CategoryID
			ORDER BY p.ProductID
		`, nil, func(rows *sql.Rows) error {
			var (
				p          Product
				categoryID sql.NullInt64
				category   sql.NullString
				desc       sql.NullString
				price      sql.NullFloat64
				cost       sql.NullFloat64
			)
			if err := rows.Scan(&p.ProductID, &p.ProductName, &categoryID, &category, &desc, &price, &cost); err != nil {
				return err
			}
			if categoryID.Valid {
				p.CategoryID = &categoryID.Int64
			}
			p.Category = category.String
			p.Description = desc.String
			p.Price = price.Float64
			p.CostPrice = cost.Float64
			out = append(out, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Stores returns all stores.
func (r *Repository) Stores(ctx context.Context) ([]Store, error) {
	return cached(ctx, r, KeyStores, func(ctx context.Context) ([]Store, error) {
		out := []Store{}
		err := r.db.Select(ctx, `
			SELECT
				s.StoreID   AS storeid,
				s.StoreName AS storename,
				s.Location  AS county
			FROM Stores s
			ORDER BY s.StoreID
		`, nil, func(rows *sql.Rows) error {
			var (
				s      Store
				county sql.NullString
			)
			if err := rows.Scan(&s.StoreID, &s.StoreName, &county); err != nil {
				return err
			}
			s.County = county.String
			out = append(out, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Customers returns all customers. The customer table is optional master
// data: when it is absent the accessor yields an empty result set with the
// correct schema so downstream joins simply contribute no matches.
func (r *Repository) Customers(ctx context.Context) ([]Customer, error) {
	return cached(ctx, r, KeyCustomers, func(ctx context.Context) ([]Customer, error) {
		present, err := r.db.HasTable(ctx, "Customers")
		if err != nil {
			return nil, err
		}
		if !present {
			slog.DebugContext(ctx, "Customer table absent, serving empty result", "accessor", KeyCustomers)
			return []Customer{}, nil
		}

		out := []Customer{}
		err = r.db.Select(ctx, `
			SELECT
				c.CustomerID   AS customerid,
				c.CustomerName AS customername
			FROM Customers c
			ORDER BY c.CustomerID
		`, nil, func(rows *sql.Rows) error {
			var c Customer
			if err := rows.Scan(&c.CustomerID, &c.CustomerName); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Categories returns all product categories.
func (r *Repository) Categories(ctx context.Context) ([]Category, error) {
	return cached(ctx, r, KeyCategories, func(ctx context.Context) ([]Category, error) {
		out := []Category{}
		err := r.db.Select(ctx, `
			SELECT
				pc.CategoryID   AS categoryid,
				pc.CategoryName AS category,
				pc.Description  AS description
			FROM ProductCategories pc
			ORDER BY pc.CategoryID
		`, nil, func(rows *sql.Rows) error {
			var (
				c    Category
				desc sql.NullString
			)
			if err := rows.Scan(&c.CategoryID, &c.Category, &desc); err != nil {
				return err
			}
			c.Description = desc.String
			out = append(out, c)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// SalesByCategory returns the per-category sales summary, ordered by summed
// sales descending. Line items whose product has no registered category
// group under the stringified raw category id.
func (r *Repository) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	return cached(ctx, r, KeySalesByCategory, func(ctx context.Context) ([]CategorySales, error) {
		out := []CategorySales{}
		err := r.db.Select(ctx, `
			SELECT
				COALESCE(pc.CategoryName, CAST(p.CategoryID AS TEXT)) AS category,
				SUM(td.TotalPrice)                                    AS sales_sek,
				SUM(td.Quantity)                                      AS qty,
				COUNT(DISTINCT td.TransactionID)                      AS transactions
			FROM TransactionDetails td
			LEFT JOIN Products p           ON td.ProductID  = p.ProductID
			LEFT JOIN ProductCategories pc ON p.CategoryID  = pc.CategoryID
			GROUP BY category
			ORDER BY sales_sek DESC
		`, nil, func(rows *sql.Rows) error {
			var (
				cs       CategorySales
				category sql.NullString
				sales    sql.NullFloat64
				qty      sql.NullFloat64
			)
			if err := rows.Scan(&category, &sales, &qty, &cs.Transactions); err != nil {
				return err
			}
			cs.Category = category.String
			cs.SalesSEK = sales.Float64
			cs.Qty = qty.Float64
			out = append(out, cs)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// MonthlySalesByCategory returns category sales bucketed by the calendar
// year-month of the transaction date, ordered by month then category.
func (r *Repository) MonthlySalesByCategory(ctx context.Context) ([]MonthlyCategorySales, error) {
	return cached(ctx, r, KeyMonthlyCategorySales, func(ctx context.Context) ([]MonthlyCategorySales, error) {
		out := []MonthlyCategorySales{}
		err := r.db.Select(ctx, `
			SELECT
				strftime('%Y-%m', t.TransactionDate)                  AS ym,
				COALESCE(pc.CategoryName, CAST(p.CategoryID AS TEXT)) AS category,
				SUM(td.TotalPrice)                                    AS sales_sek
			FROM TransactionDetails td
			LEFT JOIN Transactions t       ON td.TransactionID = t.TransactionID
			LEFT JOIN Products p           ON td.ProductID     = p.ProductID
			LEFT JOIN ProductCategories pc ON p.CategoryID     = pc.CategoryID
			GROUP BY ym, category
			ORDER BY ym, category
		`, nil, func(rows *sql.Rows) error {
			var (
				ms       MonthlyCategorySales
				ym       sql.NullString
				category sql.NullString
				sales    sql.NullFloat64
			)
			if err := rows.Scan(&ym, &category, &sales); err != nil {
				return err
			}
			ms.YM = ym.String
			ms.Category = category.String
			ms.SalesSEK = sales.Float64
			out = append(out, ms)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// dateLayouts covers the formats the store is known to write dates in.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseDate parses a stored date value; unparseable values become nil
// rather than an error.
func parseDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v.String); err == nil {
			return &t
		}
	}
	return nil
}
