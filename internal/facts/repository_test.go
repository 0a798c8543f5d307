package facts

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"koksgladje/internal/storage"
)

// countingQuerier wraps the storage layer and counts round-trips so tests
// can verify the memoization contract.
type countingQuerier struct {
	db      *storage.DB
	selects int
	probes  int
}

func (c *countingQuerier) Select(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	c.selects++
	return c.db.Select(ctx, query, args, scan)
}

func (c *countingQuerier) HasTable(ctx context.Context, name string) (bool, error) {
	c.probes++
	return c.db.HasTable(ctx, name)
}

// newFixture builds a populated sales database and returns a repository
// over it plus the round-trip counter.
func newFixture(t *testing.T, withCustomers bool) (*Repository, *countingQuerier) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE Transactions (
			TransactionID INTEGER PRIMARY KEY,
			StoreID INTEGER,
			CustomerID INTEGER,
			TransactionDate TEXT,
			TotalAmount REAL
		);
		CREATE TABLE TransactionDetails (
			TransactionID INTEGER,
			ProductID INTEGER,
			Quantity REAL,
			PriceAtPurchase REAL,
			TotalPrice REAL
		);
		CREATE TABLE Products (
			ProductID INTEGER PRIMARY KEY,
			ProductName TEXT,
			CategoryID INTEGER,
			Description TEXT,
			Price REAL,
			CostPrice REAL
		);
		CREATE TABLE ProductCategories (
			CategoryID INTEGER PRIMARY KEY,
			CategoryName TEXT,
			Description TEXT
		);
		CREATE TABLE Stores (
			StoreID INTEGER PRIMARY KEY,
			StoreName TEXT,
			Location TEXT
		);

		INSERT INTO Stores VALUES (1, 'Köksglädje Malmö', 'Skåne');
		INSERT INTO Stores VALUES (2, 'Köksglädje Umeå', 'Västerbotten');

		INSERT INTO ProductCategories VALUES (1, 'Knivar', 'Skärande verktyg');
		INSERT INTO ProductCategories VALUES (2, 'Grytor', NULL);

		INSERT INTO Products VALUES (10, 'Kockkniv 20 cm', 1, 'Kolstål', 899, 420);
		INSERT INTO Products VALUES (11, 'Gjutjärnsgryta 5 l', 2, NULL, 1299, 640);
		INSERT INTO Products VALUES (12, 'Mystisk pryl', 9, NULL, 49, 12);

		INSERT INTO Transactions VALUES (100, 1, 1, '2024-03-04 10:30:00', 1798);
		INSERT INTO Transactions VALUES (101, 2, NULL, '2024-03-05 14:00:00', 1299);
		INSERT INTO Transactions VALUES (102, 1, 2, 'inte ett datum', 98);

		INSERT INTO TransactionDetails VALUES (100, 10, 2, 899, 1798);
		INSERT INTO TransactionDetails VALUES (101, 11, 1, 1299, 1299);
		INSERT INTO TransactionDetails VALUES (102, 12, 1, 49, 49);
		INSERT INTO TransactionDetails VALUES (102, 12, 1, 49, NULL);
	`)
	require.NoError(t, err)

	if withCustomers {
		_, err = db.Exec(`
			CREATE TABLE Customers (CustomerID INTEGER PRIMARY KEY, CustomerName TEXT);
			INSERT INTO Customers VALUES (1, 'Anna Lund');
			INSERT INTO Customers VALUES (2, 'Bo Ek');
		`)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	sdb, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { sdb.Close() })

	q := &countingQuerier{db: sdb}
	return NewRepository(q, 300*time.Second), q
}

func TestTransactions_Shape(t *testing.T) {
	repo, _ := newFixture(t, true)

	txs, err := repo.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 3)

	// Ordered by date text, so the malformed date sorts last
	first := txs[0]
	require.Equal(t, int64(100), first.TransactionID)
	require.Equal(t, int64(1), first.StoreID)
	require.NotNil(t, first.CustomerID)
	require.Equal(t, int64(1), *first.CustomerID)
	require.NotNil(t, first.Date)
	require.Equal(t, time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC), *first.Date)
	require.Equal(t, 1798.0, first.TotalAmount)

	// NULL customer id stays nil
	require.Nil(t, txs[1].CustomerID)

	// Malformed date coerces to nil instead of failing the accessor
	require.Equal(t, int64(102), txs[2].TransactionID)
	require.Nil(t, txs[2].Date)
}

func TestTransactions_CachedWithinTTL(t *testing.T) {
	repo, q := newFixture(t, true)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.cache.SetClock(func() time.Time { return now })

	first, err := repo.Transactions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, q.selects)

	// Repeated calls inside the TTL window serve the identical cached result
	// without a new storage round-trip.
	for i := 0; i < 5; i++ {
		again, err := repo.Transactions(context.Background())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	require.Equal(t, 1, q.selects)

	// Past the TTL the next call triggers exactly one new round-trip.
	now = now.Add(301 * time.Second)
	_, err = repo.Transactions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, q.selects)
}

func TestInvalidate_ForcesRequery(t *testing.T) {
	repo, q := newFixture(t, true)

	_, err := repo.Stores(context.Background())
	require.NoError(t, err)
	_, err = repo.Stores(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, q.selects)

	repo.Invalidate(KeyStores)

	_, err = repo.Stores(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, q.selects)
}

func TestCustomers_MissingTable(t *testing.T) {
	repo, q := newFixture(t, false)

	customers, err := repo.Customers(context.Background())
	require.NoError(t, err)
	require.NotNil(t, customers)
	require.Empty(t, customers)

	// The absence was resolved by a schema probe, not a failed query.
	require.Equal(t, 1, q.probes)
	require.Equal(t, 0, q.selects)

	// The empty outcome is cached like any other result.
	_, err = repo.Customers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, q.probes)
}

func TestCustomers_Present(t *testing.T) {
	repo, _ := newFixture(t, true)

	customers, err := repo.Customers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	require.Equal(t, Customer{CustomerID: 1, CustomerName: "Anna Lund"}, customers[0])
}

func TestProducts_CategoryFallback(t *testing.T) {
	repo, _ := newFixture(t, true)

	products, err := repo.ProductsWithCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	require.Equal(t, "Knivar", products[0].Category)
	require.Equal(t, "Grytor", products[1].Category)
	// Category id 9 has no registered label, so the raw id is stringified.
	require.Equal(t, "9", products[2].Category)
}

func TestSalesByCategory(t *testing.T) {
	repo, _ := newFixture(t, true)

	sales, err := repo.SalesByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 3)

	// Ordered by summed sales descending.
	require.Equal(t, "Knivar", sales[0].Category)
	require.Equal(t, 1798.0, sales[0].SalesSEK)
	require.Equal(t, "Grytor", sales[1].Category)

	// Both "Mystisk pryl" line items belong to transaction 102: the fallback
	// group counts one distinct transaction, not two line items.
	fallback := sales[2]
	require.Equal(t, "9", fallback.Category)
	require.Equal(t, 49.0, fallback.SalesSEK)
	require.Equal(t, 2.0, fallback.Qty)
	require.Equal(t, int64(1), fallback.Transactions)
}

func TestMonthlySalesByCategory(t *testing.T) {
	repo, _ := newFixture(t, true)

	monthly, err := repo.MonthlySalesByCategory(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, monthly)

	for _, m := range monthly {
		if m.YM == "" {
			continue // the malformed-date transaction has no month bucket
		}
		require.Regexp(t, `^\d{4}-\d{2}$`, m.YM)
	}
}

func TestLineItems_NullTotalPrice(t *testing.T) {
	repo, _ := newFixture(t, true)

	items, err := repo.LineItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4)

	var nullTotals int
	for _, li := range items {
		if li.TotalPrice == nil {
			nullTotals++
		}
	}
	require.Equal(t, 1, nullTotals)
}
