package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newFixtureDB creates a throwaway database file with a minimal schema.
func newFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE Stores (StoreID INTEGER PRIMARY KEY, StoreName TEXT, Location TEXT);
		INSERT INTO Stores VALUES (1, 'Köksglädje Malmö', 'Skåne');
		INSERT INTO Stores VALUES (2, 'Köksglädje Umeå', 'Västerbotten');
	`)
	require.NoError(t, err)

	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound), "error should be *NotFoundError, got %v", err)
	require.Contains(t, notFound.Path, "nope.db")
}

func TestSelect_AliasesControlShape(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	type row struct {
		id     int64
		name   string
		county string
	}

	var rows []row
	err = db.Select(context.Background(), `
		SELECT s.StoreID AS storeid, s.StoreName AS storename, s.Location AS county
		FROM Stores s
		ORDER BY s.StoreID
	`, nil, func(r *sql.Rows) error {
		var x row
		if err := r.Scan(&x.id, &x.name, &x.county); err != nil {
			return err
		}
		rows = append(rows, x)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	require.Equal(t, row{1, "Köksglädje Malmö", "Skåne"}, rows[0])
	require.Equal(t, row{2, "Köksglädje Umeå", "Västerbotten"}, rows[1])
}

func TestSelect_BadQuery(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	err = db.Select(context.Background(), `SELECT * FROM NoSuchTable`, nil, func(r *sql.Rows) error {
		return nil
	})
	require.Error(t, err)
}

func TestHasTable(t *testing.T) {
	db, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	defer db.Close()

	ok, err := db.HasTable(context.Background(), "Stores")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = db.HasTable(context.Background(), "Customers")
	require.NoError(t, err)
	require.False(t, ok)
}
