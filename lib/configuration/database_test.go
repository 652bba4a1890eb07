package configuration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	require.False(t, Database{}.Enabled())
	_, err := Database{}.OpenDB("")
	require.Error(t, err)

	config := Database{File: filepath.Join(t.TempDir(), "test.db")}
	require.True(t, config.Enabled())

	db, err := config.OpenDB(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY);`)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM t`).Scan(&count))
	require.Equal(t, 1, count)
}
