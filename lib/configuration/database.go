package configuration

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Database selects either a local sqlite file or a remote libsql database.
type Database struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Database) Enabled() bool {
	return config.File != "" || config.Url != ""
}

// OpenDB opens the database and applies schema, schema statements must be
// idempotent (CREATE ... IF NOT EXISTS).
func (config Database) OpenDB(schema string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch {
	case config.Url != "":
		dsn := config.Url
		if config.AuthToken != "" {
			values := url.Values{}
			values.Add("authToken", config.AuthToken)
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = dsn + sep + values.Encode()
		}
		db, err = sql.Open("libsql", dsn)
	case config.File != "":
		db, err = sql.Open("sqlite", config.File)
	default:
		return nil, fmt.Errorf("database: one of file or url is required")
	}
	if err != nil {
		return nil, err
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}
