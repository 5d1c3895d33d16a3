//go:build cgo_sqlite

package site

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func openIndex(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
