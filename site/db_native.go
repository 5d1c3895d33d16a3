//go:build !cgo_sqlite

package site

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func openIndex(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", dataSource)
}
