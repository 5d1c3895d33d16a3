package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/stuart/lang"
)

// IndexName is the default file name of the page index database.
const IndexName = "index.db"

const (
	schemaPages = `
CREATE TABLE IF NOT EXISTS pages (
    path TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    frontmatter TEXT NOT NULL DEFAULT '{}',
    hash TEXT NOT NULL DEFAULT ''
);
`
	insertPage = `INSERT INTO pages (path, source, kind, title, date, frontmatter, hash) VALUES (?, ?, ?, ?, ?, ?, ?);`
	selectPage = `SELECT path, source, kind, title, date, frontmatter, hash FROM pages ORDER BY path;`
)

// IndexEntry is one row of the page index.
type IndexEntry struct {
	Frontmatter lang.Value
	Path        string
	Source      string
	Kind        string
	Title       string
	Date        string
	// Hash is the hex xxh3 digest of the rendered page, for change
	// detection between builds.
	Hash string
}

func indexEntry(p Page) IndexEntry {
	e := IndexEntry{
		Path:        p.Path,
		Source:      p.Source,
		Kind:        p.Kind.String(),
		Frontmatter: p.Frontmatter,
		Hash:        contentHash(p.Content),
	}

	if e.Frontmatter.Kind() != lang.KindObject {
		e.Frontmatter = lang.Object(nil)
	}

	if v, ok := e.Frontmatter.Field("title"); ok {
		e.Title = v.String()
	}

	if v, ok := e.Frontmatter.Field("date"); ok {
		e.Date = v.String()
	}

	return e
}

func contentHash(b []byte) string {
	return strconv.FormatUint(xxh3.Hash(b), 16)
}

// WriteIndex replaces the contents of the SQLite database at file with one
// row per rendered page.
func (r *Result) WriteIndex(ctx context.Context, file string) error {
	err := os.MkdirAll(filepath.Dir(file), dirMode)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}

	db, err := openIndex(file)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, schemaPages)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `DELETE FROM pages;`)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}

	stmt, err := tx.PrepareContext(ctx, insertPage)
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}
	defer stmt.Close()

	for _, p := range r.Pages {
		e := indexEntry(p)

		fm, err := e.Frontmatter.MarshalJSON()
		if err != nil {
			return ErrIndex.Wrap(err).WithSource(file)
		}

		_, err = stmt.ExecContext(ctx, e.Path, e.Source, e.Kind, e.Title, e.Date, string(fm), e.Hash)
		if err != nil {
			return ErrIndex.Wrap(err).WithSource(file).With(slog.String("page", e.Path))
		}
	}

	err = tx.Commit()
	if err != nil {
		return ErrIndex.Wrap(err).WithSource(file)
	}

	return nil
}

// ReadIndex returns the rows of the page index at file in path order.
func ReadIndex(ctx context.Context, file string) ([]IndexEntry, error) {
	db, err := openIndex(file)
	if err != nil {
		return nil, ErrIndex.Wrap(err).WithSource(file)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectPage)
	if err != nil {
		return nil, ErrIndex.Wrap(err).WithSource(file)
	}
	defer rows.Close()

	var out []IndexEntry

	for rows.Next() {
		var (
			e  IndexEntry
			fm string
		)

		err = rows.Scan(&e.Path, &e.Source, &e.Kind, &e.Title, &e.Date, &fm, &e.Hash)
		if err != nil {
			return nil, ErrIndex.Wrap(err).WithSource(file)
		}

		e.Frontmatter, err = lang.ParseJSON([]byte(fm))
		if err != nil {
			return nil, ErrIndex.Wrap(err).WithSource(file)
		}

		out = append(out, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, ErrIndex.Wrap(err).WithSource(file)
	}

	return out, nil
}
