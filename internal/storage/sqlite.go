package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citeshelf/internal/metadata"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Metadata for an unknown record ID.
var ErrNotFound = errors.New("record not found")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `id, title, publisher,
	pub_year, pub_month, pub_day, isbn,
	authors_json, author_sort_json,
	pdf_path, source_type, source_id`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			ord INTEGER NOT NULL,
			title TEXT,
			publisher TEXT,
			pub_year INTEGER,
			pub_month INTEGER,
			pub_day INTEGER,
			isbn TEXT,
			authors_json TEXT NOT NULL,
			author_sort_json TEXT,
			pdf_path TEXT,
			source_type TEXT,
			source_id TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_records_isbn ON records(isbn) WHERE isbn IS NOT NULL;

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id,
			title,
			authors_text,
			publisher,
			isbn
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// Records keep their file order, which ListIDs returns.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	recs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM records_fts"); err != nil {
		return 0, fmt.Errorf("clearing records_fts table: %w", err)
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (
			id, ord, title, publisher,
			pub_year, pub_month, pub_day, isbn,
			authors_json, author_sort_json,
			pdf_path, source_type, source_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO records_fts (id, title, authors_text, publisher, isbn)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, rec := range recs {
		authors := rec.Authors
		if authors == nil {
			authors = metadata.Authors{}
		}
		authorsJSON, err := json.Marshal(authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", rec.ID, err)
		}
		var sortJSON []byte
		if len(rec.AuthorSort) > 0 {
			sortJSON, err = json.Marshal(rec.AuthorSort)
			if err != nil {
				return 0, fmt.Errorf("marshaling author sort for %s: %w", rec.ID, err)
			}
		}

		var year, month, day sql.NullInt64
		if pub, ok := rec.Published.Get(); ok {
			year = sql.NullInt64{Int64: int64(pub.Year), Valid: true}
			month = nullableInt(pub.Month)
			day = nullableInt(pub.Day)
		}

		_, err = recStmt.Exec(
			rec.ID, i, nullableOptional(rec.Title), nullableOptional(rec.Publisher),
			year, month, day, nullableOptional(rec.ISBN),
			string(authorsJSON), nullableString(sortJSON),
			nullableStringValue(rec.PDFPath), rec.Source.Type, rec.Source.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting record %s: %w", rec.ID, err)
		}

		_, err = ftsStmt.Exec(rec.ID, rec.Title.OrElse(""), strings.Join(rec.Authors, ", "),
			rec.Publisher.OrElse(""), metadata.NormalizeISBN(rec.ISBN.OrElse("")))
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	return len(recs), nil
}

// GetByID retrieves a record by its ID. Returns nil if not found.
func (d *DB) GetByID(id string) (*metadata.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectRecordFields+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// Metadata implements citation.Accessor.
func (d *DB) Metadata(id string) (metadata.Record, error) {
	rec, err := d.GetByID(id)
	if err != nil {
		return metadata.Record{}, fmt.Errorf("getting record %s: %w", id, err)
	}
	if rec == nil {
		return metadata.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *rec, nil
}

// ListIDs returns record IDs in library order. limit <= 0 means no limit.
func (d *DB) ListIDs(limit int) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`SELECT id FROM records ORDER BY ord LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListAll returns records in library order. limit <= 0 means no limit.
func (d *DB) ListAll(limit int) ([]metadata.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`SELECT `+selectRecordFields+` FROM records ORDER BY ord LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search performs a full-text search and returns matching records in library order.
func (d *DB) Search(query string, limit int) ([]metadata.Record, error) {
	// ISBNs are indexed without separators
	if isbn := metadata.NormalizeISBN(query); metadata.ValidISBN(isbn) {
		query = isbn
	}
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.Query(`
		SELECT `+selectRecordFields+`
		FROM records
		WHERE id IN (SELECT id FROM records_fts WHERE records_fts MATCH ?)
		ORDER BY ord
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the number of records in the database.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*metadata.Record, error) {
	var rec metadata.Record
	var title, publisher, isbn, sortJSON, pdfPath, sourceType, sourceID sql.NullString
	var pubYear, pubMonth, pubDay sql.NullInt64
	var authorsJSON string

	err := row.Scan(
		&rec.ID, &title, &publisher,
		&pubYear, &pubMonth, &pubDay, &isbn,
		&authorsJSON, &sortJSON,
		&pdfPath, &sourceType, &sourceID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rec.Title = optionalFromNull(title)
	rec.Publisher = optionalFromNull(publisher)
	rec.ISBN = optionalFromNull(isbn)
	rec.PDFPath = pdfPath.String
	rec.Source = metadata.ImportSource{Type: sourceType.String, ID: sourceID.String}

	if pubYear.Valid {
		rec.Published = metadata.Some(metadata.PublicationDate{
			Year:  int(pubYear.Int64),
			Month: int(pubMonth.Int64),
			Day:   int(pubDay.Int64),
		})
	}

	if err := json.Unmarshal([]byte(authorsJSON), &rec.Authors); err != nil {
		return nil, fmt.Errorf("parsing authors JSON for %s: %w", rec.ID, err)
	}
	if sortJSON.Valid && sortJSON.String != "" {
		if err := json.Unmarshal([]byte(sortJSON.String), &rec.AuthorSort); err != nil {
			return nil, fmt.Errorf("parsing author sort JSON for %s: %w", rec.ID, err)
		}
	}

	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]metadata.Record, error) {
	var recs []metadata.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, rows.Err()
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableOptional keeps absence as NULL. A present empty string stays present.
func nullableOptional(o metadata.Optional[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}

func optionalFromNull(s sql.NullString) metadata.Optional[string] {
	if !s.Valid {
		return metadata.None[string]()
	}
	return metadata.Some(s.String)
}

func nullableInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~,.&") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
