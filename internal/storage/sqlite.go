package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inspirehep/refextract/internal/record"
	"github.com/inspirehep/refextract/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRefFields contains the standard field list for SELECT queries.
const selectRefFields = `id, source, idx, added, record_json`

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

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS refs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			idx INTEGER NOT NULL,
			added INTEGER NOT NULL,
			record_json TEXT NOT NULL,
			doi TEXT,
			year INTEGER,
			journal_title TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_refs_source ON refs(source, idx);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			id,
			raw_ref,
			author,
			title,
			journal,
			misc,
			reportnumber
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	refs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM refs"); err != nil {
		return 0, fmt.Errorf("clearing refs table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM refs_fts"); err != nil {
		return 0, fmt.Errorf("clearing refs_fts table: %w", err)
	}

	refsStmt, err := tx.Prepare(`
		INSERT INTO refs (id, source, idx, added, record_json, doi, year, journal_title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO refs_fts (id, raw_ref, author, title, journal, misc, reportnumber)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, ref := range refs {
		recordJSON, err := json.Marshal(ref.Record)
		if err != nil {
			return 0, fmt.Errorf("marshaling record %s: %w", ref.ID, err)
		}

		_, err = refsStmt.Exec(
			ref.ID, ref.Source, ref.Index, ref.Added.Unix(), string(recordJSON),
			nullableStringValue(strings.TrimPrefix(ref.Record.First(record.FieldDOI), "doi:")),
			nullableYear(recordYear(ref.Record)),
			nullableStringValue(ref.Record.First(record.FieldJournalTitle)),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting ref %s: %w", ref.ID, err)
		}

		_, err = ftsStmt.Exec(ref.ID,
			fieldText(ref.Record, record.FieldRawRef),
			fieldText(ref.Record, record.FieldAuthor),
			fieldText(ref.Record, record.FieldTitle),
			fieldText(ref.Record, record.FieldJournalTitle, record.FieldJournalRef),
			fieldText(ref.Record, record.FieldMisc),
			fieldText(ref.Record, record.FieldReportNumber),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", ref.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(refs), nil
}

// fieldText joins the values of the named record fields for FTS.
func fieldText(r reference.Record, fields ...string) string {
	var parts []string
	for _, f := range fields {
		parts = append(parts, r[f]...)
	}
	return strings.Join(parts, "; ")
}

// recordYear returns the publication year of a record, preferring the
// journal year. Zero means unknown.
func recordYear(r reference.Record) int {
	for _, f := range []string{record.FieldJournalYear, record.FieldYear} {
		if y, err := strconv.Atoi(r.First(f)); err == nil {
			return y
		}
	}
	return 0
}

// GetByID retrieves a stored record by its ID.
func (d *DB) GetByID(id string) (*reference.Stored, error) {
	row := d.db.QueryRow(`SELECT `+selectRefFields+` FROM refs WHERE id = ?`, id)
	return scanStored(row)
}

// Search performs a full-text search and returns matching records.
func (d *DB) Search(query string, limit int) ([]reference.Stored, error) {
	return d.SearchWithFilters(SearchFilters{Keyword: query}, limit)
}

// SearchFilters contains optional filters for SearchWithFilters.
type SearchFilters struct {
	Keyword  string   // General keyword search across all fields
	Authors  []string // Author names to search for (AND logic, prefix matching)
	Title    string   // Search in title only (FTS)
	Journal  string   // Search in journal title and reference (FTS)
	YearFrom int      // Minimum year (0 = no minimum)
	YearTo   int      // Maximum year (0 = no maximum)
	DOI      string   // Exact DOI match (SQL), with or without "doi:"
	Source   string   // Exact source match (SQL)
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns records matching ALL specified criteria (AND logic).
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]reference.Stored, error) {
	var ftsTerms []string
	var args []interface{}

	if q := prepareFTSQuery(filters.Keyword); q != "" {
		ftsTerms = append(ftsTerms, q)
	}
	if q := prepareFTSQuery(filters.Title); q != "" {
		ftsTerms = append(ftsTerms, "title:"+q)
	}
	if q := prepareFTSQuery(filters.Journal); q != "" {
		ftsTerms = append(ftsTerms, "journal:"+q)
	}
	for _, author := range filters.Authors {
		if q := prepareAuthorQuery(author); q != "" {
			ftsTerms = append(ftsTerms, "author:"+q)
		}
	}

	var query string
	if len(ftsTerms) > 0 {
		query = `SELECT ` + selectRefFields + `
			FROM refs
			WHERE id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)`
		args = append(args, strings.Join(ftsTerms, " AND "))
	} else {
		query = `SELECT ` + selectRefFields + ` FROM refs WHERE 1=1`
	}

	if filters.YearFrom > 0 {
		query += " AND year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.DOI != "" {
		query += " AND doi = ?"
		args = append(args, strings.TrimPrefix(filters.DOI, "doi:"))
	}
	if filters.Source != "" {
		query += " AND source = ?"
		args = append(args, filters.Source)
	}

	query += " ORDER BY source, idx"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanStoredRows(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching.
// It adds a wildcard (*) so that "Ell" matches "Ellis".
func prepareAuthorQuery(author string) string {
	parts := strings.Fields(author)
	if len(parts) == 0 {
		return ""
	}
	var terms []string
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ListAll returns all stored records in source order, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Stored, error) {
	return d.SearchWithFilters(SearchFilters{}, limit)
}

// Count returns the total number of stored records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&count)
	return count, err
}

// CountSources returns the number of distinct sources in the store.
func (d *DB) CountSources() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(DISTINCT source) FROM refs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStored(s scanner) (*reference.Stored, error) {
	var ref reference.Stored
	var added int64
	var recordJSON string

	err := s.Scan(&ref.ID, &ref.Source, &ref.Index, &added, &recordJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	ref.Added = time.Unix(added, 0).UTC()
	if err := json.Unmarshal([]byte(recordJSON), &ref.Record); err != nil {
		return nil, fmt.Errorf("parsing record JSON for %s: %w", ref.ID, err)
	}
	return &ref, nil
}

func scanStoredRows(rows *sql.Rows) ([]reference.Stored, error) {
	var refs []reference.Stored
	for rows.Next() {
		ref, err := scanStored(rows)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableYear(y int) sql.NullInt64 {
	if y == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(y), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,/") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
