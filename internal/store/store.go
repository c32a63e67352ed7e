// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists PaperRecords in a local SQLite database.
// Implements: prd005-record-store (R1-R4);
//
//	docs/ARCHITECTURE.md § Record Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperflow/pkg/types"
)

const dbFile = "paperflow.db"

// ErrNotFound is returned by Get when no record has the given id.
var ErrNotFound = errors.New("paper not found")

// ErrDuplicate is returned by Insert when a record with the same id
// already exists. The stored record is left untouched.
var ErrDuplicate = errors.New("paper already stored")

// Store manages the papers table. All access is per-record read-then-write;
// the store holds no long-lived locks and assumes a single pipeline process.
type Store struct {
	db *sql.DB
}

// Open opens or creates the pipeline database at dataDir/paperflow.db and
// ensures the schema exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		abstract TEXT,
		authors TEXT,
		url TEXT,
		published_date TEXT,
		source TEXT NOT NULL,
		is_oa INTEGER,
		doi TEXT,
		full_text_content TEXT,
		discovered_at TEXT NOT NULL,
		relevance TEXT NOT NULL DEFAULT 'unknown',
		relevance_reason TEXT,
		download_status TEXT NOT NULL DEFAULT 'pending',
		analysis_report TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Exists reports whether a record with the given id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE id = ?`, id,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking paper %s: %w", id, err)
	}
	return n > 0, nil
}

// Get returns the stored record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.PaperRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM papers WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading paper %s: %w", id, err)
	}
	return rec, nil
}

// Insert stores a new record. The insert is conditional on the id being
// absent: re-discovery of a stored paper returns ErrDuplicate and leaves
// every persisted field unchanged.
func (s *Store) Insert(ctx context.Context, rec *types.PaperRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("paper record has empty id")
	}
	if rec.Relevance == "" {
		rec.Relevance = types.RelevanceUnknown
	}
	if rec.DownloadStatus == "" {
		rec.DownloadStatus = types.DownloadPending
	}
	if rec.DiscoveredAt.IsZero() {
		rec.DiscoveredAt = time.Now().UTC()
	}

	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors for %s: %w", rec.ID, err)
	}

	var isOA any
	if rec.IsOA != nil {
		isOA = *rec.IsOA
	}

	published := ""
	if !rec.PublishedDate.IsZero() {
		published = rec.PublishedDate.UTC().Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO papers
		 (id, title, abstract, authors, url, published_date, source, is_oa,
		  doi, full_text_content, discovered_at, relevance, relevance_reason,
		  download_status, analysis_report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Abstract, string(authorsJSON), rec.URL,
		published, rec.Source, isOA, rec.DOI, rec.FullTextContent,
		rec.DiscoveredAt.UTC().Format(time.RFC3339), string(rec.Relevance),
		rec.RelevanceReason, string(rec.DownloadStatus), rec.AnalysisReport,
	)
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", rec.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", rec.ID, err)
	}
	if rows == 0 {
		return ErrDuplicate
	}
	return nil
}

// SetDownloadStatus persists one acquisition outcome for one record.
func (s *Store) SetDownloadStatus(ctx context.Context, id string, status types.DownloadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET download_status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating download status for %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SetAnalysisReport persists the analysis report for one record.
func (s *Store) SetAnalysisReport(ctx context.Context, id, report string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET analysis_report = ? WHERE id = ?`, report, id)
	if err != nil {
		return fmt.Errorf("updating analysis report for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating paper %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("updating paper %s: %w", id, ErrNotFound)
	}
	return nil
}

// Filter selects records in List. Zero-valued fields do not constrain.
type Filter struct {
	// Relevance keeps only records with the given triage verdict.
	Relevance types.Relevance

	// DownloadStatus keeps only records with the given acquisition state.
	DownloadStatus types.DownloadStatus

	// Source keeps only records discovered by the named adapter.
	Source string

	// Analyzed, when non-nil, keeps records with (true) or without
	// (false) a stored analysis report.
	Analyzed *bool
}

// List returns records matching the filter, ordered by discovery time.
func (s *Store) List(ctx context.Context, f Filter) ([]types.PaperRecord, error) {
	query := selectColumns + ` FROM papers WHERE 1=1`
	var args []any

	if f.Relevance != "" {
		query += ` AND relevance = ?`
		args = append(args, string(f.Relevance))
	}
	if f.DownloadStatus != "" {
		query += ` AND download_status = ?`
		args = append(args, string(f.DownloadStatus))
	}
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, f.Source)
	}
	if f.Analyzed != nil {
		if *f.Analyzed {
			query += ` AND analysis_report IS NOT NULL AND analysis_report != ''`
		} else {
			query += ` AND (analysis_report IS NULL OR analysis_report = '')`
		}
	}
	query += ` ORDER BY discovered_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var records []types.PaperRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	return records, nil
}

const selectColumns = `SELECT id, title, abstract, authors, url,
	published_date, source, is_oa, doi, full_text_content, discovered_at,
	relevance, relevance_reason, download_status, analysis_report`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*types.PaperRecord, error) {
	var rec types.PaperRecord
	var authorsJSON, published, discovered sql.NullString
	var abstract, url, doi, fullText, reason, report sql.NullString
	var relevance, status string
	var isOA sql.NullBool

	err := row.Scan(&rec.ID, &rec.Title, &abstract, &authorsJSON, &url,
		&published, &rec.Source, &isOA, &doi, &fullText, &discovered,
		&relevance, &reason, &status, &report)
	if err != nil {
		return nil, err
	}

	rec.Abstract = abstract.String
	rec.URL = url.String
	rec.DOI = doi.String
	rec.FullTextContent = fullText.String
	rec.Relevance = types.Relevance(relevance)
	rec.RelevanceReason = reason.String
	rec.DownloadStatus = types.DownloadStatus(status)
	rec.AnalysisReport = report.String

	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &rec.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", rec.ID, err)
		}
	}
	if isOA.Valid {
		v := isOA.Bool
		rec.IsOA = &v
	}
	if published.Valid && published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			rec.PublishedDate = t
		}
	}
	if discovered.Valid && discovered.String != "" {
		if t, err := time.Parse(time.RFC3339, discovered.String); err == nil {
			rec.DiscoveredAt = t
		}
	}
	return &rec, nil
}
