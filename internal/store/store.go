package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/shapetran/internal/formatter"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_requests (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		backend TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS translation_results (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		state TEXT NOT NULL,
		output_text TEXT NOT NULL,
		tier TEXT,
		truncated BOOLEAN DEFAULT FALSE,
		cached BOOLEAN DEFAULT FALSE,
		latency_ms INTEGER,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (request_id) REFERENCES translation_requests(id)
	);

	CREATE TABLE IF NOT EXISTS translation_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		backend TEXT NOT NULL,
		final_text TEXT NOT NULL,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang, backend)
	);

	-- structural_labels overrides the built-in label table of a target language
	CREATE TABLE IF NOT EXISTS structural_labels (
		id TEXT PRIMARY KEY,
		target_lang TEXT NOT NULL,
		source_label TEXT NOT NULL,
		target_label TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(target_lang, source_label)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON translation_memory(source_text, source_lang, target_lang, backend);
	CREATE INDEX IF NOT EXISTS idx_results_request ON translation_results(request_id);
	CREATE INDEX IF NOT EXISTS idx_labels_lookup ON structural_labels(target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Request is one submitted translation as recorded in the history.
type Request struct {
	ID         string
	SourceText string
	SourceLang string
	TargetLang string
	Backend    string
	Timestamp  time.Time
}

// NewRequest returns a Request with a fresh ID and the current time.
func NewRequest(sourceText, sourceLang, targetLang, backend string) Request {
	return Request{
		ID:         uuid.NewString(),
		SourceText: sourceText,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Backend:    backend,
		Timestamp:  time.Now(),
	}
}

// Outcome is the terminal state of a request.
type Outcome struct {
	RequestID string
	State     string
	Text      string
	Tier      string
	Truncated bool
	Cached    bool
	Latency   time.Duration
	Error     string
}

func (s *Store) SaveRequest(ctx context.Context, req Request) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_requests (id, source_text, source_lang, target_lang, backend, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.SourceText, req.SourceLang, req.TargetLang, req.Backend, req.Timestamp)
	return err
}

func (s *Store) SaveOutcome(ctx context.Context, out Outcome) error {
	id := fmt.Sprintf("%s_result", out.RequestID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_results (id, request_id, state, output_text, tier, truncated, cached, latency_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, out.RequestID, out.State, out.Text, out.Tier, out.Truncated, out.Cached, out.Latency.Milliseconds(), out.Error)
	return err
}

// HistoryEntry joins a request with its outcome, if one was recorded.
type HistoryEntry struct {
	Request
	State     string
	Tier      string
	Cached    bool
	LatencyMs int64
	Error     string
}

// History returns the most recent requests first. A limit of zero or less
// returns everything.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT r.id, r.source_text, r.source_lang, r.target_lang, r.backend, r.created_at,
			COALESCE(o.state, ''), COALESCE(o.tier, ''), COALESCE(o.cached, FALSE),
			COALESCE(o.latency_ms, 0), COALESCE(o.error, '')
		FROM translation_requests r
		LEFT JOIN translation_results o ON o.request_id = r.id
		ORDER BY r.created_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.Backend, &e.Timestamp,
			&e.State, &e.Tier, &e.Cached, &e.LatencyMs, &e.Error); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Lookup returns the remembered translation of sourceText, bumping its
// usage count on a hit. Invalidated entries are misses.
func (s *Store) Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error) {
	var finalText string
	var invalidated bool

	key := normalizeText(sourceText)
	err := s.db.QueryRowContext(ctx,
		`SELECT final_text, invalidated FROM translation_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND backend = ?`,
		key, sourceLang, targetLang, backend).Scan(&finalText, &invalidated)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if invalidated {
		return "", false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE translation_memory SET usage_count = usage_count + 1, last_used = ? WHERE source_text = ? AND source_lang = ? AND target_lang = ? AND backend = ?`,
		time.Now(), key, sourceLang, targetLang, backend)

	return finalText, true, err
}

// Remember stores a finished translation, replacing any earlier entry for
// the same source text, language pair and backend.
func (s *Store) Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, finalText string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translation_memory (id, source_text, source_lang, target_lang, backend, final_text, usage_count, invalidated, last_used, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		uuid.NewString(), normalizeText(sourceText), sourceLang, targetLang, backend, finalText, now, now)
	return err
}

// MemoryEntry is a row from the translation_memory table.
type MemoryEntry struct {
	ID          string
	SourceText  string
	SourceLang  string
	TargetLang  string
	Backend     string
	FinalText   string
	UsageCount  int
	Invalidated bool
	LastUsed    time.Time
}

// CacheStats summarises translation memory usage.
type CacheStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) InvalidateMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE translation_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// DeleteMemory permanently removes a translation memory entry by ID.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory WHERE id = ?`, id)
	return err
}

// ClearMemory removes all translation memory entries.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all translation memory entries ordered by most recently used.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, backend, final_text, usage_count, invalidated, last_used FROM translation_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.Backend, &e.FinalText, &e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Stats returns summary statistics for the translation memory.
func (s *Store) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM translation_memory`).Scan(
		&stats.TotalEntries,
		&stats.ActiveEntries,
		&stats.InvalidEntries,
		&stats.TotalUsage,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// LabelEntry represents a row in the structural_labels table.
type LabelEntry struct {
	ID          string
	TargetLang  string
	SourceLabel string
	TargetLabel string
	CreatedAt   time.Time
}

// AddLabel inserts or replaces the translation of a structural label for
// one target language.
func (s *Store) AddLabel(ctx context.Context, targetLang, sourceLabel, targetLabel string) error {
	if strings.TrimSpace(sourceLabel) == "" {
		return fmt.Errorf("source label must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO structural_labels (id, target_lang, source_label, target_label)
		 VALUES (?, ?, ?, ?)`,
		uuid.NewString(), targetLang, sourceLabel, targetLabel)
	return err
}

// Labels returns the stored labels of targetLang, longest source label
// first so that "Error code:" is tried before "Error:".
func (s *Store) Labels(ctx context.Context, targetLang string) (formatter.Labels, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_label, target_label FROM structural_labels WHERE target_lang = ?
		 ORDER BY length(source_label) DESC, source_label`,
		targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels formatter.Labels
	for rows.Next() {
		var l formatter.Label
		if err := rows.Scan(&l.Source, &l.Target); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// ListLabels returns all stored labels, optionally filtered by target
// language (pass an empty string to return everything).
func (s *Store) ListLabels(ctx context.Context, targetLang string) ([]LabelEntry, error) {
	query := `SELECT id, target_lang, source_label, target_label, created_at FROM structural_labels`
	var args []interface{}
	if targetLang != "" {
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY target_lang, source_label`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LabelEntry
	for rows.Next() {
		var e LabelEntry
		if err := rows.Scan(&e.ID, &e.TargetLang, &e.SourceLabel, &e.TargetLabel, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteLabel removes a label by ID.
func (s *Store) DeleteLabel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM structural_labels WHERE id = ?`, id)
	return err
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// for consistent cache key comparison.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
