// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists generation attempts and validation issues in an
// append-only SQLite store. Every learning component reads from here; the
// retry controller is the only writer.
// Implements: prd002-validation-telemetry, prd003-attempt-history (R1-R3);
//
//	docs/ARCHITECTURE § Attempt History.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/copy-engine/pkg/types"
)

const dbFile = "history.db"

// Store manages the attempt history SQLite database. Writes are single
// INSERT statements, atomic under SQLite's WAL mode; there is no
// read-modify-write path, so no additional locking is needed.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at historyDir/history.db
// and creates the schema if it does not exist (R1.2).
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
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
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			subject_class TEXT NOT NULL,
			component TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			ordinal INTEGER NOT NULL,
			temperature REAL NOT NULL,
			max_tokens INTEGER NOT NULL,
			frequency_penalty REAL NOT NULL DEFAULT 0,
			presence_penalty REAL NOT NULL DEFAULT 0,
			voice_strength REAL NOT NULL DEFAULT 0,
			tone TEXT NOT NULL DEFAULT 'neutral',
			enrich_details INTEGER NOT NULL DEFAULT 0,
			enrich_keywords INTEGER NOT NULL DEFAULT 0,
			min_accept_score REAL NOT NULL DEFAULT 0,
			text TEXT NOT NULL DEFAULT '',
			pattern_score REAL NOT NULL DEFAULT 0,
			pattern_available INTEGER NOT NULL DEFAULT 0,
			voice_score REAL NOT NULL DEFAULT 0,
			voice_available INTEGER NOT NULL DEFAULT 0,
			structural_score REAL NOT NULL DEFAULT 0,
			structural_available INTEGER NOT NULL DEFAULT 0,
			composite REAL NOT NULL DEFAULT 0,
			generator_failed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_class_component
			ON attempts(subject_class, component)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id)`,
		`CREATE TABLE IF NOT EXISTS issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			component TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			severity INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_target ON issues(subject, component)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attempt_id INTEGER NOT NULL REFERENCES attempts(id),
			outcome REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_attempt ON outcomes(attempt_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return s.migrate()
}

// migrate applies additive schema changes to databases created by earlier
// releases. Schema evolution is additive-only (R1.3).
func (s *Store) migrate() error {
	// Token accounting columns arrived after the initial schema.
	for _, col := range []struct{ name, ddl string }{
		{"input_tokens", `ALTER TABLE attempts ADD COLUMN input_tokens INTEGER NOT NULL DEFAULT 0`},
		{"output_tokens", `ALTER TABLE attempts ADD COLUMN output_tokens INTEGER NOT NULL DEFAULT 0`},
	} {
		var n int
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM pragma_table_info('attempts') WHERE name = ?`, col.name,
		).Scan(&n); err != nil {
			return fmt.Errorf("checking column %s: %w", col.name, err)
		}
		if n == 0 {
			if _, err := s.db.Exec(col.ddl); err != nil {
				return fmt.Errorf("adding column %s: %w", col.name, err)
			}
		}
	}
	return nil
}

// AppendAttempt inserts one attempt record and fills in its assigned ID.
// Attempts are never updated or deleted (R1.1).
func (s *Store) AppendAttempt(ctx context.Context, a *types.GenerationAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (
			session_id, subject, subject_class, component, domain, ordinal,
			temperature, max_tokens, frequency_penalty, presence_penalty,
			voice_strength, tone, enrich_details, enrich_keywords, min_accept_score,
			text, pattern_score, pattern_available, voice_score, voice_available,
			structural_score, structural_available, composite,
			generator_failed, input_tokens, output_tokens, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.SessionID, a.Subject, a.SubjectClass, a.Component, a.Domain, a.Ordinal,
		a.Parameters.Temperature, a.Parameters.MaxTokens,
		a.Parameters.FrequencyPenalty, a.Parameters.PresencePenalty,
		a.Parameters.VoiceStrength, a.Parameters.Tone,
		boolInt(a.Parameters.EnrichDetails), boolInt(a.Parameters.EnrichKeywords),
		a.Parameters.MinAcceptScore,
		a.Text,
		a.Score.Pattern.Value, boolInt(a.Score.Pattern.Available),
		a.Score.Voice.Value, boolInt(a.Score.Voice.Available),
		a.Score.Structural.Value, boolInt(a.Score.Structural.Available),
		a.Score.Composite,
		boolInt(a.GeneratorFailed), a.Usage.InputTokens, a.Usage.OutputTokens,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	return nil
}

// QueryOptions filters attempt history reads. Zero values mean "no filter".
type QueryOptions struct {
	// SubjectClass filters by subject class.
	SubjectClass string

	// Component filters by component type.
	Component string

	// Domain filters by publication domain.
	Domain string

	// Since restricts to attempts created at or after the given time.
	Since time.Time

	// IncludeFailed includes attempts where the generator returned no
	// text. Learning components normally leave this off.
	IncludeFailed bool

	// Limit caps the result count; zero means unlimited.
	Limit int
}

// Attempts reads history matching opts, newest first.
func (s *Store) Attempts(ctx context.Context, opts QueryOptions) ([]types.GenerationAttempt, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, session_id, subject, subject_class, component, domain, ordinal,
			temperature, max_tokens, frequency_penalty, presence_penalty,
			voice_strength, tone, enrich_details, enrich_keywords, min_accept_score,
			text, pattern_score, pattern_available, voice_score, voice_available,
			structural_score, structural_available, composite,
			generator_failed, input_tokens, output_tokens, created_at
		FROM attempts WHERE 1=1`)

	if opts.SubjectClass != "" {
		qb.WriteString(` AND subject_class = ?`)
		args = append(args, opts.SubjectClass)
	}
	if opts.Component != "" {
		qb.WriteString(` AND component = ?`)
		args = append(args, opts.Component)
	}
	if opts.Domain != "" {
		qb.WriteString(` AND domain = ?`)
		args = append(args, opts.Domain)
	}
	if !opts.Since.IsZero() {
		qb.WriteString(` AND created_at >= ?`)
		args = append(args, opts.Since.UTC())
	}
	if !opts.IncludeFailed {
		qb.WriteString(` AND generator_failed = 0`)
	}
	qb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var out []types.GenerationAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(rows *sql.Rows) (types.GenerationAttempt, error) {
	var (
		a                                  types.GenerationAttempt
		enrichDetails, enrichKeywords      int
		patternAvail, voiceAvail, strAvail int
		failed                             int
	)
	err := rows.Scan(
		&a.ID, &a.SessionID, &a.Subject, &a.SubjectClass, &a.Component, &a.Domain, &a.Ordinal,
		&a.Parameters.Temperature, &a.Parameters.MaxTokens,
		&a.Parameters.FrequencyPenalty, &a.Parameters.PresencePenalty,
		&a.Parameters.VoiceStrength, &a.Parameters.Tone,
		&enrichDetails, &enrichKeywords, &a.Parameters.MinAcceptScore,
		&a.Text,
		&a.Score.Pattern.Value, &patternAvail,
		&a.Score.Voice.Value, &voiceAvail,
		&a.Score.Structural.Value, &strAvail,
		&a.Score.Composite,
		&failed, &a.Usage.InputTokens, &a.Usage.OutputTokens, &a.CreatedAt,
	)
	if err != nil {
		return a, fmt.Errorf("scanning attempt: %w", err)
	}
	a.Parameters.EnrichDetails = enrichDetails != 0
	a.Parameters.EnrichKeywords = enrichKeywords != 0
	a.Score.Pattern.Available = patternAvail != 0
	a.Score.Voice.Available = voiceAvail != 0
	a.Score.Structural.Available = strAvail != 0
	a.GeneratorFailed = failed != 0
	return a, nil
}

// AppendIssue inserts one validation issue record. Issues are write-once (R2.1).
func (s *Store) AppendIssue(ctx context.Context, is *types.ValidationIssue) error {
	if is.CreatedAt.IsZero() {
		is.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO issues (subject, component, domain, category, message, severity, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		is.Subject, is.Component, is.Domain, is.Category, is.Message, int(is.Severity), is.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}
	is.ID, _ = res.LastInsertId()
	return nil
}

// Issues reads validation issues recorded at or after since, optionally
// filtered by domain.
func (s *Store) Issues(ctx context.Context, since time.Time, domain string) ([]types.ValidationIssue, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, subject, component, domain, category, message, severity, created_at
		FROM issues WHERE 1=1`)
	if !since.IsZero() {
		qb.WriteString(` AND created_at >= ?`)
		args = append(args, since.UTC())
	}
	if domain != "" {
		qb.WriteString(` AND domain = ?`)
		args = append(args, domain)
	}
	qb.WriteString(` ORDER BY created_at`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	var out []types.ValidationIssue
	for rows.Next() {
		var (
			is  types.ValidationIssue
			sev int
		)
		if err := rows.Scan(&is.ID, &is.Subject, &is.Component, &is.Domain,
			&is.Category, &is.Message, &sev, &is.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}
		is.Severity = types.Severity(sev)
		out = append(out, is)
	}
	return out, rows.Err()
}

// RecordOutcome attaches an editorial ground-truth score in [0, 100] to an
// existing attempt. Outcomes live in their own append-only table so
// attempt rows stay immutable (R3.1).
func (s *Store) RecordOutcome(ctx context.Context, attemptID int64, outcome float64) error {
	if outcome < 0 || outcome > 100 {
		return fmt.Errorf("outcome %v out of range [0, 100]", outcome)
	}
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE id = ?`, attemptID).Scan(&exists); err != nil {
		return fmt.Errorf("checking attempt %d: %w", attemptID, err)
	}
	if exists == 0 {
		return fmt.Errorf("attempt %d not found", attemptID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (attempt_id, outcome, created_at) VALUES (?,?,?)`,
		attemptID, outcome, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting outcome: %w", err)
	}
	return nil
}

// OutcomeSample pairs an attempt's subscores with its recorded ground
// truth, for weight fitting. When an attempt has multiple outcomes the
// latest wins.
type OutcomeSample struct {
	Score   types.QualityScore
	Outcome float64
}

// OutcomeSamples reads all attempts with recorded ground truth at or after
// since.
func (s *Store) OutcomeSamples(ctx context.Context, since time.Time) ([]OutcomeSample, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT a.pattern_score, a.pattern_available, a.voice_score, a.voice_available,
			a.structural_score, a.structural_available, o.outcome
		FROM attempts a
		JOIN outcomes o ON o.attempt_id = a.id
		WHERE o.id = (SELECT MAX(id) FROM outcomes WHERE attempt_id = a.id)
			AND a.generator_failed = 0`)
	if !since.IsZero() {
		qb.WriteString(` AND a.created_at >= ?`)
		args = append(args, since.UTC())
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying outcome samples: %w", err)
	}
	defer rows.Close()

	var out []OutcomeSample
	for rows.Next() {
		var (
			sample                             OutcomeSample
			patternAvail, voiceAvail, strAvail int
		)
		if err := rows.Scan(
			&sample.Score.Pattern.Value, &patternAvail,
			&sample.Score.Voice.Value, &voiceAvail,
			&sample.Score.Structural.Value, &strAvail,
			&sample.Outcome,
		); err != nil {
			return nil, fmt.Errorf("scanning outcome sample: %w", err)
		}
		sample.Score.Pattern.Available = patternAvail != 0
		sample.Score.Voice.Available = voiceAvail != 0
		sample.Score.Structural.Available = strAvail != 0
		out = append(out, sample)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
