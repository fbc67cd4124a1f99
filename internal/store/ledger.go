package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"storygen/internal/config"
)

// Ledger records batch runs and per-story outcomes in SQLite.
type Ledger struct {
	db   *sql.DB
	path string
}

// Run is one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	ContentDir string
	Provider   string
	Model      string
	Total      int
	Succeeded  int
	Failed     int
}

// Finished reports whether the run recorded its completion.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// StoryRecord is the ledger entry for one processed story.
type StoryRecord struct {
	RunID         string
	StoryIndex    int
	File          string
	Topic         string
	Difficulty    string
	Title         string
	Success       bool
	ErrorKind     string
	ErrorMessage  string
	Warnings      []string
	QuestionCount int
	WordCount     int
	PassageID     string
	Duration      time.Duration
	CreatedAt     time.Time
}

// Open initializes or connects to the run ledger.
func Open(cfg *config.Config) (*Ledger, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.LedgerPath())
}

// OpenPath opens the ledger at an explicit path.
func OpenPath(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	ledger := &Ledger{db: db, path: dbPath}
	if err := ledger.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return ledger, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the database file location.
func (l *Ledger) Path() string {
	return l.path
}

// StartRun inserts a run row.
func (l *Ledger) StartRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	_, err := l.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, started_at, content_dir, provider, model, total)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		run.ContentDir,
		nullableString(run.Provider),
		nullableString(run.Model),
		run.Total,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordStory appends a story outcome to a run.
func (l *Ledger) RecordStory(ctx context.Context, rec StoryRecord) error {
	warnings, err := json.Marshal(rec.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err = l.db.ExecContext(
		ctx,
		`INSERT INTO story_results (
            run_id, story_index, file, topic, difficulty, title, success,
            error_kind, error_message, warnings_json, question_count, word_count,
            passage_id, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.StoryIndex,
		rec.File,
		rec.Topic,
		rec.Difficulty,
		nullableString(rec.Title),
		boolToInt(rec.Success),
		nullableString(rec.ErrorKind),
		nullableString(rec.ErrorMessage),
		string(warnings),
		rec.QuestionCount,
		rec.WordCount,
		nullableString(rec.PassageID),
		rec.Duration.Milliseconds(),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert story result: %w", err)
	}
	return nil
}

// FinishRun stores the final counts of a run.
func (l *Ledger) FinishRun(ctx context.Context, runID string, finished time.Time, total, succeeded, failed int) error {
	res, err := l.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, total = ?, succeeded = ?, failed = ? WHERE id = ?`,
		formatTime(finished),
		total,
		succeeded,
		failed,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: run %s not found", runID)
	}
	return nil
}

const runColumns = "id, started_at, finished_at, content_dir, provider, model, total, succeeded, failed"

// RecentRuns returns up to limit runs, newest first.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by identifier or prefix. Returns nil when absent.
func (l *Ledger) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	if idOrPrefix == "" {
		return nil, nil
	}
	row := l.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 1`,
		idOrPrefix, idOrPrefix+"%")
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// StoryResults returns the story outcomes of a run in processing order.
func (l *Ledger) StoryResults(ctx context.Context, runID string) ([]StoryRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, story_index, file, topic, difficulty, title, success, error_kind,
                error_message, warnings_json, question_count, word_count, passage_id,
                duration_ms, created_at
         FROM story_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query story results: %w", err)
	}
	defer rows.Close()

	var out []StoryRecord
	for rows.Next() {
		var (
			rec          StoryRecord
			title        sql.NullString
			success      int
			errorKind    sql.NullString
			errorMessage sql.NullString
			warnings     sql.NullString
			passageID    sql.NullString
			durationMS   int64
			createdRaw   string
		)
		if err := rows.Scan(
			&rec.RunID, &rec.StoryIndex, &rec.File, &rec.Topic, &rec.Difficulty, &title,
			&success, &errorKind, &errorMessage, &warnings, &rec.QuestionCount,
			&rec.WordCount, &passageID, &durationMS, &createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan story result: %w", err)
		}
		rec.Title = title.String
		rec.Success = success != 0
		rec.ErrorKind = errorKind.String
		rec.ErrorMessage = errorMessage.String
		rec.PassageID = passageID.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = parseTime(createdRaw)
		if warnings.Valid && warnings.String != "" {
			if err := json.Unmarshal([]byte(warnings.String), &rec.Warnings); err != nil {
				return nil, fmt.Errorf("decode warnings: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		startedRaw  string
		finishedRaw sql.NullString
		provider    sql.NullString
		model       sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &startedRaw, &finishedRaw, &run.ContentDir, &provider, &model,
		&run.Total, &run.Succeeded, &run.Failed,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.Provider = provider.String
	run.Model = model.String
	return run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
