package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storygen/internal/persist"
	"storygen/internal/services"
	"storygen/internal/story"
)

var questionColumns = []string{
	"id", "passage_id", "question_id", "position", "text", "options",
	"correct_answer", "difficulty", "difficulty_score", "explanation", "hint",
	"paragraph_reference", "question_type", "skills", "tags", "created_at",
}

// PostgresUploader publishes stories to the reading_passages and
// reading_questions tables.
type PostgresUploader struct {
	pool  *pgxpool.Pool
	now   func() time.Time
	newID func() uuid.UUID
}

// NewPostgresUploader connects a pool to databaseURL. The pool connects
// lazily, so an unreachable server surfaces on the first upload.
func NewPostgresUploader(ctx context.Context, databaseURL string) (*PostgresUploader, error) {
	if databaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "connect", "Database URL is empty", nil)
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "parse url", "Invalid database URL", err)
	}
	poolCfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "upload", "connect", "Could not create connection pool", err)
	}
	return &PostgresUploader{pool: pool, now: time.Now, newID: uuid.New}, nil
}

// Close releases the pool.
func (u *PostgresUploader) Close() {
	if u != nil && u.pool != nil {
		u.pool.Close()
	}
}

// UploadStory inserts the passage and its questions in one transaction.
func (u *PostgresUploader) UploadStory(ctx context.Context, s story.Story) (persist.UploadResult, error) {
	if u == nil || u.pool == nil {
		return persist.UploadResult{}, errors.New("postgres uploader not initialized")
	}
	passageID := u.newID()
	created := u.now().UTC()

	passageArgs, err := passageRow(s, passageID, created)
	if err != nil {
		return persist.UploadResult{}, err
	}
	questionRows, err := questionRows(s, passageID, created, u.newID)
	if err != nil {
		return persist.UploadResult{}, err
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return persist.UploadResult{}, services.Wrap(services.ErrUpload, "upload", "begin", "Could not start transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertPassageSQL, passageArgs...); err != nil {
		return persist.UploadResult{}, services.Wrap(services.ErrUpload, "upload", "insert passage", "Could not insert passage", err)
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"reading_questions"}, questionColumns, pgx.CopyFromRows(questionRows))
	if err != nil {
		return persist.UploadResult{}, services.Wrap(services.ErrUpload, "upload", "insert questions", "Could not insert questions", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return persist.UploadResult{}, services.Wrap(services.ErrUpload, "upload", "commit", "Could not commit story", err)
	}
	return persist.UploadResult{
		Success:           true,
		QuestionsUploaded: int(copied),
		PassageID:         passageID.String(),
	}, nil
}

const insertPassageSQL = `INSERT INTO reading_passages (
    id, title, topic, difficulty, passage, word_count, estimated_time,
    question_count, summary, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func passageRow(s story.Story, id uuid.UUID, created time.Time) ([]any, error) {
	summary, err := json.Marshal(s.Summary())
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return []any{
		id,
		s.Title,
		s.Topic,
		string(s.Difficulty),
		s.Passage,
		s.WordCount,
		s.EstimatedTime,
		len(s.Questions),
		summary,
		created,
	}, nil
}

func questionRows(s story.Story, passageID uuid.UUID, created time.Time, newID func() uuid.UUID) ([][]any, error) {
	rows := make([][]any, 0, len(s.Questions))
	for i, q := range s.Questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("encode options of %s: %w", q.ID, err)
		}
		rows = append(rows, []any{
			newID(),
			passageID,
			q.ID,
			i + 1,
			q.Text,
			options,
			q.CorrectAnswer,
			string(q.Difficulty),
			q.DifficultyScore,
			q.Explanation,
			q.Hint,
			q.ParagraphReference,
			q.QuestionType,
			q.Skills,
			q.Tags,
			created,
		})
	}
	return rows, nil
}
