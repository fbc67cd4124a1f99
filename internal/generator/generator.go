package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storygen/internal/logging"
	"storygen/internal/services"
	"storygen/internal/services/llm"
	"storygen/internal/story"
)

const (
	defaultBatchSize  = 5
	defaultBatchDelay = time.Second
)

// Generator produces titles, passages, and questions for placeholder files.
type Generator struct {
	client     llm.Generator
	catalog    *story.Catalog
	batchSize  int
	batchDelay time.Duration
	sleeper    func(time.Duration)
	logger     *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithBatchSize overrides how many questions are requested per prompt.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batchSize = n
		}
	}
}

// WithBatchDelay overrides the pause between question batches.
func WithBatchDelay(d time.Duration) Option {
	return func(g *Generator) {
		if d >= 0 {
			g.batchDelay = d
		}
	}
}

// WithSleeper overrides how batch delays are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(g *Generator) {
		g.sleeper = sleeper
	}
}

// WithCatalog overrides the question-type catalog.
func WithCatalog(c *story.Catalog) Option {
	return func(g *Generator) {
		if c != nil {
			g.catalog = c
		}
	}
}

// New constructs a Generator backed by client.
func New(client llm.Generator, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	g := &Generator{
		client:     client,
		catalog:    story.DefaultCatalog(),
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
		logger:     logging.NewComponentLogger(logger, "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces the complete story for file: title, then passage, then
// questions for every skeleton.
func (g *Generator) Generate(ctx context.Context, file story.PlaceholderFile) (story.Story, error) {
	title, err := g.GenerateTitle(ctx, file.Topic, file.Difficulty)
	if err != nil {
		return story.Story{}, err
	}
	passage, err := g.GeneratePassage(ctx, file.Topic, file.Difficulty, title)
	if err != nil {
		return story.Story{}, err
	}
	questions, err := g.GenerateQuestions(ctx, passage, file.Topic, file.Difficulty, title, file.Skeletons)
	if err != nil {
		return story.Story{}, err
	}
	s := story.Story{
		Title:      title,
		Topic:      file.Topic,
		Difficulty: file.Difficulty,
		Passage:    passage,
		Questions:  questions,
	}
	s.Finalize(g.catalog)
	return s, nil
}

// GenerateTitle asks for a story title and strips surrounding quotes.
func (g *Generator) GenerateTitle(ctx context.Context, topic string, difficulty story.Difficulty) (string, error) {
	ctx = services.WithStage(ctx, "title")
	raw, err := g.client.Generate(ctx, titlePrompt(topic, difficulty))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "generate", "title", "Title generation failed", err)
	}
	title := CleanTitle(raw)
	if title == "" {
		return "", services.Wrap(services.ErrParse, "generate", "title", "Title response was empty", nil)
	}
	logging.WithContext(ctx, g.logger).Debug("title generated", logging.String("title", title))
	return title, nil
}

// GeneratePassage asks for a passage of the difficulty's target length with
// numbered paragraph markers.
func (g *Generator) GeneratePassage(ctx context.Context, topic string, difficulty story.Difficulty, title string) (string, error) {
	ctx = services.WithStage(ctx, "passage")
	raw, err := g.client.Generate(ctx, passagePrompt(topic, difficulty, title))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "generate", "passage", "Passage generation failed", err)
	}
	passage := strings.TrimSpace(raw)
	if passage == "" {
		return "", services.Wrap(services.ErrParse, "generate", "passage", "Passage response was empty", nil)
	}
	logging.WithContext(ctx, g.logger).Debug("passage generated",
		logging.Int("word_count", story.CountWords(passage)),
		logging.Int("target_word_count", difficulty.TargetWordCount()),
	)
	return passage, nil
}

type batchItem struct {
	number   int
	skeleton story.Skeleton
	kind     story.QuestionType
}

// GenerateQuestions fills skeletons in batches. Any decode or schema failure
// aborts the whole set.
func (g *Generator) GenerateQuestions(
	ctx context.Context,
	passage, topic string,
	difficulty story.Difficulty,
	title string,
	skeletons []story.Skeleton,
) ([]story.Question, error) {
	ctx = services.WithStage(ctx, "questions")
	logger := logging.WithContext(ctx, g.logger)
	if len(skeletons) == 0 {
		return nil, services.Wrap(services.ErrValidation, "generate", "questions", "No question skeletons to fill", nil)
	}

	questions := make([]story.Question, 0, len(skeletons))
	batches := (len(skeletons) + g.batchSize - 1) / g.batchSize
	for b := 0; b < batches; b++ {
		start := b * g.batchSize
		end := min(start+g.batchSize, len(skeletons))
		batch := make([]batchItem, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, batchItem{
				number:   i + 1,
				skeleton: skeletons[i],
				kind:     g.catalog.Lookup(skeletons[i].QuestionType),
			})
		}

		raw, err := g.client.Generate(ctx, questionsPrompt(passage, topic, difficulty, title, batch))
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "generate", "questions",
				fmt.Sprintf("Question batch %d/%d failed", b+1, batches), err)
		}
		filled, err := parseBatch(raw, batch)
		if err != nil {
			return nil, services.Wrap(services.ErrParse, "generate", "questions",
				fmt.Sprintf("Question batch %d/%d could not be parsed", b+1, batches), err)
		}
		questions = append(questions, filled...)
		logger.Debug("question batch generated",
			logging.Int("batch", b+1),
			logging.Int("batches", batches),
			logging.Int("questions", len(filled)),
		)

		if b < batches-1 {
			if err := g.pause(ctx); err != nil {
				return nil, err
			}
		}
	}
	return questions, nil
}

func parseBatch(raw string, batch []batchItem) ([]story.Question, error) {
	var items []rawQuestion
	if err := llm.DecodeLLMJSON(raw, &items); err != nil {
		return nil, err
	}
	if len(items) < len(batch) {
		return nil, fmt.Errorf("expected %d questions, got %d", len(batch), len(items))
	}

	byNumber := make(map[int]rawQuestion, len(items))
	for _, item := range items {
		if _, dup := byNumber[item.QuestionNumber]; !dup {
			byNumber[item.QuestionNumber] = item
		}
	}
	numbered := true
	for _, item := range batch {
		if _, ok := byNumber[item.number]; !ok {
			numbered = false
			break
		}
	}

	out := make([]story.Question, 0, len(batch))
	for i, item := range batch {
		source := items[i]
		if numbered {
			source = byNumber[item.number]
		}
		q, err := coerce(source, item.number)
		if err != nil {
			return nil, err
		}
		q.ID = item.skeleton.ID
		q.QuestionType = item.kind.Type
		out = append(out, q)
	}
	return out, nil
}

func (g *Generator) pause(ctx context.Context) error {
	if g.batchDelay <= 0 {
		return nil
	}
	if g.sleeper != nil {
		g.sleeper(g.batchDelay)
		return ctx.Err()
	}
	timer := time.NewTimer(g.batchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var titleQuotes = []struct{ open, close string }{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
	{"`", "`"},
}

// CleanTitle keeps the first non-empty line of raw, drops a leading "Title:"
// label and markdown emphasis, and strips matching surrounding quotes.
func CleanTitle(raw string) string {
	title := ""
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			title = line
			break
		}
	}
	if len(title) >= 6 && strings.EqualFold(title[:6], "title:") {
		title = strings.TrimSpace(title[6:])
	}
	title = strings.TrimSpace(strings.Trim(title, "*#"))
	for changed := true; changed; {
		changed = false
		for _, q := range titleQuotes {
			if len(title) >= len(q.open)+len(q.close) && strings.HasPrefix(title, q.open) && strings.HasSuffix(title, q.close) {
				title = strings.TrimSpace(title[len(q.open) : len(title)-len(q.close)])
				changed = true
			}
		}
	}
	return title
}
