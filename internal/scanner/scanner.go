package scanner

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"storygen/internal/logging"
	"storygen/internal/services"
	"storygen/internal/story"
)

// DefaultSentinel marks files that still need generated content.
const DefaultSentinel = "PLACEHOLDER_CONTENT"

var fileNamePattern = regexp.MustCompile(`^(easy|medium|hard)([A-Z][A-Za-z]*)ReadingQuestions\.(ts|tsx|js)$`)

// Scanner lists placeholder files in a content directory.
type Scanner struct {
	sentinel  string
	questions int
	catalog   *story.Catalog
	logger    *slog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithSentinel overrides the placeholder marker.
func WithSentinel(sentinel string) Option {
	return func(s *Scanner) {
		if strings.TrimSpace(sentinel) != "" {
			s.sentinel = sentinel
		}
	}
}

// WithQuestionsPerStory overrides how many skeletons each story carries.
func WithQuestionsPerStory(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.questions = n
		}
	}
}

// WithCatalog overrides the question-type catalog used for reconstruction.
func WithCatalog(c *story.Catalog) Option {
	return func(s *Scanner) {
		if c != nil {
			s.catalog = c
		}
	}
}

// New constructs a Scanner.
func New(logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scanner{
		sentinel:  DefaultSentinel,
		questions: story.QuestionsPerStory,
		catalog:   story.DefaultCatalog(),
		logger:    logging.NewComponentLogger(logger, "scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseFileName extracts difficulty and topic from a content file name.
func ParseFileName(name string) (story.Difficulty, string, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return story.Difficulty(m[1]), m[2], true
}

// Scan returns every matching file in dir in lexical order with 1-based story
// indexes. A missing directory yields an empty list and a logged error.
func (s *Scanner) Scan(dir string) ([]story.PlaceholderFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.ErrorWithContext(s.logger, "content directory not found", "content_dir_missing",
				logging.String("dir", dir),
				logging.String(logging.FieldErrorHint, "check paths.content_dir in the config file"),
			)
			return nil, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "scan", "read dir", "Failed to list content directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, ok := ParseFileName(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]story.PlaceholderFile, 0, len(names))
	for i, name := range names {
		difficulty, topic, _ := ParseFileName(name)
		file := story.PlaceholderFile{
			Path:       filepath.Join(dir, name),
			Topic:      topic,
			Difficulty: difficulty,
			StoryIndex: i + 1,
		}
		data, err := os.ReadFile(file.Path)
		if err != nil {
			logging.WarnWithContext(s.logger, "content file unreadable; skipping", "content_file_unreadable",
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "story will not be generated this run"),
			)
			continue
		}
		if strings.Contains(string(data), s.sentinel) {
			file.State = story.Pending
			file.Skeletons, file.Reconstructed = s.LoadSkeleton(file.Path, file.StoryIndex)
		} else {
			file.State = story.Filled
			s.logger.Info("content file already filled",
				logging.String("file", name),
				logging.Int(logging.FieldStoryIndex, file.StoryIndex),
			)
		}
		files = append(files, file)
	}
	s.logger.Info("content scan complete",
		logging.String("dir", dir),
		logging.Int("files", len(files)),
		logging.Int("pending", len(Pending(files))),
	)
	return files, nil
}

// Pending filters files down to those that still need generation.
func Pending(files []story.PlaceholderFile) []story.PlaceholderFile {
	var out []story.PlaceholderFile
	for _, f := range files {
		if f.HasPlaceholders() {
			out = append(out, f)
		}
	}
	return out
}

// LoadSkeleton reads the questions export of path. When it cannot be parsed a
// default skeleton is synthesized and reconstructed is true.
func (s *Scanner) LoadSkeleton(path string, storyIndex int) (skeletons []story.Skeleton, reconstructed bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logReconstruction(filepath.Base(path), storyIndex, err)
		return s.defaultSkeleton(storyIndex), true
	}
	return s.skeletonFromContent(data, storyIndex, filepath.Base(path))
}

func (s *Scanner) skeletonFromContent(data []byte, storyIndex int, name string) ([]story.Skeleton, bool) {
	parsed, err := ParseQuestionsExport(string(data))
	if err == nil && len(parsed) == 0 {
		err = errors.New("questions export is empty")
	}
	if err != nil {
		s.logReconstruction(name, storyIndex, err)
		return s.defaultSkeleton(storyIndex), true
	}
	return s.normalizeSkeleton(parsed, storyIndex), false
}

func (s *Scanner) logReconstruction(name string, storyIndex int, err error) {
	logging.WarnWithContext(s.logger, "question skeleton reconstructed", "skeleton_reconstructed",
		logging.String("file", name),
		logging.Int(logging.FieldStoryIndex, storyIndex),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the questions export of the placeholder file"),
		logging.String(logging.FieldImpact, "default question types will be used"),
	)
}

func (s *Scanner) defaultSkeleton(storyIndex int) []story.Skeleton {
	out := make([]story.Skeleton, s.questions)
	for i := range out {
		out[i] = story.Skeleton{
			ID:           story.QuestionID(storyIndex, i+1),
			QuestionType: s.catalog.At(i).Type,
		}
	}
	return out
}

// normalizeSkeleton pads or truncates to the configured question count and
// backfills missing IDs and types.
func (s *Scanner) normalizeSkeleton(parsed []story.Skeleton, storyIndex int) []story.Skeleton {
	out := make([]story.Skeleton, s.questions)
	for i := range out {
		if i < len(parsed) {
			out[i] = parsed[i]
		}
		out[i].ID = strings.TrimSpace(out[i].ID)
		if !story.ValidQuestionID(out[i].ID) {
			out[i].ID = story.QuestionID(storyIndex, i+1)
		}
		if strings.TrimSpace(out[i].QuestionType) == "" {
			out[i].QuestionType = s.catalog.At(i).Type
		}
	}
	if len(parsed) != s.questions {
		s.logger.Debug("question skeleton resized",
			logging.Int(logging.FieldStoryIndex, storyIndex),
			logging.Int("found", len(parsed)),
			logging.Int("expected", s.questions),
		)
	}
	return out
}
