package story

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QuestionsPerStory is the number of questions every finished story carries.
const QuestionsPerStory = 25

// OptionsPerQuestion is the number of answer options on every question.
const OptionsPerQuestion = 4

// Option is one answer choice.
type Option struct {
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

// Metadata carries story-derived fields repeated on each question.
type Metadata struct {
	Topic          string `json:"topic"`
	Position       int    `json:"position"`
	TotalQuestions int    `json:"totalQuestions"`
	WordCount      int    `json:"wordCount"`
	EstimatedTime  int    `json:"estimatedTime"`
}

// Question is a fully generated multiple-choice question.
type Question struct {
	ID                 string     `json:"questionId"`
	Text               string     `json:"text"`
	Options            []Option   `json:"options"`
	CorrectAnswer      int        `json:"correctAnswer"`
	Difficulty         Difficulty `json:"difficulty"`
	DifficultyScore    int        `json:"difficultyScore"`
	Explanation        string     `json:"explanation"`
	Hint               string     `json:"hint"`
	ParagraphReference string     `json:"paragraphReference"`
	QuestionType       string     `json:"questionType"`
	Skills             []string   `json:"skills"`
	Tags               []string   `json:"tags"`
	Metadata           Metadata   `json:"metadata"`
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]Option(nil), q.Options...)
	out.Skills = append([]string(nil), q.Skills...)
	out.Tags = append([]string(nil), q.Tags...)
	return out
}

// Skeleton is the partial question found in a placeholder file.
type Skeleton struct {
	ID           string `json:"questionId"`
	QuestionType string `json:"questionType"`
}

// Story is one generated reading passage with its questions.
type Story struct {
	Title         string     `json:"title"`
	Topic         string     `json:"topic"`
	Difficulty    Difficulty `json:"difficulty"`
	Passage       string     `json:"passage"`
	WordCount     int        `json:"wordCount"`
	Questions     []Question `json:"questions"`
	EstimatedTime int        `json:"estimatedTime"`
}

// Summary is the compact description written next to a story.
type Summary struct {
	Title         string     `json:"title"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
	WordCount     int        `json:"wordCount"`
	QuestionCount int        `json:"questionCount"`
	EstimatedTime int        `json:"estimatedTime"`
}

// Summary derives the story summary.
func (s Story) Summary() Summary {
	return Summary{
		Title:         s.Title,
		Difficulty:    s.Difficulty,
		Topic:         s.Topic,
		WordCount:     s.WordCount,
		QuestionCount: len(s.Questions),
		EstimatedTime: s.EstimatedTime,
	}
}

// Finalize recomputes every story-derived field: word count, estimated time,
// per-question metadata, difficulty score, skills, and tags.
func (s *Story) Finalize(catalog *Catalog) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	s.WordCount = CountWords(s.Passage)
	s.EstimatedTime = EstimatedTime(s.WordCount, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		q.Difficulty = s.Difficulty
		q.DifficultyScore = s.Difficulty.Score()
		entry := catalog.Lookup(q.QuestionType)
		q.QuestionType = entry.Type
		q.Skills = append([]string(nil), entry.Skills...)
		q.Tags = append([]string(nil), entry.Tags...)
		q.Metadata = Metadata{
			Topic:          s.Topic,
			Position:       i + 1,
			TotalQuestions: len(s.Questions),
			WordCount:      s.WordCount,
			EstimatedTime:  s.EstimatedTime,
		}
	}
}

// QuestionID formats the identifier of the n-th (1-based) question of a story.
func QuestionID(storyIndex, n int) string {
	return fmt.Sprintf("S%d_Q%d", storyIndex, n)
}

var questionIDPattern = regexp.MustCompile(`^S\d+_Q\d+$`)

// ValidQuestionID reports whether id has the S<story>_Q<n> shape.
func ValidQuestionID(id string) bool {
	return questionIDPattern.MatchString(id)
}

var paragraphMarker = regexp.MustCompile(`\[\d+\]`)

// CountWords counts the words of passage, ignoring paragraph markers.
func CountWords(passage string) int {
	return len(strings.Fields(paragraphMarker.ReplaceAllString(passage, " ")))
}

// EstimatedTime returns the minutes needed to read wordCount words at 200
// words per minute plus one minute per question, never less than one.
func EstimatedTime(wordCount, questions int) int {
	minutes := 0
	if wordCount > 0 {
		minutes = (wordCount + 199) / 200
	}
	minutes += questions
	if minutes < 1 {
		return 1
	}
	return minutes
}

var titleCaser = cases.Title(language.English)

// DisplayTopic turns a CamelCase topic key into words, e.g. "ClimateChange"
// becomes "Climate Change".
func DisplayTopic(topic string) string {
	var words []string
	var current []rune
	for _, r := range topic {
		if r >= 'A' && r <= 'Z' && len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return titleCaser.String(strings.ToLower(strings.Join(words, " ")))
}
