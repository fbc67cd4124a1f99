// Package shuffle randomizes the order of answer options so the correct
// answer is not predictable from its position, keeping correctAnswer and the
// explanation's option letters consistent with the new order.
package shuffle

import (
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"

	"storygen/internal/logging"
	"storygen/internal/story"
)

// Outcome reports what Shuffle did to a question.
type Outcome struct {
	Shuffled bool
	// Reason explains a skipped shuffle.
	Reason string
}

// Shuffler permutes answer options with an injected random source.
type Shuffler struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// New constructs a Shuffler. A nil rng draws a randomly seeded source.
func New(rng *rand.Rand, logger *slog.Logger) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Shuffler{rng: rng, logger: logging.NewComponentLogger(logger, "shuffle")}
}

// Shuffle returns q with its options permuted. The question is returned
// unchanged when the correct option cannot be tracked by its text.
func (s *Shuffler) Shuffle(q story.Question) (story.Question, Outcome) {
	if reason := unshuffleable(q); reason != "" {
		return s.skip(q, reason)
	}
	correctText := q.Options[q.CorrectAnswer].Text

	// order[newPos] = oldPos
	order := make([]int, len(q.Options))
	for i := range order {
		order[i] = i
	}
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	out := q.Clone()
	newPos := make([]int, len(order))
	for to, from := range order {
		out.Options[to] = q.Options[from]
		newPos[from] = to
	}
	correct := indexOf(out.Options, correctText)
	if correct < 0 {
		return s.skip(q, "correct option lost after permutation")
	}
	out.CorrectAnswer = correct
	out.Explanation = RemapLetters(q.Explanation, newPos)
	return out, Outcome{Shuffled: true}
}

// ShuffleAll shuffles every question and returns the results with the
// number of questions left unchanged.
func (s *Shuffler) ShuffleAll(questions []story.Question) ([]story.Question, int) {
	out := make([]story.Question, len(questions))
	skipped := 0
	for i, q := range questions {
		var outcome Outcome
		out[i], outcome = s.Shuffle(q)
		if !outcome.Shuffled {
			skipped++
		}
	}
	return out, skipped
}

func (s *Shuffler) skip(q story.Question, reason string) (story.Question, Outcome) {
	logging.WarnWithContext(s.logger, "option shuffle skipped", "shuffle_skipped",
		logging.String("question_id", q.ID),
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "review the question's options"),
		logging.String(logging.FieldImpact, "options keep their generated order"),
	)
	return q, Outcome{Reason: reason}
}

func unshuffleable(q story.Question) string {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return "correct answer index out of range"
	}
	correctText := q.Options[q.CorrectAnswer].Text
	if strings.TrimSpace(correctText) == "" {
		return "correct option has no text"
	}
	for i, opt := range q.Options {
		if i != q.CorrectAnswer && opt.Text == correctText {
			return "correct option text is duplicated"
		}
	}
	return ""
}

func indexOf(options []story.Option, text string) int {
	for i, opt := range options {
		if opt.Text == text {
			return i
		}
	}
	return -1
}

// "answer a" is usually prose, so the answer keyword only takes capitals.
var letterReference = regexp.MustCompile(`\b(?i:option|choice)\s+([A-Da-d])\b|\b(?i:answer)\s+([A-D])\b|\(([A-Da-d])\)`)

// RemapLetters rewrites option letter references such as "Option B",
// "choice c", "answer C" and "(d)" through newPos, where newPos[old] is the new
// index of the option formerly at old. Rewritten letters keep their case, and
// every reference is rewritten in a single pass.
func RemapLetters(text string, newPos []int) string {
	remap := func(letter byte) byte {
		base := byte('A')
		if letter >= 'a' {
			base = 'a'
		}
		old := int(letter - base)
		if old < 0 || old >= len(newPos) {
			return letter
		}
		return base + byte(newPos[old])
	}
	matches := letterReference.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		pos := -1
		for g := 2; g+1 < len(m); g += 2 {
			if m[g] >= 0 {
				pos = m[g]
				break
			}
		}
		b.WriteString(text[last:pos])
		b.WriteByte(remap(text[pos]))
		last = pos + 1
	}
	b.WriteString(text[last:])
	return b.String()
}
