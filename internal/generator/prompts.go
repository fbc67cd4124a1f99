package generator

import (
	"fmt"
	"strings"

	"storygen/internal/story"
)

func titlePrompt(topic string, difficulty story.Difficulty) string {
	var b strings.Builder
	b.WriteString("You are writing material for an English reading-comprehension exam.\n\n")
	fmt.Fprintf(&b, "Suggest one original, engaging title for a story about %s.\n", story.DisplayTopic(topic))
	fmt.Fprintf(&b, "The story is for %s.\n", difficulty.Descriptor())
	b.WriteString("The title should be 3 to 8 words long.\n\n")
	b.WriteString("Reply with the title only, without quotes or commentary.")
	return b.String()
}

func passagePrompt(topic string, difficulty story.Difficulty, title string) string {
	var b strings.Builder
	b.WriteString("You are writing material for an English reading-comprehension exam.\n\n")
	fmt.Fprintf(&b, "Write the passage for a story titled %q about %s.\n", title, story.DisplayTopic(topic))
	fmt.Fprintf(&b, "Audience: %s.\n", difficulty.Descriptor())
	fmt.Fprintf(&b, "Length: about %d words (between %d and %d).\n",
		difficulty.TargetWordCount(),
		difficulty.TargetWordCount()-story.WordCountTolerance,
		difficulty.TargetWordCount()+story.WordCountTolerance,
	)
	b.WriteString("Split the passage into 4 to 6 paragraphs and start each paragraph with its number in brackets: [1], [2], [3] and so on.\n")
	b.WriteString("Include concrete facts, a clear main idea, at least one opinion, and vocabulary that can be tested in context.\n\n")
	b.WriteString("Reply with the passage only. Do not repeat the title.")
	return b.String()
}

func questionsPrompt(passage, topic string, difficulty story.Difficulty, title string, batch []batchItem) string {
	var b strings.Builder
	b.WriteString("You are writing multiple-choice reading-comprehension questions for an English exam.\n\n")
	fmt.Fprintf(&b, "Story title: %s\n", title)
	fmt.Fprintf(&b, "Topic: %s\n", story.DisplayTopic(topic))
	fmt.Fprintf(&b, "Level: %s\n\n", difficulty.Descriptor())
	b.WriteString("Passage:\n")
	b.WriteString(passage)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Write exactly %d questions, one for each instruction below:\n", len(batch))
	for _, item := range batch {
		fmt.Fprintf(&b, "Question %d [%s] %s Skills: %s.\n",
			item.number,
			item.kind.Type,
			item.kind.Instruction,
			strings.Join(item.kind.Skills, ", "),
		)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Every question has exactly 4 options and exactly one of them is correct.\n")
	b.WriteString("- Every option has a one-sentence rationale explaining why it is right or wrong.\n")
	b.WriteString("- correctAnswer is the 0-based index of the correct option.\n")
	b.WriteString("- In explanations, refer to options as Option A, Option B, Option C and Option D.\n")
	b.WriteString("- paragraphReference names the paragraph the answer depends on, e.g. \"[2]\".\n")
	b.WriteString("- hint nudges the reader towards the answer without giving it away.\n")
	b.WriteString("- Question texts must all be different.\n\n")
	b.WriteString("Respond with JSON only: an array of objects with the keys ")
	b.WriteString(`"questionNumber", "text", "options" (array of 4 objects with "text" and "rationale"), `)
	b.WriteString(`"correctAnswer", "explanation", "hint" and "paragraphReference".`)
	return b.String()
}
