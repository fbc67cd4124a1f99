// Package generator turns a placeholder file into a complete story by
// prompting a text-generation backend three ways: once for the title, once
// for the passage, and once per batch of questions.
//
// Question responses are decoded leniently (code fences and surrounding prose
// are stripped) but validated strictly at the boundary: every item needs
// question text, exactly four options, and a correctAnswer in range. A
// response that fails those checks aborts the story with services.ErrParse.
// Generation failures are not retried here; the llm client already retries
// each request.
package generator
