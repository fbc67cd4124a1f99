// Package llm provides the text-generation clients used by the content
// generator.
//
// Two backends implement Generator:
//   - Client: any OpenAI-compatible chat completions endpoint (OpenRouter by
//     default). Requests carry {model, max_tokens, messages}.
//   - GeminiClient: Google's Gemini API through google.golang.org/genai.
//
// # Retry Behaviour
//
// Every Generate call runs inside a bounded loop: up to the configured number
// of attempts with a fixed delay between them. Non-2xx responses, transport
// errors, and empty completions are all retried; context cancellation aborts
// immediately. The sleep function is injectable so tests can count attempts
// without waiting.
//
// # Decoding
//
// DecodeLLMJSON tolerates markdown code fences and prose around the JSON
// payload, which models routinely add despite instructions.
package llm
