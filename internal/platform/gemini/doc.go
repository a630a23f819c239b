// Package gemini implements generation.TextGenerator on Google's Gemini API
// through google.golang.org/genai.
//
// Calls are retried with exponential backoff and jitter when the failure is
// transient (network errors, 429 and 5xx responses). Safety blocks and
// malformed replies are returned immediately. When no API key is configured,
// New returns a generator that fails every call with
// generation.ErrUnavailable so the rest of the application keeps working.
package gemini
