// Package generation is the boundary between the application and the LLM
// used for translations, journal feedback, lessons and writing exercises.
//
// TextGenerator is the single capability a provider must offer: turn a prompt
// into text. Assistant builds the prompts from embedded templates and shapes
// the replies for the services that use them. The Gemini implementation lives
// in internal/platform/gemini.
package generation
