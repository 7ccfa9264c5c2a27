package models

// Route classifies a text query into exactly one prompt-construction outcome.
type Route string

const (
	// RouteGreeting matched the greeting phrase list; retrieval is skipped.
	RouteGreeting Route = "greeting"
	// RouteGrounded had sufficient retrieved context above the similarity threshold.
	RouteGrounded Route = "grounded"
	// RouteUngrounded had no retrieved context above the threshold.
	RouteUngrounded Route = "ungrounded"
)

// PromptSpec is a fully assembled generation request: the prompt string plus
// the generation parameters the route calls for.
type PromptSpec struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}
