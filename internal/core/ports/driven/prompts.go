package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system prompt that asks for a JSON answer
	// with confidence and numbered source citations.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser carries the question and the numbered sources.
	// It expects {{question}} and {{context}} placeholders.
	PromptAnswerUser = "answer_user"
)
