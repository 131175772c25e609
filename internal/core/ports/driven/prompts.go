package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSystem is the system prompt for answer synthesis.
	// It has no placeholders.
	PromptSystem = "system"

	// PromptHuman is the user turn template.
	// It expects {context} and {question} placeholders.
	PromptHuman = "human"
)
