package driven

// PromptStore provides access to persona instructions.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}
