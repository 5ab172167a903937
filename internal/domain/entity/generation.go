package entity

// GenerationRequest is a single call into a named agent configuration.
type GenerationRequest struct {
	AgentName    string
	Instructions string
	ModelID      string
	Input        string
}

// GenerationResult is whatever a provider handed back. It may be an
// *AgentOutput, a decoded JSON map, a plain string or any other value,
// so consumers must not assume a fixed shape.
type GenerationResult any

// AgentOutput is the structured result built by the provider adapters.
type AgentOutput struct {
	FinalOutput any
	Output      any
	Content     any

	Model      string
	TokenCount int
}
