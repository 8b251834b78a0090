package domain

// AIProvider identifies an external AI service vendor
type AIProvider string

const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// EmbeddingSettings configures the embedding collaborator. Built once at
// startup from the environment; never read ad hoc from global state.
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	APIKey   string     `json:"-"`
	Model    string     `json:"model,omitempty"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured reports whether enough is set to construct the service
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != "" && s.APIKey != ""
}

// LLMSettings configures the generation collaborator.
type LLMSettings struct {
	Provider    AIProvider `json:"provider"`
	APIKey      string     `json:"-"`
	Model       string     `json:"model,omitempty"`
	BaseURL     string     `json:"base_url,omitempty"`
	Temperature float64    `json:"temperature,omitempty"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
}

// IsConfigured reports whether enough is set to construct the service
func (s *LLMSettings) IsConfigured() bool {
	return s != nil && s.Provider != "" && s.APIKey != ""
}
