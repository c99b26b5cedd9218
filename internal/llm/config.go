// Package llm provides the model configuration and client abstraction for
// answer generation. The tier indirection keeps call sites independent of
// concrete model names.
package llm

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierLite serves single-question fallback answers.
	TierLite ModelTier = "lite"
	// TierStandard serves batched answer generation.
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for long-form tailoring tasks.
	TierAdvanced ModelTier = "advanced"
)

// Provider identifies an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
)

// Config maps tiers to concrete model names for one provider.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model for a tier, falling back standard then lite so
// a partially configured map still resolves.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with one tier overridden.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return next
}
