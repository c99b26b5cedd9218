// Package config provides configuration loading and validation for the
// agent. Values come from an optional YAML file, a .env file and process
// environment variables, in that order of increasing precedence. Every
// behavioral constant keeps its original default; the file only overrides.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Detection DetectionConfig `mapstructure:"detection"`
	Fill      FillConfig      `mapstructure:"fill"`
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LoggingConfig selects log level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

// BrowserConfig tunes the headless session.
type BrowserConfig struct {
	Headless            bool   `mapstructure:"headless"`
	ExecPath            string `mapstructure:"exec_path"`
	NavigationTimeoutMS int    `mapstructure:"navigation_timeout_ms" validate:"gte=0"`
	RenderSettleMS      int    `mapstructure:"render_settle_ms" validate:"gte=0"`
}

// ExtractConfig tunes the extraction cascade.
type ExtractConfig struct {
	DescriptionMaxLength int `mapstructure:"description_max_length" validate:"gt=0"`
}

// DetectionConfig tunes the page monitor and question detector.
type DetectionConfig struct {
	RescanDebounceMS int `mapstructure:"rescan_debounce_ms" validate:"gte=0"`
	PageSettleMS     int `mapstructure:"page_settle_ms" validate:"gte=0"`
	AnswerThreshold  int `mapstructure:"answer_threshold" validate:"gt=0"`
}

// FillConfig tunes the fill engine and the auto-fill loop.
type FillConfig struct {
	EventDelayMS     int     `mapstructure:"event_delay_ms" validate:"gte=0"`
	SettleDelayMS    int     `mapstructure:"settle_delay_ms" validate:"gte=0"`
	ValidationStepMS int     `mapstructure:"validation_step_ms" validate:"gte=0"`
	ValidationCapMS  int     `mapstructure:"validation_cap_ms" validate:"gte=0"`
	VerifyRatio      float64 `mapstructure:"verify_ratio" validate:"gt=0,lte=1"`
	InterFillDelayMS int     `mapstructure:"inter_fill_delay_ms" validate:"gte=0"`
}

// BridgeConfig points at the background collaborator.
type BridgeConfig struct {
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	Token    string `mapstructure:"token"`
}

// LLMConfig configures local answer generation.
type LLMConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Profile       string `mapstructure:"profile"`
	ModelLite     string `mapstructure:"model_lite"`
	ModelStandard string `mapstructure:"model_standard"`
	ModelAdvanced string `mapstructure:"model_advanced"`
}

// MetricsConfig controls the metrics endpoint of long-running commands.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"omitempty,hostname_port"`
}

// Duration converts a millisecond field to a time.Duration.
func Duration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
