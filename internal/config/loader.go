package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. APPLY_AGENT_LLM_API_KEY.
const envPrefix = "APPLY_AGENT"

// Load reads configuration from config.yaml (./configs, then the working
// directory), merges .env and environment overrides, fills defaults and
// validates. A missing config file is not an error; defaults stand alone.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Secrets come from the environment, never the YAML file.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Bridge.Token == "" {
		cfg.Bridge.Token = os.Getenv("BRIDGE_AUTH_TOKEN")
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers the behavioral constants so an absent file or field
// keeps the original values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout_ms", 30000)
	v.SetDefault("browser.render_settle_ms", 2000)

	v.SetDefault("extract.description_max_length", 5000)

	v.SetDefault("detection.rescan_debounce_ms", 500)
	v.SetDefault("detection.page_settle_ms", 300)
	v.SetDefault("detection.answer_threshold", 100)

	v.SetDefault("fill.event_delay_ms", 25)
	v.SetDefault("fill.settle_delay_ms", 100)
	v.SetDefault("fill.validation_step_ms", 50)
	v.SetDefault("fill.validation_cap_ms", 500)
	v.SetDefault("fill.verify_ratio", 0.8)
	v.SetDefault("fill.inter_fill_delay_ms", 300)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "127.0.0.1:9464")
}

// loadEnvFile loads a .env from the working directory or the module root so
// commands behave the same regardless of where they run.
func loadEnvFile() {
	candidates := []string{".env"}
	if root := findModuleRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if godotenv.Load(path) == nil {
				return
			}
		}
	}
}

func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
