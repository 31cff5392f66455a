package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/common"
	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/llm"
	"github.com/Veraticus/clash-cost/internal/model"
)

// EnvPrefix is the prefix of environment variables bound to config keys.
const EnvPrefix = "CLASH"

// App is the resolved application configuration.
type App struct {
	Language     model.Language
	SourceURL    string
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Disciplines  []model.Discipline
	LLM          llm.Config
	Bulk         engine.BulkOptions
	MinScore     float64
	Automation   bool
}

// SetDefaults registers default values for every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.protocol", string(llm.ProtocolAuto))
	v.SetDefault("llm.requests_per_minute", 60)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("language", string(model.LanguageEnglish))
	v.SetDefault("automation.enabled", true)
	v.SetDefault("automation.load_delay", engine.DefaultLoadDelay)
	v.SetDefault("automation.generate_delay", engine.DefaultGenerateDelay)
	v.SetDefault("automation.match_delay", engine.DefaultMatchDelay)
	v.SetDefault("estimate.min_score", engine.DefaultMinScore)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the application configuration from v.
func Load(v *viper.Viper) (App, error) {
	protocol, err := llm.ParseProtocol(v.GetString("llm.protocol"))
	if err != nil {
		return App{}, &common.ConfigurationError{Setting: "llm.protocol", Err: err}
	}

	minScore := v.GetFloat64("estimate.min_score")
	if minScore < 0 || minScore > 1 {
		return App{}, &common.ConfigurationError{
			Setting: "estimate.min_score",
			Err:     fmt.Errorf("%w: must be between 0 and 1, got %v", common.ErrInvalidConfig, minScore),
		}
	}

	app := App{
		Language:     model.ParseLanguage(strings.ToLower(v.GetString("language"))),
		SourceURL:    strings.TrimSpace(v.GetString("estimate.source_url")),
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		MinScore:     minScore,
		Automation:   v.GetBool("automation.enabled"),
		Bulk: engine.BulkOptions{
			LoadDelay:     v.GetDuration("automation.load_delay"),
			GenerateDelay: v.GetDuration("automation.generate_delay"),
			MatchDelay:    v.GetDuration("automation.match_delay"),
		},
		LLM: llm.Config{
			Protocol:          protocol,
			APIKey:            apiKey(v),
			Model:             v.GetString("llm.model"),
			Endpoint:          v.GetString("llm.endpoint"),
			MaxRetries:        v.GetInt("llm.max_retries"),
			RetryDelay:        v.GetDuration("llm.retry_delay"),
			Timeout:           v.GetDuration("llm.timeout"),
			RequestsPerMinute: v.GetInt("llm.requests_per_minute"),
		},
	}

	if v.IsSet("disciplines") {
		if err := v.UnmarshalKey("disciplines", &app.Disciplines); err != nil {
			return App{}, &common.ConfigurationError{Setting: "disciplines", Err: err}
		}
		if err := validateDisciplines(app.Disciplines); err != nil {
			return App{}, &common.ConfigurationError{Setting: "disciplines", Err: err}
		}
	}
	if len(app.Disciplines) == 0 {
		app.Disciplines = model.DefaultDisciplines()
	}

	return app, nil
}

// apiKey reads llm.api_key and falls back to the provider's conventional
// environment variables.
func apiKey(v *viper.Viper) string {
	if key := v.GetString("llm.api_key"); key != "" {
		return key
	}
	for _, name := range []string{"API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

func validateDisciplines(disciplines []model.Discipline) error {
	seen := make(map[string]struct{}, len(disciplines))
	for i, d := range disciplines {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("%w: discipline %d has no id", common.ErrInvalidConfig, i)
		}
		if strings.Contains(d.ID, ":") {
			return fmt.Errorf("%w: discipline id %q must not contain ':'", common.ErrInvalidConfig, d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate discipline id %q", common.ErrInvalidConfig, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// EngineConfig converts the application settings to engine settings.
func (a App) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Source = a.SourceURL
	cfg.Language = a.Language
	cfg.Disciplines = a.Disciplines
	cfg.MinScore = a.MinScore
	cfg.AutomationEnabled = a.Automation
	cfg.Bulk.LoadDelay = a.Bulk.LoadDelay
	cfg.Bulk.GenerateDelay = a.Bulk.GenerateDelay
	cfg.Bulk.MatchDelay = a.Bulk.MatchDelay
	return cfg
}
