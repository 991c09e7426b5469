package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the course ranking system
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Agents    AgentsConfig    `mapstructure:"agents"`
	Search    SearchConfig    `mapstructure:"search"`
	TierList  TierListConfig  `mapstructure:"tierlist"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // gemini, openai
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name        string  `mapstructure:"name"`
	APIName     string  `mapstructure:"api_name"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// LLMRoutingConfig binds abstract pipeline roles to ordered model attempt
// lists. The first entry is the primary model; the remaining entries are
// tried in order when a call fails. Fallback is appended to every role's
// list that does not already end with it.
type LLMRoutingConfig struct {
	Roles    map[string][]string `mapstructure:"roles"`
	Fallback string              `mapstructure:"fallback"`
}

func (r LLMRoutingConfig) Validate() error {
	if strings.TrimSpace(r.Fallback) == "" {
		return fmt.Errorf("llm.routing.fallback is required")
	}
	for role, models := range r.Roles {
		if len(models) == 0 {
			return fmt.Errorf("llm.routing.roles.%s must list at least one model", role)
		}
	}
	return nil
}

// JudgePersona describes one member of the judge panel. Description is the
// natural-language rubric embedded in that judge's prompt.
type JudgePersona struct {
	ID          string `mapstructure:"id"`
	Role        string `mapstructure:"role"`
	Description string `mapstructure:"description"`
}

// AgentsConfig controls the judge panel and per-agent behaviour
type AgentsConfig struct {
	Judges       []JudgePersona `mapstructure:"judges"`
	JudgeTimeout time.Duration  `mapstructure:"judge_timeout"`
}

func (a AgentsConfig) Validate() error {
	if len(a.Judges) > 4 {
		return fmt.Errorf("agents.judges supports at most 4 personas, got %d", len(a.Judges))
	}
	seen := make(map[string]bool)
	for _, j := range a.Judges {
		if strings.TrimSpace(j.ID) == "" {
			return fmt.Errorf("agents.judges entries require an id")
		}
		if seen[j.ID] {
			return fmt.Errorf("agents.judges duplicate id: %s", j.ID)
		}
		seen[j.ID] = true
	}
	return nil
}

// SearchConfig contains web search provider settings
type SearchConfig struct {
	GoogleCSE   GoogleCSEConfig `mapstructure:"google_cse"`
	Serper      SerperConfig    `mapstructure:"serper"`
	ResultCount int             `mapstructure:"result_count"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	// QueryPrefix narrows every query to the school context, e.g. "北科大".
	QueryPrefix     string       `mapstructure:"query_prefix"`
	AnalysisSuffix  string       `mapstructure:"analysis_suffix"`
	RecommendSuffix string       `mapstructure:"recommend_suffix"`
	Enrich          EnrichConfig `mapstructure:"enrich"`
}

// GoogleCSEConfig contains Google Custom Search settings
type GoogleCSEConfig struct {
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
}

// SerperConfig contains serper.dev settings
type SerperConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// EnrichConfig controls readability-based snippet enrichment
type EnrichConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MinSnippetRunes int           `mapstructure:"min_snippet_runes"`
	MaxExcerptRunes int           `mapstructure:"max_excerpt_runes"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// TierListConfig contains tier canvas storage and rendering settings
type TierListConfig struct {
	Backend string `mapstructure:"backend"` // file, redis
	DataDir string `mapstructure:"data_dir"`
	// Templates maps a list id (e.g. "zh", "en") to a base canvas image.
	// A list without a template gets a synthesized blank five-row canvas.
	Templates map[string]string `mapstructure:"templates"`
	FontPaths []string          `mapstructure:"font_paths"`
	Redis     RedisConfig       `mapstructure:"redis"`
}

func (t TierListConfig) Validate() error {
	switch t.Backend {
	case "", "file":
		if strings.TrimSpace(t.DataDir) == "" {
			return fmt.Errorf("tierlist.data_dir is required for the file backend")
		}
	case "redis":
		return t.Redis.Validate()
	default:
		return fmt.Errorf("tierlist.backend must be file or redis, got %q", t.Backend)
	}
	return nil
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("tierlist.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("tierlist.redis.port required")
	}
	return nil
}

// ArchiveConfig contains verdict archive settings
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	IndexPath string `mapstructure:"index_path"`
}

func (a ArchiveConfig) Validate() error {
	if a.Enabled && strings.TrimSpace(a.IndexPath) == "" {
		return fmt.Errorf("archive.index_path is required when archive is enabled")
	}
	return nil
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.default_timeout", 60*time.Second)
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("search.result_count", 8)
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("search.query_prefix", "北科大")
	viper.SetDefault("search.analysis_suffix", "評價 心得")
	viper.SetDefault("search.recommend_suffix", "推薦 甜涼 好過")
	viper.SetDefault("search.enrich.min_snippet_runes", 60)
	viper.SetDefault("search.enrich.max_excerpt_runes", 600)
	viper.SetDefault("search.enrich.timeout", 8*time.Second)
	viper.SetDefault("agents.judge_timeout", 45*time.Second)
	viper.SetDefault("tierlist.backend", "file")
	viper.SetDefault("tierlist.data_dir", "./data")
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.namespace", "courserank")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("COURSERANK")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.LLM.Routing.Validate(); err != nil {
		panic(err)
	}
	if err := config.Agents.Validate(); err != nil {
		panic(err)
	}
	if err := config.TierList.Validate(); err != nil {
		panic(err)
	}
	if err := config.Archive.Validate(); err != nil {
		panic(err)
	}
	return &config
}
