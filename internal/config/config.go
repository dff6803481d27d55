// Package config loads and defaults the pipeline's JSON/YAML configuration:
// language-model settings, localisation tables, validation rules, audit
// layout, and executor limits. It follows the same load-then-defaults shape
// used throughout the codebase for per-component configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
)

// MonitoringLevel controls how much the Monitoring component logs and
// records per stage.
type MonitoringLevel string

const (
	MonitoringBasic       MonitoringLevel = "basic"
	MonitoringDetailed    MonitoringLevel = "detailed"
	MonitoringDebug       MonitoringLevel = "debug"
	MonitoringPerformance MonitoringLevel = "performance"
)

// RevisionStrategy controls how tracked changes are handled before extraction.
type RevisionStrategy string

const (
	RevisionAccept  RevisionStrategy = "accept"
	RevisionReject  RevisionStrategy = "reject"
	RevisionBypass  RevisionStrategy = "bypass"
)

// LLMConfig configures the Planner gateway's call to the language model.
type LLMConfig struct {
	ModelID       string        `json:"model_id" yaml:"model_id"`
	Temperature   float64       `json:"temperature" yaml:"temperature"`
	MaxTokens     int           `json:"max_tokens" yaml:"max_tokens"`
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`
	CallTimeout   time.Duration `json:"call_timeout" yaml:"call_timeout"`
	APIKeyEnvVar  string        `json:"api_key_env_var" yaml:"api_key_env_var"`
	BaseURL       string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LocalizationConfig configures the style-alias table and font fallback
// chains. Nil/empty maps fall back to the compiled-in defaults.
type LocalizationConfig struct {
	StyleAliases  map[string][]string `json:"style_aliases,omitempty" yaml:"style_aliases,omitempty"`
	FontFallbacks map[string][]string `json:"font_fallbacks,omitempty" yaml:"font_fallbacks,omitempty"`
	HostFonts     []string            `json:"host_fonts,omitempty" yaml:"host_fonts,omitempty"`
}

// StyleSpec is the declared specification a named style must match for the
// Validator's style assertion. Aliases lets a spec match both the builtin
// English name and a localized alias (e.g. "Heading 1" / "标题 1") without
// requiring the document to use one specific name.
type StyleSpec struct {
	Aliases          []string `json:"aliases" yaml:"aliases"`
	FontEastAsian    string   `json:"font_east_asian,omitempty" yaml:"font_east_asian,omitempty"`
	FontSizePt       float64  `json:"font_size_pt" yaml:"font_size_pt"`
	FontBold         bool     `json:"font_bold" yaml:"font_bold"`
	LineSpacingMode  string   `json:"line_spacing_mode" yaml:"line_spacing_mode"`
	LineSpacingValue float64  `json:"line_spacing_value" yaml:"line_spacing_value"`
}

// ValidationConfig configures the Validator's assertion set.
type ValidationConfig struct {
	ForbiddenLevel1Headings []string    `json:"forbidden_level1_headings" yaml:"forbidden_level1_headings"`
	StyleSpecs              []StyleSpec `json:"style_specs" yaml:"style_specs"`
	StyleTolerancePt        float64     `json:"style_tolerance_pt" yaml:"style_tolerance_pt"`
	RunIntegrityChecks      bool        `json:"run_integrity_checks" yaml:"run_integrity_checks"`
}

// AuditConfig configures the Auditor's run directory.
type AuditConfig struct {
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}

// ExecutorConfig configures execution-time limits.
type ExecutorConfig struct {
	TimeLimitSeconds  int `json:"execution_time_limit_s" yaml:"execution_time_limit_s"`
	MemoryWarningMB   int `json:"memory_warning_mb" yaml:"memory_warning_mb"`
	MemoryCriticalMB  int `json:"memory_critical_mb" yaml:"memory_critical_mb"`
}

// CommentsConfig configures the reserved comments-as-instructions surface.
// The pipeline accepts these fields so a future extension has somewhere to
// land without a config-format break, but nothing reads them yet.
type CommentsConfig struct {
	Enabled          bool `json:"comments_enabled" yaml:"comments_enabled"`
	ExecuteTagOnly   bool `json:"comments_execute_tag_only" yaml:"comments_execute_tag_only"`
	LLMFallback      bool `json:"comments_llm_fallback" yaml:"comments_llm_fallback"`
}

// Config is the root configuration for one process_document run.
type Config struct {
	LLM              LLMConfig           `json:"llm" yaml:"llm"`
	Localization     LocalizationConfig  `json:"localization" yaml:"localization"`
	Validation       ValidationConfig    `json:"validation" yaml:"validation"`
	Audit            AuditConfig         `json:"audit" yaml:"audit"`
	Executor         ExecutorConfig      `json:"executor" yaml:"executor"`
	Comments         CommentsConfig      `json:"comments" yaml:"comments"`
	MonitoringLevel  MonitoringLevel     `json:"monitoring_level" yaml:"monitoring_level"`
	RevisionStrategy RevisionStrategy    `json:"revision_strategy" yaml:"revision_strategy"`
}

// Default returns a Config with every field populated to a sane default,
// matching the shape of options a caller may override piecemeal.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.LLM.ModelID == "" {
		c.LLM.ModelID = "gpt-4o-mini"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 4096
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 2
	}
	if c.LLM.CallTimeout == 0 {
		c.LLM.CallTimeout = 60 * time.Second
	}
	if c.LLM.APIKeyEnvVar == "" {
		c.LLM.APIKeyEnvVar = "OPENAI_API_KEY"
	}
	if len(c.Validation.ForbiddenLevel1Headings) == 0 {
		c.Validation.ForbiddenLevel1Headings = []string{"摘要", "参考文献", "Abstract", "References"}
	}
	if len(c.Validation.StyleSpecs) == 0 {
		c.Validation.StyleSpecs = []StyleSpec{
			{Aliases: []string{"Heading 1", "标题 1"}, FontEastAsian: "楷体", FontSizePt: 12, FontBold: true, LineSpacingMode: "MULTIPLE", LineSpacingValue: 2.0},
			{Aliases: []string{"Heading 2", "标题 2"}, FontEastAsian: "宋体", FontSizePt: 12, FontBold: true, LineSpacingMode: "MULTIPLE", LineSpacingValue: 2.0},
			{Aliases: []string{"Normal", "正文"}, FontEastAsian: "宋体", FontSizePt: 12, FontBold: false, LineSpacingMode: "MULTIPLE", LineSpacingValue: 2.0},
		}
	}
	if c.Validation.StyleTolerancePt == 0 {
		c.Validation.StyleTolerancePt = 0.1
	}
	if c.Audit.BaseDir == "" {
		c.Audit.BaseDir = "./audit"
	}
	if c.Executor.TimeLimitSeconds == 0 {
		c.Executor.TimeLimitSeconds = 120
	}
	if c.Executor.MemoryWarningMB == 0 {
		c.Executor.MemoryWarningMB = 512
	}
	if c.Executor.MemoryCriticalMB == 0 {
		c.Executor.MemoryCriticalMB = 1024
	}
	if c.MonitoringLevel == "" {
		c.MonitoringLevel = MonitoringBasic
	}
	if c.RevisionStrategy == "" {
		c.RevisionStrategy = RevisionBypass
	}
}

// Load reads a JSON or YAML config file (by extension) and applies defaults
// to whatever fields the file left zero-valued.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigError, "config", err)
	}

	var c Config
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &c); err != nil {
			return Config{}, apperr.New(apperr.ConfigError, "config", "parse %s: %v", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Config{}, apperr.New(apperr.ConfigError, "config", "parse %s: %v", path, err)
		}
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects a config with out-of-range or contradictory values
// before it reaches any stage.
func (c *Config) Validate() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return apperr.New(apperr.ConfigError, "config", "llm.temperature %v out of range [0,2]", c.LLM.Temperature)
	}
	if c.Executor.MemoryWarningMB >= c.Executor.MemoryCriticalMB {
		return apperr.New(apperr.ConfigError, "config", "executor.memory_warning_mb must be less than memory_critical_mb")
	}
	switch c.MonitoringLevel {
	case MonitoringBasic, MonitoringDetailed, MonitoringDebug, MonitoringPerformance:
	default:
		return apperr.New(apperr.ConfigError, "config", "unknown monitoring_level %q", c.MonitoringLevel)
	}
	switch c.RevisionStrategy {
	case RevisionAccept, RevisionReject, RevisionBypass:
	default:
		return apperr.New(apperr.ConfigError, "config", "unknown revision_strategy %q", c.RevisionStrategy)
	}
	return nil
}

// Template renders a commented starter config for `config create`.
func Template() string {
	c := Default()
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# failed to render template: %v\n", err)
	}
	return "# autoword-vnext configuration\n" + string(data)
}
