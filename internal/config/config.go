package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docintel/internal/document"
)

type Config struct {
	// Directories
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	TempImageDir string `yaml:"temp_image_dir"`

	// Agent toggles
	EnableText    bool `yaml:"enable_text"`
	EnableSummary bool `yaml:"enable_summary"`
	EnableQA      bool `yaml:"enable_qa"`
	EnableRegex   bool `yaml:"enable_regex"`
	EnableNER     bool `yaml:"enable_ner"`
	EnableTable   bool `yaml:"enable_table"`
	EnableFormula bool `yaml:"enable_formula"`
	Concatenate   bool `yaml:"concatenate"`

	QAQuestion   string `yaml:"qa_question"`
	RegexPattern string `yaml:"regex_pattern"`

	// Agent limits
	SummaryMaxInputChars int `yaml:"summary_max_input_chars"`
	SummaryMinWords      int `yaml:"summary_min_words"`
	SummaryMaxWords      int `yaml:"summary_max_words"`
	QAMaxContextWords    int `yaml:"qa_max_context_words"`

	// OCR
	OCREnabled     bool   `yaml:"ocr_enabled"`
	TesseractBin   string `yaml:"tesseract_bin"`
	TesseractLang  string `yaml:"tesseract_lang"`
	TessdataPrefix string `yaml:"tessdata_prefix"`

	// Claude capabilities
	AnthropicAPIKey  string        `yaml:"-"`
	AnthropicModel   string        `yaml:"anthropic_model"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	LLMTimeout       time.Duration `yaml:"llm_timeout"`

	// Server
	Port           string        `yaml:"port"`
	DocintelAPIKey string        `yaml:"-"`
	RunTTL         time.Duration `yaml:"run_ttl"`

	LogLevel string `yaml:"log_level"`
}

const (
	DefaultQuestion = "What is the main topic of the document?"
	DefaultPattern  = `\b[A-Z][a-z]+ [A-Z][a-z]+\b`
)

// Load reads the environment and, when CONFIG_FILE is set, overlays that YAML file.
func Load() (Config, error) {
	cfg := Config{
		InputDir:     envOr("INPUT_DIR", "input_documents"),
		OutputDir:    envOr("OUTPUT_DIR", "output_results"),
		TempImageDir: envOr("TEMP_IMAGE_DIR", filepath.Join(os.TempDir(), "docintel-images")),

		EnableText:    envBool("ENABLE_TEXT", true),
		EnableSummary: envBool("ENABLE_SUMMARY", true),
		EnableQA:      envBool("ENABLE_QA", true),
		EnableRegex:   envBool("ENABLE_REGEX", true),
		EnableNER:     envBool("ENABLE_NER", true),
		EnableTable:   envBool("ENABLE_TABLE", true),
		EnableFormula: envBool("ENABLE_FORMULA", false),
		Concatenate:   envBool("CONCATENATE", false),

		QAQuestion:   envOr("QA_QUESTION", DefaultQuestion),
		RegexPattern: envOr("REGEX_PATTERN", DefaultPattern),

		SummaryMaxInputChars: envInt("SUMMARY_MAX_INPUT_CHARS", 1024),
		SummaryMinWords:      envInt("SUMMARY_MIN_WORDS", 30),
		SummaryMaxWords:      envInt("SUMMARY_MAX_WORDS", 150),
		QAMaxContextWords:    envInt("QA_MAX_CONTEXT_WORDS", 512),

		OCREnabled:     envBool("OCR_ENABLED", true),
		TesseractBin:   envOr("TESSERACT_BIN", "tesseract"),
		TesseractLang:  envOr("TESSERACT_LANG", "eng"),
		TessdataPrefix: os.Getenv("TESSDATA_PREFIX"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicBaseURL: envOr("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 120*time.Second),

		Port:           envOr("PORT", "8095"),
		DocintelAPIKey: os.Getenv("DOCINTEL_API_KEY"),
		RunTTL:         envDuration("RUN_TTL", 1*time.Hour),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyFloors()
	return cfg, nil
}

// ApplyFile overlays the keys present in a YAML file. Secrets are only read
// from the environment.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.applyFloors()
	return nil
}

func (c *Config) applyFloors() {
	if c.SummaryMaxInputChars <= 0 {
		c.SummaryMaxInputChars = 1024
	}
	if c.SummaryMinWords < 0 {
		c.SummaryMinWords = 0
	}
	if c.SummaryMaxWords <= 0 {
		c.SummaryMaxWords = 150
	}
	if c.QAMaxContextWords <= 0 {
		c.QAMaxContextWords = 512
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = 120 * time.Second
	}
	if c.RunTTL <= 0 {
		c.RunTTL = 1 * time.Hour
	}
}

// NeedsLLM reports whether any enabled agent calls the Claude API.
func (c Config) NeedsLLM() bool {
	return c.EnableSummary || c.EnableQA || c.EnableNER || c.EnableFormula
}

// Validate checks the batch settings. Every failure is a *document.ConfigurationError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return &document.ConfigurationError{Field: "INPUT_DIR", Reason: "is required"}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &document.ConfigurationError{Field: "OUTPUT_DIR", Reason: "is required"}
	}
	if c.EnableRegex {
		if _, err := regexp.Compile(c.RegexPattern); err != nil {
			return &document.ConfigurationError{Field: "REGEX_PATTERN", Reason: err.Error()}
		}
	}
	if c.EnableQA && strings.TrimSpace(c.QAQuestion) == "" {
		return &document.ConfigurationError{Field: "QA_QUESTION", Reason: "is required when qa is enabled"}
	}
	if c.NeedsLLM() && c.AnthropicAPIKey == "" {
		return &document.ConfigurationError{Field: "ANTHROPIC_API_KEY", Reason: "is required when summary, qa, ner or formula is enabled"}
	}
	if c.SummaryMinWords > c.SummaryMaxWords {
		return &document.ConfigurationError{
			Field:  "SUMMARY_MIN_WORDS",
			Reason: fmt.Sprintf("%d exceeds SUMMARY_MAX_WORDS %d", c.SummaryMinWords, c.SummaryMaxWords),
		}
	}
	return nil
}

// ValidateServer additionally checks the API settings.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocintelAPIKey == "" {
		return &document.ConfigurationError{Field: "DOCINTEL_API_KEY", Reason: "is required"}
	}
	return nil
}

// SlogLevel parses LogLevel, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
