package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SearchModeSnippet  = "snippet"
	SearchModeEnriched = "enriched"

	FetcherHTTP    = "http"
	FetcherBrowser = "browser"

	BackendLangchain = "langchain"
	BackendOpenAI    = "openai"

	StrategySelector    = "selector"
	StrategyReadability = "readability"
	StrategyTrafilatura = "trafilatura"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type Config struct {
	AppPort  int    `yaml:"app_port" env:"APP_PORT" env-default:"8080"`
	ProxyURL string `yaml:"proxy_url" env:"PROXY_URL"`

	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Extractor ExtractorConfig `yaml:"extractor"`

	PromptsFile string `yaml:"prompts_file" env:"PROMPTS_FILE"`
}

type LLMConfig struct {
	Backend              string        `yaml:"backend" env:"LLM_BACKEND" env-default:"langchain"`
	BaseURL              string        `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	APIKey               string        `yaml:"api_key" env:"LLM_API_KEY" env-required:"true"`
	Model                string        `yaml:"model" env:"LLM_MODEL" env-default:"llama-3.1-8b-instant"`
	Timeout              time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"60s"`
	QueryTransform       bool          `yaml:"query_transform" env:"QUERY_TRANSFORM"`
	TransformTemperature float64       `yaml:"transform_temperature" env:"TRANSFORM_TEMPERATURE"`
	TransformMaxTokens   int           `yaml:"transform_max_tokens" env:"TRANSFORM_MAX_TOKENS" env-default:"50"`
	SynthTemperature     float64       `yaml:"synth_temperature" env:"SYNTH_TEMPERATURE"`
	SynthMaxTokens       int           `yaml:"synth_max_tokens" env:"SYNTH_MAX_TOKENS" env-default:"2048"`
	ContextChars         int           `yaml:"context_chars" env:"CONTEXT_CHARS" env-default:"200"`
}

type SearchConfig struct {
	URL              string        `yaml:"url" env:"SEARCH_URL" env-default:"https://www.bing.com/search"`
	Mode             string        `yaml:"mode" env:"SEARCH_MODE" env-default:"snippet"`
	Fetcher          string        `yaml:"fetcher" env:"SEARCH_FETCHER" env-default:"http"`
	MaxResults       int           `yaml:"max_results" env:"MAX_RESULTS"`
	Timeout          time.Duration `yaml:"timeout" env:"SEARCH_TIMEOUT" env-default:"15s"`
	UserAgent        string        `yaml:"user_agent" env:"USER_AGENT"`
	ExcerptChars     int           `yaml:"excerpt_chars" env:"EXCERPT_CHARS" env-default:"150"`
	CrawlDelay       time.Duration `yaml:"crawl_delay" env:"CRAWL_DELAY" env-default:"1s"`
	CrawlParallelism int           `yaml:"crawl_parallelism" env:"CRAWL_PARALLELISM" env-default:"1"`
}

type ExtractorConfig struct {
	Strategy string        `yaml:"strategy" env:"EXTRACT_STRATEGY" env-default:"selector"`
	Timeout  time.Duration `yaml:"timeout" env:"PAGE_TIMEOUT" env-default:"10s"`
	MaxChars int           `yaml:"max_chars" env:"PAGE_MAX_CHARS" env-default:"5000"`
}

// Load reads the config file at path (when given) and then the environment.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	cfg := seedConfig()
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// seedConfig holds defaults for fields whose zero value is a valid setting.
// cleanenv would overwrite a false or 0 read from the file with env-default.
func seedConfig() Config {
	return Config{
		LLM: LLMConfig{
			QueryTransform:       true,
			TransformTemperature: 0.3,
			SynthTemperature:     0.3,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = DefaultUserAgent
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = DefaultMaxResults(c.Search.Mode)
	}
}

// DefaultMaxResults returns the result bound used when none is configured.
func DefaultMaxResults(mode string) int {
	if mode == SearchModeEnriched {
		return 5
	}
	return 10
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Backend {
	case BackendLangchain, BackendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unsupported llm backend %q", c.LLM.Backend))
	}
	switch c.Search.Mode {
	case SearchModeSnippet, SearchModeEnriched:
	default:
		errs = append(errs, fmt.Errorf("unsupported search mode %q", c.Search.Mode))
	}
	switch c.Search.Fetcher {
	case FetcherHTTP, FetcherBrowser:
	default:
		errs = append(errs, fmt.Errorf("unsupported search fetcher %q", c.Search.Fetcher))
	}
	switch c.Extractor.Strategy {
	case StrategySelector, StrategyReadability, StrategyTrafilatura:
	default:
		errs = append(errs, fmt.Errorf("unsupported extract strategy %q", c.Extractor.Strategy))
	}

	if c.Search.MaxResults <= 0 {
		errs = append(errs, errors.New("max results must be positive"))
	}
	if c.Search.CrawlParallelism <= 0 {
		errs = append(errs, errors.New("crawl parallelism must be positive"))
	}
	if c.Search.ExcerptChars <= 0 || c.Extractor.MaxChars <= 0 || c.LLM.ContextChars <= 0 {
		errs = append(errs, errors.New("character limits must be positive"))
	}
	if c.LLM.TransformMaxTokens <= 0 || c.LLM.SynthMaxTokens <= 0 {
		errs = append(errs, errors.New("token limits must be positive"))
	}
	if c.Search.Timeout <= 0 || c.Extractor.Timeout <= 0 || c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}

	return errors.Join(errs...)
}
