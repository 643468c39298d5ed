// Package config assembles the agent configuration from defaults, an
// optional YAML file and DESKTOP_AGENT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"desktop-agent/internal/application/port/output"

	"gopkg.in/yaml.v3"
)

type Log struct {
	Level  string `yaml:"level"`
	Dir    string `yaml:"dir"`
	Stderr bool   `yaml:"stderr"`
}

type Retry struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseWait   time.Duration `yaml:"base_wait"`
	MaxWait    time.Duration `yaml:"max_wait"`
}

type Vision struct {
	APIKey            string  `yaml:"-"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	MaxImageWidth     int     `yaml:"max_image_width"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Languages is passed to the model as a hint, for example ["eng"].
	Languages []string `yaml:"languages"`
}

type Tesseract struct {
	Languages []string `yaml:"languages"`
	Lines     bool     `yaml:"lines"`
}

type OCR struct {
	// Engines lists the cascade order.
	Engines    []string           `yaml:"engines"`
	BaseScores map[string]float64 `yaml:"base_scores"`
	Tesseract  Tesseract          `yaml:"tesseract"`
	Vision     Vision             `yaml:"vision"`
}

type Executor struct {
	StopOnFailure   bool          `yaml:"stop_on_failure"`
	DefaultDelay    time.Duration `yaml:"default_delay"`
	ClickRetryDelay time.Duration `yaml:"click_retry_delay"`
	HumanMovement   bool          `yaml:"human_movement"`
	MoveDuration    time.Duration `yaml:"move_duration"`
	DragDuration    time.Duration `yaml:"drag_duration"`
}

type Browser struct {
	Headless bool          `yaml:"headless"`
	StartURL string        `yaml:"start_url"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Config struct {
	Log      Log           `yaml:"log"`
	Retry    Retry         `yaml:"retry"`
	OCR      OCR           `yaml:"ocr"`
	Executor Executor      `yaml:"executor"`
	Browser  Browser       `yaml:"browser"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// MetricsAddr serves /metrics when set.
	MetricsAddr string `yaml:"metrics_addr"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

var knownEngines = map[string]bool{"tesseract": true, "vision": true}

func Default() Config {
	return Config{
		Log: Log{Level: "info", Dir: "log"},
		Retry: Retry{
			MaxRetries: 5,
			BaseWait:   time.Second,
			MaxWait:    30 * time.Second,
		},
		OCR: OCR{
			Engines:   []string{"tesseract"},
			Tesseract: Tesseract{Languages: []string{"chi_sim", "eng"}, Lines: true},
			Vision: Vision{
				BaseURL:           "https://openrouter.ai/api/v1",
				MaxImageWidth:     1600,
				RequestsPerSecond: 1,
			},
		},
		Executor: Executor{
			DefaultDelay:    500 * time.Millisecond,
			ClickRetryDelay: 500 * time.Millisecond,
			HumanMovement:   true,
			MoveDuration:    300 * time.Millisecond,
			DragDuration:    500 * time.Millisecond,
		},
		Browser: Browser{
			Headless: true,
			StartURL: "about:blank",
			Width:    1280,
			Height:   800,
			Timeout:  10 * time.Second,
		},
		CacheTTL: time.Second,
	}
}

// Load reads path over the defaults, when path is not empty, and then
// applies environment overrides from env. The result is validated.
func Load(path string, env output.ConfigPort) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if env != nil {
		cfg.applyEnv(env)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env output.ConfigPort) {
	c.Log.Level = env.GetWithDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Dir = env.GetWithDefault("LOG_DIR", c.Log.Dir)
	c.Log.Stderr = env.GetBool("LOG_STDERR", c.Log.Stderr)

	c.Retry.MaxRetries = env.GetInt("MAX_RETRIES", c.Retry.MaxRetries)
	c.Retry.BaseWait = env.GetDuration("BASE_WAIT", c.Retry.BaseWait)
	c.Retry.MaxWait = env.GetDuration("MAX_WAIT", c.Retry.MaxWait)

	if engines := env.Get("OCR_ENGINES"); engines != "" {
		c.OCR.Engines = splitList(engines)
	}
	if langs := env.Get("TESSERACT_LANGUAGES"); langs != "" {
		c.OCR.Tesseract.Languages = splitList(strings.ReplaceAll(langs, "+", ","))
	}
	c.OCR.Vision.APIKey = env.GetWithDefault("VISION_API_KEY", c.OCR.Vision.APIKey)
	c.OCR.Vision.Model = env.GetWithDefault("VISION_MODEL", c.OCR.Vision.Model)
	c.OCR.Vision.BaseURL = env.GetWithDefault("VISION_BASE_URL", c.OCR.Vision.BaseURL)
	c.OCR.Vision.RequestsPerSecond = env.GetFloat("VISION_RPS", c.OCR.Vision.RequestsPerSecond)

	c.Executor.StopOnFailure = env.GetBool("STOP_ON_FAILURE", c.Executor.StopOnFailure)
	c.Executor.HumanMovement = env.GetBool("HUMAN_MOVEMENT", c.Executor.HumanMovement)
	c.Executor.DefaultDelay = env.GetDuration("DEFAULT_DELAY", c.Executor.DefaultDelay)

	c.Browser.Headless = env.GetBool("BROWSER_HEADLESS", c.Browser.Headless)
	c.Browser.StartURL = env.GetWithDefault("BROWSER_START_URL", c.Browser.StartURL)

	c.CacheTTL = env.GetDuration("CACHE_TTL", c.CacheTTL)
	c.MetricsAddr = env.GetWithDefault("METRICS_ADDR", c.MetricsAddr)
	c.Seed = int64(env.GetInt("SEED", int(c.Seed)))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.Retry.MaxRetries < 3 || c.Retry.MaxRetries > 8 {
		errs = append(errs, fmt.Errorf("retry.max_retries %d outside [3,8]", c.Retry.MaxRetries))
	}
	if c.Retry.BaseWait <= 0 {
		errs = append(errs, errors.New("retry.base_wait must be positive"))
	}
	if c.Retry.MaxWait < c.Retry.BaseWait {
		errs = append(errs, fmt.Errorf("retry.max_wait %s is below base_wait %s", c.Retry.MaxWait, c.Retry.BaseWait))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("cache_ttl must be positive"))
	}

	if len(c.OCR.Engines) == 0 {
		errs = append(errs, errors.New("ocr.engines is empty"))
	}
	seen := map[string]bool{}
	for _, e := range c.OCR.Engines {
		switch {
		case !knownEngines[e]:
			errs = append(errs, fmt.Errorf("ocr.engines: unknown engine %q", e))
		case seen[e]:
			errs = append(errs, fmt.Errorf("ocr.engines: %q listed twice", e))
		}
		seen[e] = true
	}
	if seen["vision"] && (c.OCR.Vision.APIKey == "" || c.OCR.Vision.Model == "") {
		errs = append(errs, errors.New("ocr.vision needs DESKTOP_AGENT_VISION_API_KEY and a model"))
	}
	for name, score := range c.OCR.BaseScores {
		if score < 0 || score > 1 {
			errs = append(errs, fmt.Errorf("ocr.base_scores.%s %.2f outside [0,1]", name, score))
		}
	}

	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		errs = append(errs, fmt.Errorf("browser size %dx%d must be positive", c.Browser.Width, c.Browser.Height))
	}
	return errors.Join(errs...)
}
