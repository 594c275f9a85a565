package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration, loadable from YAML
type Config struct {
	Scrape    ScrapeConfig   `yaml:"scrape"`
	Endpoints EndpointConfig `yaml:"endpoints"`
	Match     MatchConfig    `yaml:"match"`
}

// ScrapeConfig contains general scraping configuration
type ScrapeConfig struct {
	BaseURL          string `yaml:"base_url"`
	UserAgent        string `yaml:"user_agent"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	BrowserTimeoutMs int    `yaml:"browser_timeout_ms"`
	SizeLimitBytes   int    `yaml:"size_limit_bytes"`
	MaxRedirects     int    `yaml:"max_redirects"`
	CoverWorkers     int    `yaml:"cover_workers"`
}

// EndpointConfig drives the validation of alternative issue-list calls
type EndpointConfig struct {
	DataCallPath      string   `yaml:"data_call_path"`
	ContentTypes      []string `yaml:"content_types"`
	MinBodyBytes      int      `yaml:"min_body_bytes"`
	SearchFormMarkers []string `yaml:"search_form_markers"`
}

// MatchConfig holds the cover comparison parameters
type MatchConfig struct {
	HashSize         int     `yaml:"hash_size"`
	HistogramSize    int     `yaml:"histogram_size"`
	PerceptualWeight float64 `yaml:"perceptual_weight"`
	HistogramWeight  float64 `yaml:"histogram_weight"`
}

const (
	DefaultBaseURL   = "https://www.tebeosfera.com"
	DefaultUserAgent = "Mozilla/5.0 (compatible; TebeoSferaBot/1.0; +Comic-Scraper)"
)

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Scrape:    DefaultScrapeConfig(),
		Endpoints: DefaultEndpointConfig(),
		Match:     DefaultMatchConfig(),
	}
}

// DefaultScrapeConfig returns the default scraping configuration
func DefaultScrapeConfig() ScrapeConfig {
	userAgent := os.Getenv("TEBEOSFERA_USER_AGENT")
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	baseURL := os.Getenv("TEBEOSFERA_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return ScrapeConfig{
		BaseURL:          baseURL,
		UserAgent:        userAgent,
		TimeoutMs:        30000,
		BrowserTimeoutMs: 40000,
		SizeLimitBytes:   6_000_000,
		MaxRedirects:     5,
		CoverWorkers:     4,
	}
}

// DefaultEndpointConfig returns the default data-call validation rules
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		DataCallPath: "/neko/xajax_ajax.php",
		ContentTypes: []string{
			"text/html",
			"application/xhtml+xml",
			"text/xml",
			"application/xml",
			"text/plain",
		},
		MinBodyBytes: 200,
		SearchFormMarkers: []string{
			"Búsqueda avanzada",
			"B&uacute;squeda avanzada",
			"Introduzca los términos de búsqueda",
			`id="formulario_busqueda"`,
			`name="busqueda_avanzada"`,
		},
	}
}

// DefaultMatchConfig returns the default cover comparison parameters
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		HashSize:         8,
		HistogramSize:    100,
		PerceptualWeight: 0.7,
		HistogramWeight:  0.3,
	}
}

// Load reads a YAML config file, expands ${VAR} references and fills defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads path when it is set and falls back to DefaultConfig otherwise
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"tebeoscan.yaml",
		"tebeoscan.yml",
		".tebeoscan.yaml",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "tebeoscan", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	scrape := DefaultScrapeConfig()
	if cfg.Scrape.BaseURL == "" {
		cfg.Scrape.BaseURL = scrape.BaseURL
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = scrape.UserAgent
	}
	if cfg.Scrape.TimeoutMs == 0 {
		cfg.Scrape.TimeoutMs = scrape.TimeoutMs
	}
	if cfg.Scrape.BrowserTimeoutMs == 0 {
		cfg.Scrape.BrowserTimeoutMs = scrape.BrowserTimeoutMs
	}
	if cfg.Scrape.SizeLimitBytes == 0 {
		cfg.Scrape.SizeLimitBytes = scrape.SizeLimitBytes
	}
	if cfg.Scrape.MaxRedirects == 0 {
		cfg.Scrape.MaxRedirects = scrape.MaxRedirects
	}
	if cfg.Scrape.CoverWorkers <= 0 {
		cfg.Scrape.CoverWorkers = scrape.CoverWorkers
	}

	endpoints := DefaultEndpointConfig()
	if cfg.Endpoints.DataCallPath == "" {
		cfg.Endpoints.DataCallPath = endpoints.DataCallPath
	}
	if len(cfg.Endpoints.ContentTypes) == 0 {
		cfg.Endpoints.ContentTypes = endpoints.ContentTypes
	}
	if cfg.Endpoints.MinBodyBytes == 0 {
		cfg.Endpoints.MinBodyBytes = endpoints.MinBodyBytes
	}
	if len(cfg.Endpoints.SearchFormMarkers) == 0 {
		cfg.Endpoints.SearchFormMarkers = endpoints.SearchFormMarkers
	}

	match := DefaultMatchConfig()
	if cfg.Match.HashSize == 0 {
		cfg.Match.HashSize = match.HashSize
	}
	if cfg.Match.HistogramSize == 0 {
		cfg.Match.HistogramSize = match.HistogramSize
	}
	if cfg.Match.PerceptualWeight == 0 && cfg.Match.HistogramWeight == 0 {
		cfg.Match.PerceptualWeight = match.PerceptualWeight
		cfg.Match.HistogramWeight = match.HistogramWeight
	}
}

// CompileRegexes pre-compiles regex patterns for better performance
func CompileRegexes() map[string]*regexp.Regexp {
	return map[string]*regexp.Regexp{
		// title conventions, tried in this order by the title decomposer
		"titleParenNumberColon": regexp.MustCompile(`^(.+?)\s*\(([^)]*)\)\s*([^:\s][^:]*?)\s*:\s*(.+)$`),
		"titleDashNumberColon":  regexp.MustCompile(`^(.+?)\s+-\s*([^-]+?)\s*-\s*([^:\s][^:]*?)\s*:\s*(.+)$`),
		"titleParenNumber":      regexp.MustCompile(`^(.+?)\s*\(([^)]*)\)\s*([^:\s][^:]*)$`),
		"titleParenColon":       regexp.MustCompile(`^(.+?)\s*\(([^)]*)\)\s*:\s*(.+)$`),
		"titleDashNumber":       regexp.MustCompile(`^(.+?)\s+-\s*([^-]+?)\s*-\s*([^:\s][^:]*)$`),

		"sagaLink":       regexp.MustCompile(`/sagas/([^/?#]+)\.html`),
		"collectionLink": regexp.MustCompile(`/colecciones/([^/?#]+)\.html`),
		"issueLink":      regexp.MustCompile(`/numeros/([^/?#]+)\.html`),

		"issueNumber":  regexp.MustCompile(`N\s?[º°]\.?\s*([^\[\]]+?)\s*(?:\[|$)`),
		"totalCount":   regexp.MustCompile(`\[\s*de\s+(\d+)\s*\]`),
		"slugNumber":   regexp.MustCompile(`_(\d+)$`),
		"volumeYear":   regexp.MustCompile(`\(\s*(\d{4})`),
		"romanDate":    regexp.MustCompile(`\b(\d{1,2})\s*-\s*([IVXLivxl]+)\s*-\s*(\d{4})\b`),
		"numericDate":  regexp.MustCompile(`\b(\d{1,2})\s*[-/]\s*(\d{1,2})\s*[-/]\s*(\d{4})\b`),
		"price":        regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(€|euros?|eur\b|us\$|\$|usd\b|pesetas|ptas?\b)`),
		"pages":        regexp.MustCompile(`(\d+)\s*p`),
		"isbn":         regexp.MustCompile(`(?i)ISBN(?:-1[03])?\s*:?\s*([\dXx][\d\-Xx]*[\dXx])`),
		"legalDeposit": regexp.MustCompile(`(?i)(?:\bD[eé]p[óo]sito(?:\s+legal)?|\bD\.\s?L\.|\bDep\.(?:\s*legal)?)\s*[:.]?\s*([A-Z]{0,2}[-\s]?\d[^\s,;]*)`),
		"digits":       regexp.MustCompile(`\d+`),

		"seriesID": regexp.MustCompile(`(?i)(?:id_?coleccion|coleccion_?id)["']?\s*[:=]\s*["']?(\d+)`),
		"xajaxID":  regexp.MustCompile(`xajax_\w+\(\s*['"]?(\d+)`),
		"cdata":    regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`),
	}
}
