// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "trialmatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the trial search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxStudies is the maximum number of trials to fetch (default 10).
	MaxStudies int `json:"max_studies" yaml:"max_studies"`

	// Status filters trials by recruitment status (default "RECRUITING").
	Status string `json:"status" yaml:"status"`

	// DefaultCondition is the search term used when a patient record
	// yields no searchable conditions (default "diabetes").
	DefaultCondition string `json:"default_condition" yaml:"default_condition"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-1.5-flash-latest").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EligibilityConfig holds settings for the eligibility analysis stage.
type EligibilityConfig struct {
	AIConfig `yaml:",inline"`

	// MaxTokens bounds the completion size per criterion (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature. Near zero keeps the
	// decisions deterministic-leaning (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxConcurrent bounds the number of criteria evaluated in parallel
	// within one trial (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// Timeout is the per-criterion LLM call timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ExtractorBackend identifies the document text extraction backend.
type ExtractorBackend string

const (
	BackendPlainText  ExtractorBackend = "plaintext"
	BackendDocumentAI ExtractorBackend = "documentai"
	BackendMarkitdown ExtractorBackend = "markitdown"
)

// ExtractionConfig holds settings for the document extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the extraction tool: plaintext, documentai, or markitdown.
	Backend ExtractorBackend `json:"backend" yaml:"backend"`

	// Project is the Document AI project ID.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// Location is the Document AI processor location (e.g. "us").
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Processor is the Document AI processor ID.
	Processor string `json:"processor,omitempty" yaml:"processor,omitempty"`

	// AccessToken authenticates Document AI requests.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
}

// HistoryConfig holds settings for the match history store.
type HistoryConfig struct {
	// HistoryDir is the base directory for the history database and exports.
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ReportConfig holds settings for eligibility report rendering.
type ReportConfig struct {
	// OutputDir is the directory for generated reports (e.g. "output/reports/").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search      SearchConfig      `json:"search" yaml:"search"`
	Extraction  ExtractionConfig  `json:"extraction" yaml:"extraction"`
	Eligibility EligibilityConfig `json:"eligibility" yaml:"eligibility"`
	History     HistoryConfig     `json:"history" yaml:"history"`
	Report      ReportConfig      `json:"report" yaml:"report"`
}
