// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`
}

// DateRangeConfig bounds the date ranges a run accepts.
type DateRangeConfig struct {
	// MaxDays is the recommended maximum span; longer spans warn (default 30).
	MaxDays int `mapstructure:"max_days" json:"max_days" yaml:"max_days"`
}

// InboxConfig describes the dashboard.
type InboxConfig struct {
	// SecretURL is the per-user login URL (/login/KEY or ?sha_key=KEY).
	SecretURL string `mapstructure:"secret_url" json:"-" yaml:"-"`

	// DateLayout is the Go time layout of the date query parameter
	// (default "2006-01-02").
	DateLayout string `mapstructure:"date_layout" json:"date_layout" yaml:"date_layout"`

	// MaxPapers caps the papers processed per run; 0 means no cap.
	MaxPapers int `mapstructure:"max_papers" json:"max_papers" yaml:"max_papers"`
}

// BrowserConfig controls page rendering.
type BrowserConfig struct {
	// RemoteURL is a DevTools websocket URL; empty launches a local Chrome.
	RemoteURL string `mapstructure:"remote_url" json:"remote_url" yaml:"remote_url"`

	// Timeout bounds one page render (default 90s).
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// Settle is the wait after load for client-side rendering (default 8s).
	Settle time.Duration `mapstructure:"settle" json:"settle" yaml:"settle"`

	// Scrolls is the number of viewport scrolls used to load lazy content (default 5).
	Scrolls int `mapstructure:"scrolls" json:"scrolls" yaml:"scrolls"`

	// ScrollDelay is the wait after each scroll (default 2s).
	ScrollDelay time.Duration `mapstructure:"scroll_delay" json:"scroll_delay" yaml:"scroll_delay"`
}

// ArxivConfig selects the document representation used downstream.
type ArxivConfig struct {
	// PreferHTML selects the arXiv HTML rendering over the PDF.
	PreferHTML bool `mapstructure:"prefer_html" json:"prefer_html" yaml:"prefer_html"`

	// FallbackToPDF reads the PDF when the HTML rendering is unavailable.
	FallbackToPDF bool `mapstructure:"fallback_to_pdf" json:"fallback_to_pdf" yaml:"fallback_to_pdf"`

	// Enrich replaces scraped fields with arXiv API metadata when available.
	Enrich bool `mapstructure:"enrich" json:"enrich" yaml:"enrich"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `mapstructure:"model" json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `mapstructure:"api_key" json:"-" yaml:"-"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries"`

	// MaxTokens bounds each response (default 1024).
	MaxTokens int `mapstructure:"max_tokens" json:"max_tokens" yaml:"max_tokens"`
}

// SummarySection is one summary the LLM writes for each paper.
type SummarySection struct {
	Name   string `mapstructure:"name" json:"name" yaml:"name"`
	Prompt string `mapstructure:"prompt" json:"prompt" yaml:"prompt"`
}

// SummaryConfig controls translation and summaries.
type SummaryConfig struct {
	// MaxLength is the target length of each section in characters (default 300).
	MaxLength int `mapstructure:"max_length" json:"max_length" yaml:"max_length"`

	// CustomInstructions are appended to every summary prompt.
	CustomInstructions string `mapstructure:"custom_instructions" json:"custom_instructions" yaml:"custom_instructions"`

	Sections []SummarySection `mapstructure:"sections" json:"sections" yaml:"sections"`

	// TranslateCaptions translates teaser figure captions.
	TranslateCaptions bool `mapstructure:"translate_captions" json:"translate_captions" yaml:"translate_captions"`
}

// PostElements toggles the parts of a Slack post.
type PostElements struct {
	Title         bool `mapstructure:"title" json:"title" yaml:"title"`
	Authors       bool `mapstructure:"authors" json:"authors" yaml:"authors"`
	Abstract      bool `mapstructure:"abstract" json:"abstract" yaml:"abstract"`
	Relevance     bool `mapstructure:"paper_relevance" json:"paper_relevance" yaml:"paper_relevance"`
	Conference    bool `mapstructure:"conference" json:"conference" yaml:"conference"`
	SubmittedDate bool `mapstructure:"submitted_date" json:"submitted_date" yaml:"submitted_date"`
	Categories    bool `mapstructure:"categories" json:"categories" yaml:"categories"`
	ArxivURL      bool `mapstructure:"arxiv_url" json:"arxiv_url" yaml:"arxiv_url"`
	GitHubURL     bool `mapstructure:"github_url" json:"github_url" yaml:"github_url"`
	TeaserFigures bool `mapstructure:"teaser_figures" json:"teaser_figures" yaml:"teaser_figures"`
}

// SlackConfig holds notifier settings.
type SlackConfig struct {
	Token        string       `mapstructure:"token" json:"-" yaml:"-"`
	ChannelID    string       `mapstructure:"channel_id" json:"channel_id" yaml:"channel_id"`
	PostElements PostElements `mapstructure:"post_elements" json:"post_elements" yaml:"post_elements"`
}

// FilterConfig drops papers before they are summarized.
type FilterConfig struct {
	// SetThreshold enables RelevanceThreshold.
	SetThreshold bool `mapstructure:"set_threshold" json:"set_threshold" yaml:"set_threshold"`

	// RelevanceThreshold is the minimum relevance score; may be negative.
	RelevanceThreshold int `mapstructure:"relevance_threshold" json:"relevance_threshold" yaml:"relevance_threshold"`

	// RequireGitHub keeps only papers with a GitHub link.
	RequireGitHub bool `mapstructure:"require_github" json:"require_github" yaml:"require_github"`
}

// SortOrder selects the order papers are posted in.
type SortOrder string

const (
	SortRelevanceDesc SortOrder = "relevance_desc"
	SortRelevanceAsc  SortOrder = "relevance_asc"
	SortDateDesc      SortOrder = "date_desc"
	SortDateAsc       SortOrder = "date_asc"
	SortDOMOrder      SortOrder = "dom_order"
)

// SortingConfig holds the post order.
type SortingConfig struct {
	Order SortOrder `mapstructure:"order" json:"order" yaml:"order"`
}

// ScheduleConfig controls the scheduled mode.
type ScheduleConfig struct {
	// CheckTime is the daily run time, "HH:MM" (default "12:00").
	CheckTime string `mapstructure:"check_time" json:"check_time" yaml:"check_time"`

	// WeekdaysOnly restricts runs to Monday through Friday.
	WeekdaysOnly bool `mapstructure:"weekdays_only" json:"weekdays_only" yaml:"weekdays_only"`

	// Timezone is an IANA zone name; empty means local time.
	Timezone string `mapstructure:"timezone" json:"timezone" yaml:"timezone"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Path is the SQLite database file; empty disables history.
	Path string `mapstructure:"path" json:"path" yaml:"path"`

	// SkipPosted drops papers that an earlier run already posted.
	SkipPosted bool `mapstructure:"skip_posted" json:"skip_posted" yaml:"skip_posted"`
}

// Config groups all settings for the bot.
type Config struct {
	// Language is the translation target language (default "ja").
	Language string `mapstructure:"language" json:"language" yaml:"language"`

	// CacheDir holds downloaded teaser figures (default "data/cache").
	CacheDir string `mapstructure:"cache_dir" json:"cache_dir" yaml:"cache_dir"`

	HTTP      HTTPConfig      `mapstructure:"http" json:"http" yaml:"http"`
	DateRange DateRangeConfig `mapstructure:"date_range" json:"date_range" yaml:"date_range"`
	Inbox     InboxConfig     `mapstructure:"inbox" json:"inbox" yaml:"inbox"`
	Browser   BrowserConfig   `mapstructure:"browser" json:"browser" yaml:"browser"`
	Arxiv     ArxivConfig     `mapstructure:"arxiv" json:"arxiv" yaml:"arxiv"`
	LLM       AIConfig        `mapstructure:"llm" json:"llm" yaml:"llm"`
	Summary   SummaryConfig   `mapstructure:"summary" json:"summary" yaml:"summary"`
	Slack     SlackConfig     `mapstructure:"slack" json:"slack" yaml:"slack"`
	Filter    FilterConfig    `mapstructure:"filter" json:"filter" yaml:"filter"`
	Sorting   SortingConfig   `mapstructure:"sorting" json:"sorting" yaml:"sorting"`
	Schedule  ScheduleConfig  `mapstructure:"schedule" json:"schedule" yaml:"schedule"`
	History   HistoryConfig   `mapstructure:"history" json:"history" yaml:"history"`
}
