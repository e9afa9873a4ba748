package config

import (
	"fmt"
	"time"

	"pyblog-news-parser/internal/browser"
)

type Config struct {
	Browser       BrowserConfig       `yaml:"browser"`
	Navigation    NavigationConfig    `yaml:"navigation"`
	Pagination    PaginationConfig    `yaml:"pagination"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Output        OutputConfig        `yaml:"output"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
	RunTimeoutS   int                 `yaml:"run_timeout_s"`

	// path: файл, из которого загружен конфиг; от него считается selectors_file
	path string
}

type BrowserConfig struct {
	Engine       string   `yaml:"engine"`
	Headless     bool     `yaml:"headless"`
	ChromePath   string   `yaml:"chrome_path"`
	WindowWidth  int      `yaml:"window_width"`
	WindowHeight int      `yaml:"window_height"`
	UserAgent    string   `yaml:"user_agent"`
	NoSandbox    bool     `yaml:"no_sandbox"`
	ExtraFlags   []string `yaml:"extra_flags"`
}

type NavigationConfig struct {
	RootURL          string   `yaml:"root_url"`
	NewsLinkXPath    string   `yaml:"news_link_xpath"`
	NewsPathFragment string   `yaml:"news_path_fragment"`
	MoreLinkXPath    string   `yaml:"more_link_xpath"`
	BlogDomains      []string `yaml:"blog_domains"`
	MobileDomain     string   `yaml:"mobile_domain"`
	WaitTimeoutS     int      `yaml:"wait_timeout_s"`
	ScrollSettleMS   int      `yaml:"scroll_settle_ms"`
}

type PaginationConfig struct {
	MaxPages      int `yaml:"max_pages"`
	SettleDelayMS int `yaml:"settle_delay_ms"`
}

type NormalizeConfig struct {
	TrimNBSP        bool `yaml:"trim_nbsp"`
	CollapseSpaces  bool `yaml:"collapse_spaces"`
	MaxPreviewChars int  `yaml:"max_preview_chars"`
}

type OutputConfig struct {
	CSVPath        string `yaml:"csv_path"`
	ScreenshotPath string `yaml:"screenshot_path"`
	TransferDir    string `yaml:"transfer_dir"`
	UnknownDate    string `yaml:"unknown_date"`
}

type StorageConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36"

// Default: значения для python.org → Python Insider
func Default() Config {
	return Config{
		Browser: BrowserConfig{
			Engine:       browser.EngineRod,
			Headless:     true,
			WindowWidth:  1920,
			WindowHeight: 1080,
			UserAgent:    DefaultUserAgent,
			NoSandbox:    true,
			ExtraFlags:   []string{"disable-dev-shm-usage", "disable-gpu"},
		},
		Navigation: NavigationConfig{
			RootURL:          "https://www.python.org/",
			NewsLinkXPath:    `//*[@id="news"]/a`,
			NewsPathFragment: "/blogs/",
			MoreLinkXPath:    `//*[@id="content"]/div/section/div/div[1]/div/p/a`,
			BlogDomains:      []string{"blog.python.org", "pythoninsider.blogspot.com"},
			MobileDomain:     "pythoninsider.blogspot.com",
			WaitTimeoutS:     30,
			ScrollSettleMS:   1000,
		},
		Pagination: PaginationConfig{
			MaxPages:      10,
			SettleDelayMS: 2000,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:        true,
			CollapseSpaces:  true,
			MaxPreviewChars: 80,
		},
		Output: OutputConfig{
			CSVPath:        "python_blog_news.csv",
			ScreenshotPath: "error_screenshot.png",
			UnknownDate:    "unknown date",
		},
		Storage: StorageConfig{
			Driver:           "mssql",
			CommandTimeoutMS: 5000,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
		RunTimeoutS: 600,
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Browser.Engine != browser.EngineRod && c.Browser.Engine != browser.EnginePlaywright {
		return fmt.Errorf("browser.engine must be 'rod' or 'playwright'")
	}
	if c.Browser.WindowWidth < 0 || c.Browser.WindowHeight < 0 {
		return fmt.Errorf("browser.window_width/window_height must be >= 0")
	}
	if c.Navigation.RootURL == "" {
		return fmt.Errorf("navigation.root_url is required")
	}
	if c.Navigation.NewsLinkXPath == "" {
		return fmt.Errorf("navigation.news_link_xpath is required")
	}
	if c.Navigation.NewsPathFragment == "" {
		return fmt.Errorf("navigation.news_path_fragment is required")
	}
	if c.Navigation.MoreLinkXPath == "" {
		return fmt.Errorf("navigation.more_link_xpath is required")
	}
	if len(c.Navigation.BlogDomains) == 0 {
		return fmt.Errorf("navigation.blog_domains is required")
	}
	if c.Navigation.WaitTimeoutS <= 0 {
		return fmt.Errorf("navigation.wait_timeout_s must be > 0")
	}
	if c.Navigation.ScrollSettleMS < 0 {
		return fmt.Errorf("navigation.scroll_settle_ms must be >= 0")
	}
	if c.Pagination.MaxPages <= 0 {
		return fmt.Errorf("pagination.max_pages must be > 0")
	}
	if c.Pagination.SettleDelayMS < 0 {
		return fmt.Errorf("pagination.settle_delay_ms must be >= 0")
	}
	if c.Output.CSVPath == "" {
		return fmt.Errorf("output.csv_path is required")
	}
	if c.Output.ScreenshotPath == "" {
		return fmt.Errorf("output.screenshot_path is required")
	}
	if c.Storage.Enabled {
		if c.Storage.Driver != "mssql" {
			return fmt.Errorf("storage.driver must be 'mssql'")
		}
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.enabled is true")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.RunTimeoutS <= 0 {
		return fmt.Errorf("run_timeout_s must be > 0")
	}
	return nil
}

// BrowserOptions переводит секцию browser в параметры запуска
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Headless:     c.Browser.Headless,
		ChromePath:   c.Browser.ChromePath,
		WindowWidth:  c.Browser.WindowWidth,
		WindowHeight: c.Browser.WindowHeight,
		UserAgent:    c.Browser.UserAgent,
		NoSandbox:    c.Browser.NoSandbox,
		ExtraFlags:   c.Browser.ExtraFlags,
	}
}

// Getters
func (c *Config) GetWaitTimeout() time.Duration {
	return time.Duration(c.Navigation.WaitTimeoutS) * time.Second
}

func (c *Config) GetScrollSettle() time.Duration {
	return time.Duration(c.Navigation.ScrollSettleMS) * time.Millisecond
}

func (c *Config) GetPageSettle() time.Duration {
	return time.Duration(c.Pagination.SettleDelayMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutS) * time.Second
}
