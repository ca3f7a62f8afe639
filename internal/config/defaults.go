package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultDriver          = DriverChrome
	DefaultHeadless        = true
	DefaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultWidth           = 1024
	DefaultHeight          = 768
	DefaultImplicitWait    = 15 * time.Second
	DefaultTeardownDelay   = 2500 * time.Millisecond
	DefaultTimeout         = 2 * time.Minute
	DefaultNavigationRPS   = 0.5
	DefaultNavigationBurst = 1
	DefaultSite            = "avito"
	DefaultConfigName      = ".afind"
	EnvPrefix              = "AFIND"
)

// Driver kinds
const (
	DriverChrome = "chrome"
	DriverStatic = "static"
)

func defaults() map[string]any {
	return map[string]any{
		"log_level":        DefaultLogLevel,
		"json":             DefaultJSONLog,
		"driver":           DefaultDriver,
		"headless":         DefaultHeadless,
		"chrome_path":      "",
		"user_agent":       DefaultUserAgent,
		"proxy":            "",
		"headers":          []string{},
		"width":            DefaultWidth,
		"height":           DefaultHeight,
		"implicit_wait":    DefaultImplicitWait,
		"teardown_delay":   DefaultTeardownDelay,
		"timeout":          DefaultTimeout,
		"navigation_rps":   DefaultNavigationRPS,
		"navigation_burst": DefaultNavigationBurst,
		"site":             DefaultSite,
		"sites_file":       "",
		"session":          "",
		"database_url":     "",
	}
}
