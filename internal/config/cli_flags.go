package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"json":             "json",
	"driver":           "driver",
	"headless":         "headless",
	"chrome-path":      "chrome_path",
	"user-agent":       "user_agent",
	"proxy":            "proxy",
	"header":           "headers",
	"width":            "width",
	"height":           "height",
	"implicit-wait":    "implicit_wait",
	"teardown-delay":   "teardown_delay",
	"timeout":          "timeout",
	"navigation-rps":   "navigation_rps",
	"navigation-burst": "navigation_burst",
	"site":             "site",
	"sites-file":       "sites_file",
	"session":          "session",
	"db":               "database_url",
}

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", DefaultJSONLog, "Write logs as JSON")
	pf.String("config", "", "Path to configuration file (default ./.afind.yaml or ~/.afind.yaml)")

	pf.String("driver", DefaultDriver, "Automation driver: chrome or static")
	pf.Bool("headless", DefaultHeadless, "Run Chrome without a window")
	pf.String("chrome-path", "", "Chrome executable (auto-detected when empty)")
	pf.String("user-agent", "", "Custom user agent string")
	pf.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	pf.StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")

	pf.Int("width", DefaultWidth, "Browser window width")
	pf.Int("height", DefaultHeight, "Browser window height")
	pf.Duration("implicit-wait", DefaultImplicitWait, "How long element lookups wait for a match")
	pf.Duration("teardown-delay", DefaultTeardownDelay, "Pause before closing the browser")
	pf.Duration("timeout", DefaultTimeout, "Hard timeout for a whole request")

	pf.Float64("navigation-rps", DefaultNavigationRPS, "Navigations per second per host")
	pf.Int("navigation-burst", DefaultNavigationBurst, "Navigation burst per host")

	pf.String("site", DefaultSite, "Site to search")
	pf.String("sites-file", "", "YAML file with additional site descriptors")
	pf.String("session", "", "Stored cookie session to load before navigating")
	pf.String("db", "", "Postgres connection string to store results in")
}

// bindFlags lets changed flags override every other source
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
